// Package recipebook wires the codec, the SQLite store and the recipe service
// into one handle. Commands and servers open a Book and use its Service.
package recipebook

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/recipebook/adapters/storage"
	"github.com/Skryldev/recipebook/adapters/vips"
	"github.com/Skryldev/recipebook/api"
	"github.com/Skryldev/recipebook/codec"
	"github.com/Skryldev/recipebook/config"
	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/recipe"
	"github.com/Skryldev/recipebook/store/sqlite"
	"github.com/Skryldev/recipebook/utils"
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Book is an open recipe book.
type Book struct {
	cfg     config.Config
	db      *sqlite.SQLiteDB
	backend *vips.Backend

	Codec   *codec.Codec
	Photos  *storage.Local
	Service *recipe.Service
}

type options struct {
	logger core.Logger
	hooks  []core.Hook
	clock  func() time.Time
}

// Option customises Open.
type Option func(*options)

// WithLogger attaches a structured logger to the codec and the service.
func WithLogger(l core.Logger) Option { return func(o *options) { o.logger = l } }

// WithHooks observes every codec pipeline step.
func WithHooks(h ...core.Hook) Option { return func(o *options) { o.hooks = append(o.hooks, h...) } }

// WithClock overrides the time source used for default recipe dates.
func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

// Open builds the codec for cfg.Backend, opens the database at
// cfg.DatabasePath and roots photo references at cfg.PhotoDir.
func Open(cfg config.Config, opts ...Option) (*Book, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "recipebook.open", err)
	}
	o := options{logger: core.NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Book{cfg: cfg}
	codecOpts := []codec.Option{codec.WithLogger(o.logger), codec.WithHooks(o.hooks...)}
	if cfg.Backend == config.BackendVips {
		b.backend = vips.NewBackend(vips.BackendConfig{DefaultQuality: cfg.JPEGQuality})
		reg := codec.NewRegistry(cfg)
		vips.Register(reg, b.backend)
		codecOpts = append(codecOpts, codec.WithRegistry(reg), codec.WithOrientationReader(b.backend))
	}

	c, err := codec.New(cfg, codecOpts...)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Codec = c

	photos, err := storage.NewLocal(cfg.PhotoDir, 0,
		storage.WithMaxBytes(cfg.MaxImageBytes),
		storage.WithChunkSize(cfg.ChunkSize),
	)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Photos = photos

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		b.Close()
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "recipebook.open", err)
	}
	b.db = db

	svcOpts := []recipe.ServiceOption{recipe.WithLogger(o.logger)}
	if o.clock != nil {
		svcOpts = append(svcOpts, recipe.WithClock(o.clock))
	}
	b.Service = recipe.NewService(recipe.NewSQLiteRepository(db.DB(), c), c, photos, svcOpts...)
	return b, nil
}

// Config returns the configuration the book was opened with.
func (b *Book) Config() config.Config { return b.cfg }

// Handler returns the HTTP routes for the book.
func (b *Book) Handler(logger core.Logger) *gin.Engine {
	return api.NewRouter(api.NewHandler(b.Service, b.cfg.MaxImageBytes, b.cfg.ChunkSize), logger)
}

// Export writes the stored image of recipe id into dir as <id><ext>, the
// extension following the stored encoding. It returns the written path.
func (b *Book) Export(ctx context.Context, id int64, dir string) (string, error) {
	data, err := b.Service.ImageBytes(ctx, id)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("recipe %d has no stored image", id)
	}
	out, err := storage.NewLocal(dir, 0)
	if err != nil {
		return "", err
	}
	name := strconv.FormatInt(id, 10) + core.Format(utils.DetectFormat(data)).Ext()
	if err := out.Put(ctx, core.StorageKey{Path: name}, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return filepath.Join(out.Root(), name), nil
}

// Close releases the database and, for the vips backend, libvips.
func (b *Book) Close() error {
	var err error
	if b.db != nil {
		err = b.db.Close()
		b.db = nil
	}
	if b.backend != nil {
		b.backend.Shutdown()
		b.backend = nil
	}
	return err
}
