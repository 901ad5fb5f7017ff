// Package storage provides StorageAdapter implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/utils"
)

// Local stores blobs on the local filesystem and opens photo references.
type Local struct {
	rootDir     string
	permissions os.FileMode

	maxBytes  int64
	chunkSize int
}

// Option configures a Local adapter.
type Option func(*Local)

// WithMaxBytes caps every read; larger sources fail with errors.ErrTooLarge.
func WithMaxBytes(n int64) Option { return func(l *Local) { l.maxBytes = n } }

// WithChunkSize sets the read chunk size.
func WithChunkSize(n int) Option { return func(l *Local) { l.chunkSize = n } }

// NewLocal creates a Local storage adapter rooted at dir.
func NewLocal(dir string, perm os.FileMode, opts ...Option) (*Local, error) {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: mkdir %s: %w", dir, err)
	}
	l := &Local{rootDir: dir, permissions: perm, chunkSize: 32 * 1024}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Root returns the directory the adapter is rooted at.
func (l *Local) Root() string { return l.rootDir }

func (l *Local) absPath(key core.StorageKey) string {
	// Bucket maps to a subdirectory; Path is the filename. Cleaning against
	// "/" keeps ".." segments inside the root.
	return filepath.Join(l.rootDir,
		filepath.Clean("/"+key.Bucket),
		filepath.Clean("/"+key.Path))
}

func (l *Local) Put(ctx context.Context, key core.StorageKey, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.put", err)
	}

	path := l.absPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.put.mkdir", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.put.open", err)
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.put.copy", err)
	}
	return nil
}

func (l *Local) Get(ctx context.Context, key core.StorageKey) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "local.get", err)
	}
	f, err := os.Open(l.absPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.New(apperrors.CategoryStorage, "local.get",
				fmt.Errorf("%w: %s/%s", apperrors.ErrNotExist, key.Bucket, key.Path))
		}
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "local.get.open", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, key core.StorageKey) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.delete", err)
	}
	if err := os.Remove(l.absPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(apperrors.CategoryStorage, "local.delete", err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, key core.StorageKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryStorage, "local.exists", err)
	}
	_, err := os.Stat(l.absPath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CategoryStorage, "local.exists.stat", err)
}

// Load reads a content reference into memory, honouring the size cap. An
// absolute path or a file:// URI is read as is; anything else is resolved
// inside the root directory.
func (l *Local) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, apperrors.New(apperrors.CategoryInput, "local.load", apperrors.ErrEmptyInput)
	}

	var rc io.ReadCloser
	if path, ok := absoluteRef(ref); ok {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, apperrors.New(apperrors.CategoryStorage, "local.load",
					fmt.Errorf("%w: %s", apperrors.ErrNotExist, ref))
			}
			return nil, apperrors.Wrap(apperrors.CategoryStorage, "local.load.open", err)
		}
		rc = f
	} else {
		var err error
		if rc, err = l.Get(ctx, core.StorageKey{Path: ref}); err != nil {
			return nil, err
		}
	}
	defer rc.Close()

	data, err := utils.ReadAll(ctx, rc, l.maxBytes, l.chunkSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryStorage, "local.load.read", err)
	}
	return data, nil
}

func absoluteRef(ref string) (string, bool) {
	if p, ok := strings.CutPrefix(ref, "file://"); ok {
		return filepath.FromSlash(p), true
	}
	if filepath.IsAbs(ref) {
		return ref, true
	}
	return "", false
}

var _ core.StorageAdapter = (*Local)(nil)
