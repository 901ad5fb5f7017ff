package recipe

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/Skryldev/recipebook/core"
	"github.com/Skryldev/recipebook/placeholder"
)

// Service implements the list, view, create, edit and delete flows.
type Service struct {
	repo   Repository
	codec  ImageCodec
	photos PhotoSource
	logger core.Logger
	now    func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for saved and deleted recipes.
func WithLogger(l core.Logger) ServiceOption { return func(s *Service) { s.logger = l } }

// WithClock replaces time.Now, which decides both the default and the upper
// bound of DateAdded.
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }

// NewService wires a Service. photos may be nil when AttachPhoto is unused.
func NewService(repo Repository, codec ImageCodec, photos PhotoSource, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		codec:  codec,
		photos: photos,
		logger: core.NopLogger{},
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Recipe, error) { return s.repo.List(ctx) }

func (s *Service) Get(ctx context.Context, id int64) (*Recipe, error) { return s.repo.Get(ctx, id) }

// ImageBytes returns the stored encoding of a recipe's image.
func (s *Service) ImageBytes(ctx context.Context, id int64) ([]byte, error) {
	return s.repo.ImageBytes(ctx, id)
}

// Save validates d and creates or fully replaces the recipe.
//
// Title and author are trimmed. A zero DateAdded means now; dates after now
// are rejected. A draft without an image gets the placeholder for its title.
func (s *Service) Save(ctx context.Context, d Draft) (*Recipe, error) {
	rec, err := s.normalize(d)
	if err != nil {
		return nil, err
	}

	if d.ID == 0 {
		id, err := s.repo.Create(ctx, rec)
		if err != nil {
			return nil, err
		}
		rec.ID = id
		s.logger.Info("recipe.created", "id", id, "title", rec.Title)
		return rec, nil
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("recipe.updated", "id", rec.ID, "title", rec.Title)
	return rec, nil
}

func (s *Service) normalize(d Draft) (*Recipe, error) {
	difficulty, err := ParseDifficulty(d.Difficulty)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := d.DateAdded
	if date.IsZero() {
		date = now
	}
	// Stored with millisecond precision.
	date = date.Truncate(time.Millisecond)
	if date.After(now) {
		return nil, fmt.Errorf("%w: %s", ErrFutureDate, date.Format(time.DateOnly))
	}

	rec := &Recipe{
		ID:         d.ID,
		Title:      strings.TrimSpace(d.Title),
		Author:     strings.TrimSpace(d.Author),
		Difficulty: difficulty,
		DateAdded:  date,
		Image:      d.Image,
	}
	if rec.Image == nil {
		rec.Image = placeholder.ForTitle(rec.Title, placeholder.DefaultSize)
	}
	return rec, nil
}

// Delete removes the recipe and its image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("recipe.deleted", "id", id)
	return nil
}

// AttachPhoto loads the photo behind ref and normalizes it for a recipe
// titled title. A reference that cannot be read, or content that cannot be
// decoded, yields the titled placeholder. Only a missing photo source is an
// error.
func (s *Service) AttachPhoto(ctx context.Context, ref, title string) (image.Image, error) {
	if s.photos == nil {
		return nil, fmt.Errorf("no photo source configured")
	}
	data, err := s.photos.Load(ctx, ref)
	if err != nil {
		s.logger.Warn("recipe.photo.placeholder", "ref", ref, "error", err)
		return placeholder.ForTitle(strings.TrimSpace(title), placeholder.DefaultSize), nil
	}
	return s.IngestPhoto(ctx, data, title), nil
}

// IngestPhoto normalizes photo bytes that arrived directly, such as an
// upload.
func (s *Service) IngestPhoto(ctx context.Context, data []byte, title string) image.Image {
	return s.codec.IngestOrPlaceholder(ctx, data, strings.TrimSpace(title))
}
