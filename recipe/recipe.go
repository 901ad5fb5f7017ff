// Package recipe holds the recipe domain: the model, its persistence and the
// create/edit/delete flows.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("recipe not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrFutureDate        = errors.New("date added is in the future")
)

// Difficulty grades how hard a recipe is to cook.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties lists every valid difficulty in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty matches s case-insensitively. An empty string is Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Easy, nil
	}
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Recipe is a stored recipe. ID is assigned on insert and never changes.
type Recipe struct {
	ID         int64
	Title      string
	Author     string
	Difficulty Difficulty
	DateAdded  time.Time
	Image      image.Image
}

// Draft is user input for a new or edited recipe. A zero ID creates.
type Draft struct {
	ID         int64
	Title      string
	Author     string
	Difficulty string
	DateAdded  time.Time
	Image      image.Image
}

// Repository persists recipes. Update and Delete report ErrNotFound for
// unknown ids.
type Repository interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id int64) (*Recipe, error)
	// ImageBytes returns the stored encoding of a recipe's image.
	ImageBytes(ctx context.Context, id int64) ([]byte, error)
	Create(ctx context.Context, r *Recipe) (int64, error)
	Update(ctx context.Context, r *Recipe) error
	Upsert(ctx context.Context, r *Recipe) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// ImageCodec converts images at the persistence and acquisition boundaries.
type ImageCodec interface {
	Encode(ctx context.Context, img image.Image) ([]byte, error)
	DecodeOrPlaceholder(ctx context.Context, data []byte) image.Image
	IngestOrPlaceholder(ctx context.Context, data []byte, title string) image.Image
}

// PhotoSource opens a content reference, such as a file path, into bytes.
type PhotoSource interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}
