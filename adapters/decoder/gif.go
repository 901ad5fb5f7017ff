package decoder

import (
	"context"
	"image"
	"image/gif"
	"io"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
)

// GIF decodes the first frame of a GIF.
type GIF struct{}

func NewGIF() *GIF { return &GIF{} }

func (g *GIF) CanDecode(format core.Format) bool { return format == core.FormatGIF }

func (g *GIF) DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error) {
	if err := ctx.Err(); err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "gif.config", err)
	}
	cfg, err := gif.DecodeConfig(r)
	if err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "gif.config", err)
	}
	return cfg, nil
}

func (g *GIF) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "gif.decode", err)
	}
	img, err := gif.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "gif.decode", err)
	}
	return img, nil
}
