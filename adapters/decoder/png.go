package decoder

import (
	"context"
	"image"
	"image/png"
	"io"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
)

// PNG decodes PNG images using the standard library. PNG is also the format
// written by the earliest revision of the recipe store, so legacy blobs land here.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error) {
	if err := ctx.Err(); err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "png.config", err)
	}
	cfg, err := png.DecodeConfig(r)
	if err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "png.config", err)
	}
	return cfg, nil
}

func (p *PNG) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}
	img, err := png.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}
	return img, nil
}
