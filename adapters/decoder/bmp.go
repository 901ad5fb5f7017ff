package decoder

import (
	"context"
	"image"
	"io"

	"golang.org/x/image/bmp"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
)

// BMP decodes uncompressed BMP images using golang.org/x/image/bmp.
type BMP struct{}

func NewBMP() *BMP { return &BMP{} }

func (b *BMP) CanDecode(format core.Format) bool { return format == core.FormatBMP }

func (b *BMP) DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error) {
	if err := ctx.Err(); err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "bmp.config", err)
	}
	cfg, err := bmp.DecodeConfig(r)
	if err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "bmp.config", err)
	}
	return cfg, nil
}

func (b *BMP) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "bmp.decode", err)
	}
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "bmp.decode", err)
	}
	return img, nil
}
