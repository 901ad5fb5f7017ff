// Package decoder provides format-specific image decoders.
package decoder

import (
	"context"
	"image"
	"io"

	"github.com/gen2brain/jpegn"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
)

// JPEG decodes JPEG images with gen2brain/jpegn, which falls back to the
// standard library for progressive and CMYK streams.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool { return format == core.FormatJPEG }

func (j *JPEG) DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error) {
	if err := ctx.Err(); err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.config", err)
	}
	cfg, err := jpegn.DecodeConfig(r)
	if err != nil {
		return image.Config{}, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.config", err)
	}
	return cfg, nil
}

// Decode returns the pixels as stored; orientation is applied later in the
// pipeline so every backend shares one transform.
func (j *JPEG) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}
	img, err := jpegn.Decode(r, &jpegn.Options{AutoRotate: false})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}
	return img, nil
}
