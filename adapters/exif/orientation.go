// Package exif reads the orientation tag from encoded images.
package exif

import (
	"bytes"
	"fmt"

	goexif "github.com/rwcarlsen/goexif/exif"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
)

// Reader implements core.OrientationReader using rwcarlsen/goexif. It
// understands JPEG APP1 segments and bare TIFF headers.
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (Reader) ReadOrientation(data []byte) (core.Orientation, error) {
	if len(data) == 0 {
		return core.OrientationNormal, apperrors.ErrEmptyInput
	}
	x, err := goexif.Decode(bytes.NewReader(data))
	if err != nil {
		return core.OrientationNormal, fmt.Errorf("exif: decode: %w", err)
	}
	tag, err := x.Get(goexif.Orientation)
	if err != nil {
		return core.OrientationNormal, fmt.Errorf("exif: orientation tag: %w", err)
	}
	v, err := tag.Int(0)
	if err != nil {
		return core.OrientationNormal, fmt.Errorf("exif: orientation value: %w", err)
	}
	o := core.Orientation(v)
	if !o.Valid() {
		return core.OrientationNormal, fmt.Errorf("exif: orientation %d out of range", v)
	}
	return o, nil
}

var _ core.OrientationReader = Reader{}
