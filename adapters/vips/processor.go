// Package vips is a libvips-backed alternative to the pure-Go codecs. It
// registers for the same formats and adds a WebP encoder.
package vips

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	DefaultQuality int
	MaxCacheSize   int
	MaxWorkers     int
	ReportLeaks    bool
}

// Backend is a unified libvips-powered Decoder, Encoder and
// OrientationReader. Safe for concurrent use across goroutines.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 85
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.LoggingSettings(nil, govips.LogLevelWarning)
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanDecode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatGIF:
		return true
	}
	return false
}

func (b *Backend) read(ctx context.Context, r io.Reader, op string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op, err)
	}
	buf, err := utils.DrainReader(ctx, r, 32*1024)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op+".drain", err)
	}
	defer utils.ReleaseBuffer(buf)
	return utils.CloneBytes(buf.Bytes()), nil
}

func (b *Backend) load(ctx context.Context, r io.Reader, op string) (*govips.ImageRef, error) {
	raw, err := b.read(ctx, r, op)
	if err != nil {
		return nil, err
	}
	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op, err)
	}
	return ref, nil
}

// DecodeConfig opens the image lazily; libvips reads only the header until
// pixels are requested.
func (b *Backend) DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error) {
	ref, err := b.load(ctx, r, "vips.config")
	if err != nil {
		return image.Config{}, err
	}
	defer ref.Close()
	return image.Config{Width: ref.Width(), Height: ref.Height()}, nil
}

// Decode returns the stored pixels without applying EXIF orientation.
func (b *Backend) Decode(ctx context.Context, r io.Reader) (image.Image, error) {
	ref, err := b.load(ctx, r, "vips.decode")
	if err != nil {
		return nil, err
	}
	defer ref.Close()
	return toRGB565(ref)
}

// maxJpegShrink is the largest shrink-on-load factor libjpeg supports.
const maxJpegShrink = 8

// DecodeSampled shrinks JPEGs while loading, by the largest of 2, 4 or 8 that
// divides sample. Other formats load at full size and report 1.
func (b *Backend) DecodeSampled(ctx context.Context, r io.Reader, sample int) (image.Image, int, error) {
	raw, err := b.read(ctx, r, "vips.decode")
	if err != nil {
		return nil, 0, err
	}

	shrink := 1
	params := govips.NewImportParams()
	if utils.DetectFormat(raw) == string(core.FormatJPEG) {
		for shrink*2 <= min(sample, maxJpegShrink) && sample%(shrink*2) == 0 {
			shrink *= 2
		}
		if shrink > 1 {
			params.JpegShrinkFactor.Set(shrink)
		}
	}

	ref, err := govips.LoadImageFromBuffer(raw, params)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode", err)
	}
	defer ref.Close()

	img, err := toRGB565(ref)
	if err != nil {
		return nil, 0, err
	}
	return img, shrink, nil
}

// toRGB565 copies the pixels of ref straight out of libvips memory as 8-bit
// sRGB, flattening alpha onto black like core.RGB565Model does.
func toRGB565(ref *govips.ImageRef) (*core.RGB565, error) {
	if err := ref.ToColorSpace(govips.InterpretationSRGB); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.colorspace", err)
	}
	if ref.HasAlpha() {
		if err := ref.Flatten(&govips.Color{}); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.flatten", err)
		}
	}
	if ref.BandFormat() != govips.BandFormatUchar {
		if err := ref.Cast(govips.BandFormatUchar); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.cast", err)
		}
	}

	w, h, bands := ref.Width(), ref.Height(), ref.Bands()
	raw, err := ref.ToBytes()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.export", err)
	}
	if bands < 3 || len(raw) < w*h*bands {
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.decode.export",
			fmt.Errorf("%w: %d bytes for %dx%d with %d bands", apperrors.ErrInvalidDimensions, len(raw), w, h, bands))
	}

	dst := core.NewRGB565(image.Rect(0, 0, w, h))
	for i := range dst.Pix {
		p := raw[i*bands:]
		dst.Pix[i] = uint16(core.PackRGB565(p[0], p[1], p[2]))
	}
	return dst, nil
}

// ReadOrientation reports the EXIF orientation libvips found in data.
func (b *Backend) ReadOrientation(data []byte) (core.Orientation, error) {
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return core.OrientationNormal, err
	}
	defer ref.Close()

	o := core.Orientation(ref.Orientation())
	if !o.Valid() {
		return core.OrientationNormal, errors.New("vips: no orientation tag")
	}
	return o, nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

// Encoder is the Backend bound to one output format, so each registry slot
// knows what it produces.
type Encoder struct {
	backend *Backend
	format  core.Format
}

func (e *Encoder) CanEncode(f core.Format) bool { return f == e.format }

func (e *Encoder) Encode(ctx context.Context, img image.Image, opts core.EncodeOptions) ([]byte, error) {
	return e.backend.encode(ctx, img, e.format, opts)
}

func (b *Backend) encode(ctx context.Context, img image.Image, format core.Format, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode", err)
	}
	if img == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode", apperrors.ErrEmptyInput)
	}

	// libvips has no constructor for Go images; hand the pixels over as a
	// fast, uncompressed PNG.
	var bridge bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&bridge, img); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.bridge", err)
	}
	ref, err := govips.NewImageFromBuffer(bridge.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.load", err)
	}
	defer ref.Close()

	quality := opts.Quality
	if quality <= 0 {
		quality = b.cfg.DefaultQuality
	}

	switch format {
	case core.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		ep.StripMetadata = true
		buf, _, err := ref.ExportJpeg(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.jpeg", err)
		}
		return buf, nil

	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.StripMetadata = true
		if opts.Lossless {
			ep.Compression = 9
		}
		buf, _, err := ref.ExportPng(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.png", err)
		}
		return buf, nil

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		ep.Lossless = opts.Lossless
		ep.StripMetadata = true
		buf, _, err := ref.ExportWebp(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.webp", err)
		}
		return buf, nil

	default:
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}
}

// ─── Register ─────────────────────────────────────────────────────────────────

// Register replaces the pure-Go codecs with libvips for every format it
// handles. BMP stays with the pure-Go decoder.
func Register(reg core.Registry, b *Backend) {
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatGIF} {
		reg.RegisterDecoder(f, b)
	}
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP} {
		reg.RegisterEncoder(f, &Encoder{backend: b, format: f})
	}
}

// compile-time interface checks
var (
	_ core.SampledDecoder    = (*Backend)(nil)
	_ core.OrientationReader = (*Backend)(nil)
	_ core.Encoder           = (*Encoder)(nil)
)
