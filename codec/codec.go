// Package codec turns recipe photos into bytes for storage and back.
//
// Encoding bounds the image to EncodeMaxSide and compresses it with the first
// preferred format that has a registered encoder. Decoding probes the header,
// subsamples by a power of two against DecodeMaxSide, and finishes with a
// bilinear downscale so the larger side never exceeds DecodeMaxSide. The
// ingestion path additionally applies the EXIF orientation of the source.
package codec

import (
	"context"
	"image"
	"image/draw"

	"github.com/Skryldev/recipebook/adapters/decoder"
	"github.com/Skryldev/recipebook/adapters/encoder"
	"github.com/Skryldev/recipebook/adapters/exif"
	"github.com/Skryldev/recipebook/config"
	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/pipeline"
	"github.com/Skryldev/recipebook/placeholder"
)

// Version identifies the encoding policy: adaptive format, EXIF-aware
// ingestion and bounded decode memory. Blobs written by earlier policies
// (plain PNG, JPEG) stay readable because the format is sniffed from the
// magic header.
const Version = 3

// Codec is safe for concurrent use.
type Codec struct {
	cfg      config.Config
	registry core.Registry
	logger   core.Logger
	orienter core.Orienter

	encode *pipeline.Pipeline
	decode *pipeline.Pipeline
	ingest *pipeline.Pipeline
}

type options struct {
	registry core.Registry
	reader   core.OrientationReader
	logger   core.Logger
	hooks    []core.Hook
}

// Option customises a Codec.
type Option func(*options)

// WithRegistry replaces the pure-Go decoders and encoders.
func WithRegistry(reg core.Registry) Option { return func(o *options) { o.registry = reg } }

// WithOrientationReader replaces the goexif orientation reader.
func WithOrientationReader(r core.OrientationReader) Option {
	return func(o *options) { o.reader = r }
}

// WithLogger sets the logger used for substituted placeholders.
func WithLogger(l core.Logger) Option { return func(o *options) { o.logger = l } }

// WithHooks observes every pipeline step.
func WithHooks(h ...core.Hook) Option { return func(o *options) { o.hooks = append(o.hooks, h...) } }

// NewRegistry returns a registry with the pure-Go backend installed.
func NewRegistry(cfg config.Config) *core.DefaultRegistry {
	reg := core.NewRegistry()
	decoder.Register(reg)
	encoder.Register(reg, cfg.JPEGQuality)
	return reg
}

// New builds a Codec from cfg.
func New(cfg config.Config, opts ...Option) (*Codec, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "codec.new", err)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry(cfg)
	}
	if o.reader == nil {
		o.reader = exif.NewReader()
	}
	if o.logger == nil {
		o.logger = core.NopLogger{}
	}

	c := &Codec{
		cfg:      cfg,
		registry: o.registry,
		logger:   o.logger,
		orienter: pipeline.PixelOrienter{},
	}

	probe := &pipeline.ProbeStep{Registry: c.registry, MaxPixels: cfg.MaxPixels}
	sampled := &pipeline.SampledDecodeStep{
		Registry:     c.registry,
		TargetWidth:  cfg.DecodeMaxSide,
		TargetHeight: cfg.DecodeMaxSide,
	}
	bound := &pipeline.BoundStep{MaxSide: cfg.DecodeMaxSide}

	c.encode = pipeline.New().Use(
		&pipeline.BoundStep{
			MaxSide:  cfg.EncodeMaxSide,
			NewImage: func(r image.Rectangle) draw.Image { return image.NewRGBA(r) },
		},
		&pipeline.EncodeStep{
			Registry: c.registry,
			Formats:  Formats(cfg),
			Lossless: cfg.Lossless,
		},
	).AddHook(o.hooks...)
	c.decode = pipeline.New().Use(probe, sampled, bound).AddHook(o.hooks...)
	c.ingest = pipeline.New().Use(
		probe,
		sampled,
		&pipeline.OrientStep{Reader: o.reader, Orienter: c.orienter},
		bound,
	).AddHook(o.hooks...)
	return c, nil
}

// Formats maps the configured preference list to encode qualities.
func Formats(cfg config.Config) []core.FormatQuality {
	out := make([]core.FormatQuality, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		switch core.Format(f) {
		case core.FormatWebP:
			out = append(out, core.FormatQuality{Format: core.FormatWebP, Quality: cfg.WebPQuality})
		case core.FormatJPEG:
			out = append(out, core.FormatQuality{Format: core.FormatJPEG, Quality: cfg.JPEGQuality})
		case core.FormatPNG:
			out = append(out, core.FormatQuality{Format: core.FormatPNG})
		}
	}
	return out
}

// Registry returns the registry backing the codec.
func (c *Codec) Registry() core.Registry { return c.registry }

// Encode compresses img for storage. img is never modified.
func (c *Codec) Encode(ctx context.Context, img image.Image) ([]byte, error) {
	out, err := c.EncodeImage(ctx, img)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// EncodeImage is Encode returning the pipeline result, including the format
// that was chosen.
func (c *Codec) EncodeImage(ctx context.Context, img image.Image) (*core.ImageData, error) {
	if img == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "codec.encode", apperrors.ErrEmptyInput)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, apperrors.New(apperrors.CategoryEncode, "codec.encode", apperrors.ErrInvalidDimensions)
	}
	out, _, err := c.encode.Run(ctx, &core.ImageData{
		Image: img,
		Meta:  core.Metadata{Width: b.Dx(), Height: b.Dy()},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "codec.encode", err)
	}
	return out, nil
}

// Decode reads a stored blob. The result is a core.RGB565 image whose larger
// side is at most DecodeMaxSide.
func (c *Codec) Decode(ctx context.Context, data []byte) (image.Image, error) {
	out, err := c.run(ctx, c.decode, "codec.decode", data)
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// DecodeOriented is Decode plus EXIF orientation correction, for photos
// arriving from outside.
func (c *Codec) DecodeOriented(ctx context.Context, data []byte) (image.Image, error) {
	out, err := c.run(ctx, c.ingest, "codec.ingest", data)
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// Probe decodes data the same way as Decode and returns the collected
// metadata along with the image.
func (c *Codec) Probe(ctx context.Context, data []byte) (*core.ImageData, error) {
	return c.run(ctx, c.decode, "codec.decode", data)
}

// Orient applies o to img.
func (c *Codec) Orient(img image.Image, o core.Orientation) image.Image {
	return c.orienter.Orient(img, o)
}

// DecodeOrPlaceholder is Decode that substitutes a 32x32 light gray image for
// data that cannot be decoded.
func (c *Codec) DecodeOrPlaceholder(ctx context.Context, data []byte) image.Image {
	img, err := c.Decode(ctx, data)
	if err != nil {
		c.logger.Warn("codec.decode.placeholder", "bytes", len(data), "error", err.Error())
		return placeholder.Fallback()
	}
	return img
}

// IngestOrPlaceholder is DecodeOriented that substitutes the titled
// placeholder for data that cannot be decoded.
func (c *Codec) IngestOrPlaceholder(ctx context.Context, data []byte, title string) image.Image {
	img, err := c.DecodeOriented(ctx, data)
	if err != nil {
		c.logger.Warn("codec.ingest.placeholder", "bytes", len(data), "title", title, "error", err.Error())
		return placeholder.ForTitle(title, placeholder.DefaultSize)
	}
	return img
}

func (c *Codec) run(ctx context.Context, p *pipeline.Pipeline, op string, data []byte) (*core.ImageData, error) {
	out, _, err := p.Run(ctx, &core.ImageData{Data: data})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, op, err)
	}
	c.logger.Debug(op,
		"format", out.Format,
		"width", out.Meta.Width,
		"height", out.Meta.Height,
		"sample", out.Meta.SampleSize,
		"orientation", int(out.Meta.Orientation),
	)
	return out, nil
}
