package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/Skryldev/recipebook/core"
	apperrors "github.com/Skryldev/recipebook/errors"
	"github.com/Skryldev/recipebook/utils"
)

// ── Probe ─────────────────────────────────────────────────────────────────────

// ProbeStep detects the format of img.Data and reads its dimensions without
// decoding pixels.
type ProbeStep struct {
	Registry core.Registry
	// MaxPixels rejects headers that claim more than this many pixels.
	// 0 disables the check.
	MaxPixels int64
}

func (s *ProbeStep) Name() string { return "probe" }

func (s *ProbeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if len(img.Data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(), apperrors.ErrEmptyInput)
	}
	format := core.Format(utils.DetectFormat(img.Data))
	dec, ok := s.Registry.DecoderFor(format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}

	cfg, err := dec.DecodeConfig(ctx, bytes.NewReader(img.Data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(),
			fmt.Errorf("%w: %dx%d", apperrors.ErrInvalidDimensions, cfg.Width, cfg.Height))
	}
	if s.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > s.MaxPixels {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(),
			fmt.Errorf("%w: %dx%d exceeds %d pixels", apperrors.ErrInvalidDimensions, cfg.Width, cfg.Height, s.MaxPixels))
	}

	out := *img
	out.Format = format
	out.Image = nil
	out.Meta.Format = format
	out.Meta.Width = cfg.Width
	out.Meta.Height = cfg.Height
	out.Meta.SizeBytes = int64(len(img.Data))
	return &out, nil
}

// ── Sampled decode ────────────────────────────────────────────────────────────

// SampledDecodeStep decodes img.Data and subsamples it by the power-of-two
// factor that keeps the result at or above TargetWidth x TargetHeight. The
// output is a 16-bit core.RGB565 buffer. ProbeStep must run first.
type SampledDecodeStep struct {
	Registry     core.Registry
	TargetWidth  int
	TargetHeight int
}

func (s *SampledDecodeStep) Name() string { return "sampled_decode" }

func (s *SampledDecodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Meta.Width <= 0 || img.Meta.Height <= 0 {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(),
			fmt.Errorf("%w: probe has not run", apperrors.ErrInvalidDimensions))
	}
	dec, ok := s.Registry.DecoderFor(img.Format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, img.Format))
	}

	sample := utils.ComputeSampleSize(img.Meta.Width, img.Meta.Height, s.TargetWidth, s.TargetHeight)

	decoded, applied, err := safeDecode(ctx, dec, img.Data, sample)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, s.Name(), err)
	}
	sampled := Subsample(decoded, max(1, sample/applied))

	out := *img
	out.Image = sampled
	out.Meta.SampleSize = sample
	out.Meta.Width = sampled.Rect.Dx()
	out.Meta.Height = sampled.Rect.Dy()
	return &out, nil
}

// safeDecode decodes data, letting a core.SampledDecoder apply as much of
// sample as it can, and reports the factor already applied. A decoder panic
// on hostile input becomes an error.
func safeDecode(ctx context.Context, dec core.Decoder, data []byte, sample int) (img image.Image, applied int, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, applied, err = nil, 0, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	if sd, ok := dec.(core.SampledDecoder); ok && sample > 1 {
		img, applied, err = sd.DecodeSampled(ctx, bytes.NewReader(data), sample)
		if err == nil && (applied < 1 || sample%applied != 0) {
			err = fmt.Errorf("decoder applied sample %d, not a divisor of %d", applied, sample)
		}
		return img, applied, err
	}
	img, err = dec.Decode(ctx, bytes.NewReader(data))
	return img, 1, err
}

// ── Orient ────────────────────────────────────────────────────────────────────

// OrientStep reads the EXIF orientation of the source bytes and applies it to
// the decoded pixels. Missing or unreadable metadata leaves the image as is.
type OrientStep struct {
	Reader   core.OrientationReader
	Orienter core.Orienter
}

func (s *OrientStep) Name() string { return "orient" }

func (s *OrientStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	o, err := s.Reader.ReadOrientation(img.Data)
	if err != nil || o == core.OrientationNormal {
		out := *img
		out.Meta.Orientation = core.OrientationNormal
		return &out, nil
	}

	oriented := s.Orienter.Orient(img.Image, o)
	b := oriented.Bounds()

	out := *img
	out.Image = oriented
	out.Meta.Orientation = o
	out.Meta.Width = b.Dx()
	out.Meta.Height = b.Dy()
	return &out, nil
}

// ── Bound ─────────────────────────────────────────────────────────────────────

// BoundStep proportionally downscales the image so its larger side is at most
// MaxSide. It never upscales and never touches the input image.
type BoundStep struct {
	MaxSide int
	// NewImage allocates the destination. Defaults to core.NewRGB565.
	NewImage func(r image.Rectangle) draw.Image
}

func (s *BoundStep) Name() string { return "bound" }

func (s *BoundStep) Execute(_ context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	b := img.Image.Bounds()
	w, h := utils.BoundDimensions(b.Dx(), b.Dy(), s.MaxSide)
	if w == b.Dx() && h == b.Dy() {
		out := *img
		out.Meta.Width, out.Meta.Height = w, h
		return &out, nil
	}

	newImage := s.NewImage
	if newImage == nil {
		newImage = func(r image.Rectangle) draw.Image { return core.NewRGB565(r) }
	}

	out := *img
	out.Image = Scale(img.Image, w, h, newImage)
	out.Meta.Width = w
	out.Meta.Height = h
	return &out, nil
}

// ── Encode ────────────────────────────────────────────────────────────────────

// EncodeStep serialises img.Image with the first preferred format that has a
// registered encoder.
type EncodeStep struct {
	Registry core.Registry
	Formats  []core.FormatQuality
	Lossless bool
}

func (s *EncodeStep) Name() string { return "encode" }

func (s *EncodeStep) Execute(ctx context.Context, img *core.ImageData) (*core.ImageData, error) {
	if img.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(), apperrors.ErrEmptyInput)
	}
	choice, enc, ok := core.PreferredEncoder(s.Registry, s.Formats)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(),
			fmt.Errorf("%w: no encoder for %v", apperrors.ErrUnsupportedFormat, s.Formats))
	}

	data, err := enc.Encode(ctx, img.Image, core.EncodeOptions{Quality: choice.Quality, Lossless: s.Lossless})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, s.Name(), err)
	}

	b := img.Image.Bounds()
	out := *img
	out.Data = data
	out.Format = choice.Format
	out.Meta.Format = choice.Format
	out.Meta.Width = b.Dx()
	out.Meta.Height = b.Dy()
	out.Meta.SizeBytes = int64(len(data))
	return &out, nil
}
