package core

import (
	"context"
	"image"
	"io"
)

// Decoder converts encoded bytes into pixels.
// Implementations live in adapters/decoder/ and adapters/vips/.
type Decoder interface {
	// DecodeConfig reads only the header and reports the stored dimensions.
	DecodeConfig(ctx context.Context, r io.Reader) (image.Config, error)
	// Decode reads from r and returns the full-resolution image.
	Decode(ctx context.Context, r io.Reader) (image.Image, error)
	// CanDecode reports whether this decoder handles the given format.
	CanDecode(format Format) bool
}

// SampledDecoder is a Decoder that can drop resolution while decoding, so the
// full-size pixel buffer is never allocated. DecodeSampled reduces by a
// factor that divides sample and reports the factor it applied; the caller
// subsamples the rest.
type SampledDecoder interface {
	Decoder
	DecodeSampled(ctx context.Context, r io.Reader, sample int) (image.Image, int, error)
}

// Encoder serialises pixels to bytes in a target format.
// Implementations live in adapters/encoder/ and adapters/vips/.
type Encoder interface {
	Encode(ctx context.Context, img image.Image, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality  int  // 1-100; 0 = use encoder default
	Lossless bool // WebP / PNG lossless mode
}

// Orienter applies an EXIF orientation to decoded pixels, returning a new image.
type Orienter interface {
	Orient(img image.Image, o Orientation) image.Image
}

// OrientationReader extracts the EXIF orientation from encoded bytes.
// Absent or unreadable metadata is reported as an error; callers treat it as
// OrientationNormal.
type OrientationReader interface {
	ReadOrientation(data []byte) (Orientation, error)
}

// StorageAdapter persists blobs and retrieves them later.
// Implementations live in adapters/storage/.
type StorageAdapter interface {
	Put(ctx context.Context, key StorageKey, r io.Reader) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Registry maps Format values to Decoder/Encoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
