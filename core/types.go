package core

import (
	"context"
	"image"
	"time"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatUnknown Format = "unknown"
)

// ContentType returns the MIME type for f, or application/octet-stream.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// Ext returns the conventional file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatUnknown:
		return ".bin"
	}
	return "." + string(f)
}

// Orientation is the EXIF orientation tag value (1-8).
type Orientation int

const (
	OrientationNormal     Orientation = 1
	OrientationFlipH      Orientation = 2
	OrientationRotate180  Orientation = 3
	OrientationFlipV      Orientation = 4
	OrientationTranspose  Orientation = 5
	OrientationRotate90   Orientation = 6
	OrientationTransverse Orientation = 7
	OrientationRotate270  Orientation = 8
)

// Valid reports whether o is one of the eight defined orientations.
func (o Orientation) Valid() bool { return o >= OrientationNormal && o <= OrientationRotate270 }

// SwapsAxes reports whether applying o exchanges width and height.
func (o Orientation) SwapsAxes() bool { return o >= OrientationTranspose && o <= OrientationRotate270 }

// Metadata holds image information gathered while the pipeline runs.
type Metadata struct {
	Width       int
	Height      int
	Format      Format
	SizeBytes   int64
	SampleSize  int
	Orientation Orientation
}

// ImageData is the in-memory representation passed through a pipeline.
// Data holds encoded bytes; Image holds the decoded pixel buffer when needed.
type ImageData struct {
	Data   []byte
	Format Format

	Image image.Image

	Meta Metadata
}

// FormatQuality pairs an output format with its encode quality.
type FormatQuality struct {
	Format  Format
	Quality int
}

// Step is the fundamental pipeline building block.  Each Step transforms an
// *ImageData value and must be safe for concurrent use across goroutines.
// A Step never mutates the ImageData it receives.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *ImageData) (*ImageData, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *ImageData)
	AfterStep(ctx context.Context, stepName string, img *ImageData, d time.Duration, err error)
}

// StorageKey uniquely identifies a stored blob.
type StorageKey struct {
	Bucket string
	Path   string
}
