package utils

import "bytes"

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatWebP    = "webp"
	formatGIF     = "gif"
	formatBMP     = "bmp"
	formatUnknown = "unknown"
)

// DetectFormat sniffs the magic header of data and returns the image format.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return formatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return formatPNG
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return formatWebP
	}
	if bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")) {
		return formatGIF
	}
	if data[0] == 'B' && data[1] == 'M' {
		return formatBMP
	}
	return formatUnknown
}

// ComputeSampleSize returns the largest power-of-two subsampling factor that
// keeps both halved dimensions at or above the requested size.
func ComputeSampleSize(width, height, reqWidth, reqHeight int) int {
	inSampleSize := 1
	halfW := width / 2
	halfH := height / 2
	for halfW/inSampleSize >= reqWidth && halfH/inSampleSize >= reqHeight {
		inSampleSize *= 2
	}
	return max(1, inSampleSize)
}

// SampledDimensions returns the size of an image subsampled by sample,
// never smaller than 1x1.
func SampledDimensions(width, height, sample int) (int, int) {
	if sample < 1 {
		sample = 1
	}
	return max(1, width/sample), max(1, height/sample)
}

// BoundDimensions scales (w, h) so the larger side equals bound, preserving
// aspect ratio and truncating toward zero. Dimensions already within bound, or
// a bound <= 0, are returned unchanged; the result is never upscaled.
func BoundDimensions(w, h, bound int) (int, int) {
	if bound <= 0 {
		return w, h
	}
	maxSide := float64(max(w, h))
	if maxSide <= float64(bound) {
		return w, h
	}
	scale := max(1, maxSide/float64(bound))
	return max(1, int(float64(w)/scale)), max(1, int(float64(h)/scale))
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
