package placeholder

import (
	"image"
	"image/color"
	"testing"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"banana", "B"},
		{"", "R"},
		{"   ", "R"},
		{"  soup", "S"},
		{"émincé", "É"},
		{"e\u0301clair", "É"}, // combining accent is composed first
		{"ßuppe", "SS"},
		{"7 layer dip", "7"},
	}
	for _, tc := range tests {
		if got := Glyph(tc.title); got != tc.want {
			t.Errorf("Glyph(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestForTitle(t *testing.T) {
	img := ForTitle("banana", DefaultSize)
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("bounds: got %v, want 256x256", b)
	}

	// Corners stay background; something dark is drawn in the middle.
	if !sameRGB(img.At(0, 0), Background) || !sameRGB(img.At(255, 255), Background) {
		t.Error("corners should be background")
	}
	if !hasDarkPixel(img, image.Rect(64, 64, 192, 192)) {
		t.Error("expected glyph pixels near the centre")
	}
}

func TestForTitle_DefaultSize(t *testing.T) {
	if b := ForTitle("", 0).Bounds(); b.Dx() != DefaultSize {
		t.Errorf("bounds: got %v", b)
	}
}

func TestFallback(t *testing.T) {
	img := Fallback()
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("bounds: got %v, want 32x32", b)
	}
	first := img.Pix[0]
	for i, v := range img.Pix {
		if v != first {
			t.Fatalf("pixel %d differs: %#04x vs %#04x", i, v, first)
		}
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 < 0xC8 || g>>8 < 0xC8 || b>>8 < 0xC8 || r>>8 > 0xD0 {
		t.Errorf("expected light gray, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func sameRGB(a color.Color, b color.RGBA) bool {
	r, g, bl, _ := a.RGBA()
	return uint8(r>>8) == b.R && uint8(g>>8) == b.G && uint8(bl>>8) == b.B
}

func hasDarkPixel(img image.Image, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if rr, _, _, _ := img.At(x, y).RGBA(); rr>>8 < 0x80 {
				return true
			}
		}
	}
	return false
}
