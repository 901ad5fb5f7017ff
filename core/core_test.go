package core

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func TestRGB565_RoundTrip(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		want color.RGBA
	}{
		{color.RGBA{0, 0, 0, 255}, color.RGBA{0, 0, 0, 255}},
		{color.RGBA{255, 255, 255, 255}, color.RGBA{255, 255, 255, 255}},
		{color.RGBA{0xCC, 0xCC, 0xCC, 255}, color.RGBA{0xCE, 0xCF, 0xCE, 255}},
	}
	for _, tc := range tests {
		img := NewRGB565(image.Rect(0, 0, 1, 1))
		img.Set(0, 0, tc.in)
		got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
		if got != tc.want {
			t.Errorf("%v: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRGB565_OutOfBounds(t *testing.T) {
	img := NewRGB565(image.Rect(2, 2, 4, 4))
	img.Set(0, 0, color.White)
	if img.RGB565At(0, 0) != 0 {
		t.Error("out of bounds read should be zero")
	}
	img.SetRGB565(3, 3, 0xffff)
	if img.Pix[img.PixOffset(3, 3)] != 0xffff || img.PixOffset(3, 3) != 3 {
		t.Errorf("offset: %d", img.PixOffset(3, 3))
	}
	if !img.Opaque() {
		t.Error("RGB565 is always opaque")
	}
}

type fakeEncoder struct{ format Format }

func (f fakeEncoder) Encode(context.Context, image.Image, EncodeOptions) ([]byte, error) {
	return []byte(f.format), nil
}
func (f fakeEncoder) CanEncode(format Format) bool { return format == f.format }

func TestPreferredEncoder(t *testing.T) {
	prefs := []FormatQuality{{FormatWebP, 80}, {FormatJPEG, 85}}

	reg := NewRegistry()
	if _, _, ok := PreferredEncoder(reg, prefs); ok {
		t.Fatal("empty registry should not match")
	}

	reg.RegisterEncoder(FormatJPEG, fakeEncoder{FormatJPEG})
	got, _, ok := PreferredEncoder(reg, prefs)
	if !ok || got.Format != FormatJPEG || got.Quality != 85 {
		t.Errorf("fallback: got %+v %v", got, ok)
	}

	reg.RegisterEncoder(FormatWebP, fakeEncoder{FormatWebP})
	got, _, _ = PreferredEncoder(reg, prefs)
	if got.Format != FormatWebP || got.Quality != 80 {
		t.Errorf("preferred: got %+v", got)
	}
}

func TestOrientation(t *testing.T) {
	if OrientationNormal.SwapsAxes() || OrientationRotate180.SwapsAxes() {
		t.Error("normal/180 must not swap axes")
	}
	if !OrientationRotate90.SwapsAxes() || !OrientationTranspose.SwapsAxes() {
		t.Error("90/transpose must swap axes")
	}
	if Orientation(0).Valid() || Orientation(9).Valid() {
		t.Error("out-of-range orientation reported valid")
	}
}

func TestFormatExt(t *testing.T) {
	if FormatJPEG.Ext() != ".jpg" || FormatWebP.Ext() != ".webp" || FormatJPEG.ContentType() != "image/jpeg" {
		t.Error("unexpected extension or content type")
	}
}
