package core

import (
	"image"
	"image/color"
)

// RGB565Color is a 16-bit opaque colour: 5 bits red, 6 bits green, 5 bits blue.
type RGB565Color uint16

func (c RGB565Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1f
	g6 := uint32(c>>5) & 0x3f
	b5 := uint32(c) & 0x1f
	r = (r5<<3 | r5>>2) * 0x101
	g = (g6<<2 | g6>>4) * 0x101
	b = (b5<<3 | b5>>2) * 0x101
	return r, g, b, 0xffff
}

// PackRGB565 packs 8-bit channels into an RGB565Color.
func PackRGB565(r, g, b uint8) RGB565Color {
	return RGB565Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGB565Model converts any colour to RGB565Color. Alpha is dropped after
// premultiplication, so transparent pixels become black.
var RGB565Model color.Model = color.ModelFunc(rgb565Model)

func rgb565Model(c color.Color) color.Color {
	if c, ok := c.(RGB565Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return PackRGB565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// RGB565 is an in-memory image of RGB565Color values, half the footprint of
// image.RGBA.
type RGB565 struct {
	// Pix holds one uint16 per pixel. The pixel at (x, y) is at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix []uint16
	// Stride is the Pix distance, in pixels, between vertically adjacent pixels.
	Stride int
	Rect   image.Rectangle
}

// NewRGB565 returns a new RGB565 image with the given bounds.
func NewRGB565(r image.Rectangle) *RGB565 {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &RGB565{Pix: make([]uint16, w*h), Stride: w, Rect: r}
}

func (p *RGB565) ColorModel() color.Model { return RGB565Model }

func (p *RGB565) Bounds() image.Rectangle { return p.Rect }

func (p *RGB565) At(x, y int) color.Color { return p.RGB565At(x, y) }

func (p *RGB565) RGB565At(x, y int) RGB565Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	return RGB565Color(p.Pix[p.PixOffset(x, y)])
}

// PixOffset returns the index of the pixel at (x, y) in Pix.
func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}

func (p *RGB565) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = uint16(rgb565Model(c).(RGB565Color))
}

func (p *RGB565) SetRGB565(x, y int, c RGB565Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = uint16(c)
}

// Opaque always reports true; the format has no alpha channel.
func (p *RGB565) Opaque() bool { return true }
