// Package placeholder renders the stand-in images used when a recipe has no
// photo or its stored photo cannot be decoded.
package placeholder

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/Skryldev/recipebook/core"
)

const (
	// DefaultSize is the side of a titled placeholder.
	DefaultSize = 256
	// FallbackSize is the side of the plain placeholder returned for
	// undecodable blobs.
	FallbackSize = 32

	// DefaultGlyph is drawn when the title has no visible characters.
	DefaultGlyph = "R"

	textScale = 0.45
)

var (
	// Background is the placeholder fill.
	Background = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	// Foreground is the glyph colour.
	Foreground = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF}
)

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func regular() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontData, fontErr
}

// Glyph returns the character drawn for title: its first rune after NFC
// normalization, upper-cased. Blank titles yield DefaultGlyph.
func Glyph(title string) string {
	s := strings.TrimSpace(norm.NFC.String(title))
	if s == "" {
		return DefaultGlyph
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return DefaultGlyph
	}
	return cases.Upper(language.Und).String(string(r))
}

// ForTitle renders a size x size square with the title's glyph centred on a
// light gray background. size <= 0 selects DefaultSize.
func ForTitle(title string, size int) image.Image {
	if size <= 0 {
		size = DefaultSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	f, err := regular()
	if err != nil {
		return img
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size) * textScale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return img
	}
	defer face.Close()

	glyph := Glyph(title)
	m := face.Metrics()
	advance := font.MeasureString(face, glyph)
	half := fixed.I(size) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(Foreground),
		Face: face,
		Dot: fixed.Point26_6{
			X: half - advance/2,
			Y: half + (m.Ascent-m.Descent)/2,
		},
	}
	d.DrawString(glyph)
	return img
}

// Solid returns a size x size RGB565 image filled with c.
func Solid(size int, c color.Color) *core.RGB565 {
	if size <= 0 {
		size = FallbackSize
	}
	img := core.NewRGB565(image.Rect(0, 0, size, size))
	v := uint16(core.RGB565Model.Convert(c).(core.RGB565Color))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Fallback is the 32x32 light gray image substituted for undecodable data.
func Fallback() *core.RGB565 { return Solid(FallbackSize, Background) }
