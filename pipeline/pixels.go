package pipeline

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/recipebook/core"
	"github.com/Skryldev/recipebook/utils"
)

// Subsample picks one pixel per sample x sample block of src (the block
// centre, clamped to the image) and packs it into a new RGB565 buffer. A
// sample of 1 converts without dropping pixels.
func Subsample(src image.Image, sample int) *core.RGB565 {
	if sample < 1 {
		sample = 1
	}
	b := src.Bounds()
	w, h := utils.SampledDimensions(b.Dx(), b.Dy(), sample)
	dst := core.NewRGB565(image.Rect(0, 0, w, h))

	srcX := func(x int) int { return min(b.Min.X+x*sample+sample/2, b.Max.X-1) }
	srcY := func(y int) int { return min(b.Min.Y+y*sample+sample/2, b.Max.Y-1) }
	if sample == 1 {
		srcX = func(x int) int { return b.Min.X + x }
		srcY = func(y int) int { return b.Min.Y + y }
	}

	switch s := src.(type) {
	case *core.RGB565:
		for y := 0; y < h; y++ {
			sy := srcY(y)
			for x := 0; x < w; x++ {
				dst.Pix[y*dst.Stride+x] = s.Pix[s.PixOffset(srcX(x), sy)]
			}
		}
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			sy := srcY(y)
			for x := 0; x < w; x++ {
				sx := srcX(x)
				yi, ci := s.YOffset(sx, sy), s.COffset(sx, sy)
				r, g, bl := color.YCbCrToRGB(s.Y[yi], s.Cb[ci], s.Cr[ci])
				dst.Pix[y*dst.Stride+x] = uint16(core.PackRGB565(r, g, bl))
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			sy := srcY(y)
			for x := 0; x < w; x++ {
				i := s.PixOffset(srcX(x), sy)
				dst.Pix[y*dst.Stride+x] = uint16(core.PackRGB565(s.Pix[i], s.Pix[i+1], s.Pix[i+2]))
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			sy := srcY(y)
			for x := 0; x < w; x++ {
				v := s.Pix[s.PixOffset(srcX(x), sy)]
				dst.Pix[y*dst.Stride+x] = uint16(core.PackRGB565(v, v, v))
			}
		}
	default:
		for y := 0; y < h; y++ {
			sy := srcY(y)
			for x := 0; x < w; x++ {
				dst.Set(x, y, src.At(srcX(x), sy))
			}
		}
	}
	return dst
}

// Scale resamples src to w x h with bilinear filtering into an image
// allocated by newImage.
func Scale(src image.Image, w, h int, newImage func(image.Rectangle) draw.Image) draw.Image {
	dst := newImage(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// PixelOrienter implements core.Orienter by remapping pixels. RGB565 input
// stays RGB565; any other input is returned as *image.RGBA.
type PixelOrienter struct{}

func (PixelOrienter) Orient(img image.Image, o core.Orientation) image.Image {
	return Orient(img, o)
}

// Orient returns a new image with the EXIF orientation o applied so the
// result displays upright. OrientationNormal and invalid values return img.
func Orient(img image.Image, o core.Orientation) image.Image {
	if !o.Valid() || o == core.OrientationNormal {
		return img
	}
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	dstW, dstH := srcW, srcH
	if o.SwapsAxes() {
		dstW, dstH = srcH, srcW
	}

	mapping := func(sx, sy int) (int, int) {
		switch o {
		case core.OrientationFlipH:
			return srcW - 1 - sx, sy
		case core.OrientationRotate180:
			return srcW - 1 - sx, srcH - 1 - sy
		case core.OrientationFlipV:
			return sx, srcH - 1 - sy
		case core.OrientationTranspose:
			return sy, sx
		case core.OrientationRotate90:
			return srcH - 1 - sy, sx
		case core.OrientationTransverse:
			return srcH - 1 - sy, srcW - 1 - sx
		default: // core.OrientationRotate270
			return sy, srcW - 1 - sx
		}
	}

	if src, ok := img.(*core.RGB565); ok {
		dst := core.NewRGB565(image.Rect(0, 0, dstW, dstH))
		for sy := 0; sy < srcH; sy++ {
			for sx := 0; sx < srcW; sx++ {
				dx, dy := mapping(sx, sy)
				dst.Pix[dy*dst.Stride+dx] = src.Pix[src.PixOffset(b.Min.X+sx, b.Min.Y+sy)]
			}
		}
		return dst
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for sy := 0; sy < srcH; sy++ {
		for sx := 0; sx < srcW; sx++ {
			dx, dy := mapping(sx, sy)
			dst.Set(dx, dy, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

var _ core.Orienter = PixelOrienter{}
