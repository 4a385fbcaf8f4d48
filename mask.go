package ico

import (
	"image"
	"image/color"
)

// maskStride is the length of one AND mask row: one bit per pixel, rounded
// up to a whole number of 4-byte words.
func maskStride(width int) int {
	return (width + 31) / 32 * 4
}

// andMask is the 1 bpp transparency plane of a bitmap icon. Rows are stored
// bottom-up and bits are read MSB first; a set bit marks a transparent
// pixel.
type andMask struct {
	data   []byte
	stride int
	height int
}

// newANDMask returns nil when data is nil so callers can treat a missing
// mask as fully opaque.
func newANDMask(data []byte, stride, height int) *andMask {
	if data == nil {
		return nil
	}
	return &andMask{data: data, stride: stride, height: height}
}

// Transparent reports whether output pixel (x, y) is masked out. Output
// row 0 is the last row stored in the mask.
func (m *andMask) Transparent(x, y int) bool {
	if m == nil || x < 0 || y < 0 || y >= m.height {
		return false
	}
	i := (m.height-1-y)*m.stride + x/8
	if i >= len(m.data) {
		return false
	}
	return (m.data[i]>>(7-uint(x%8)))&1 == 1
}

// allAlphaZero reports whether every pixel of img has zero alpha. Such a
// 32 bpp image carries no real alpha channel.
func allAlphaZero(img image.Image) bool {
	if n, ok := img.(*image.NRGBA); ok {
		b := n.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
			for i := 3; i < len(row); i += 4 {
				if row[i] != 0 {
					return false
				}
			}
		}
		return true
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}

// nrgbaAt returns the straight-alpha colour at (x, y). Pixels of an NRGBA
// image are read raw so the colour of fully transparent pixels survives.
func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// applyANDMask builds a fresh NRGBA image with the colours of img and
// alpha taken from mask: 0xFF where the mask bit is clear, 0x00 where it is
// set, and 0xFF everywhere when there is no mask.
func applyANDMask(img image.Image, mask *andMask) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			c := nrgbaAt(img, b.Min.X+x, b.Min.Y+y)
			a := uint8(0xFF)
			if mask.Transparent(x, y) {
				a = 0
			}
			row[4*x+0] = c.R
			row[4*x+1] = c.G
			row[4*x+2] = c.B
			row[4*x+3] = a
		}
	}
	return out
}

// reconcileAlpha merges a decoded colour image with the AND mask.
//
// Without an alpha channel the mask is the only source of transparency.
// With one, the decoded alpha wins unless it is zero everywhere, in which
// case the image was stored without alpha and the mask (or full opacity)
// applies.
func reconcileAlpha(img image.Image, hasAlpha bool, mask *andMask) *image.NRGBA {
	if hasAlpha && !allAlphaZero(img) {
		return toNRGBA(img)
	}
	return applyANDMask(img, mask)
}
