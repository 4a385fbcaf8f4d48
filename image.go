package ico

import (
	"image"

	"golang.org/x/image/draw"
)

// Image is one decoded directory entry. The pixels are straight-alpha
// 32-bit RGBA with the origin at (0, 0).
type Image struct {
	*image.NRGBA

	Index int            // position in the directory
	Entry DirectoryEntry // directory entry the image came from
	Kind  PayloadKind    // payload encoding
}

// toNRGBA returns img as an NRGBA image anchored at the origin. Images that
// already are one are returned as is.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
