package ico

import (
	"bytes"
	"image"
	"image/png"

	gobmp "github.com/sergeymakinen/go-bmp"
	xbmp "golang.org/x/image/bmp"
)

// BitmapDecoder decodes a complete BMP file (file header, info header,
// optional masks and pixel data).
type BitmapDecoder interface {
	DecodeBitmap(stream []byte) (image.Image, error)
}

// PNGDecoder decodes a complete PNG stream.
type PNGDecoder interface {
	DecodePNG(stream []byte) (image.Image, error)
}

// BitmapDecoderFunc adapts a function to BitmapDecoder.
type BitmapDecoderFunc func(stream []byte) (image.Image, error)

func (f BitmapDecoderFunc) DecodeBitmap(stream []byte) (image.Image, error) {
	return f(stream)
}

// PNGDecoderFunc adapts a function to PNGDecoder.
type PNGDecoderFunc func(stream []byte) (image.Image, error)

func (f PNGDecoderFunc) DecodePNG(stream []byte) (image.Image, error) {
	return f(stream)
}

var (
	// GoBMPDecoder decodes with github.com/sergeymakinen/go-bmp. It handles
	// 1, 2, 4, 8, 16, 24 and 32 bpp, BI_BITFIELDS and V4 headers, and is
	// the default.
	GoBMPDecoder BitmapDecoder = BitmapDecoderFunc(func(stream []byte) (image.Image, error) {
		return gobmp.Decode(bytes.NewReader(stream))
	})

	// XImageBMPDecoder decodes with golang.org/x/image/bmp, which only
	// supports 8, 24 and 32 bpp.
	XImageBMPDecoder BitmapDecoder = BitmapDecoderFunc(func(stream []byte) (image.Image, error) {
		return xbmp.Decode(bytes.NewReader(stream))
	})

	// StdPNGDecoder decodes with image/png.
	StdPNGDecoder PNGDecoder = PNGDecoderFunc(func(stream []byte) (image.Image, error) {
		return png.Decode(bytes.NewReader(stream))
	})
)
