package ico

import (
	"fmt"
	"math"
)

const (
	fileHeaderLen   = 14  // BITMAPFILEHEADER
	infoHeaderLen   = 40  // BITMAPINFOHEADER
	v4InfoHeaderLen = 108 // BITMAPV4HEADER
	colorMasksLen   = 12  // red, green and blue masks after a BITMAPINFOHEADER
)

// DIB compression modes. Only these two occur in icons.
const (
	biRGB       = 0
	biBitFields = 3
)

// Default masks for 32 bpp BGRA pixels.
const (
	redMask32   = 0x00FF0000
	greenMask32 = 0x0000FF00
	blueMask32  = 0x000000FF
	alphaMask32 = 0xFF000000
)

// DIBHeader is the BITMAPINFOHEADER at the start of a bitmap payload,
// plus the colour masks that follow it when Compression is BI_BITFIELDS.
type DIBHeader struct {
	HeaderSize      uint32
	Width           int32
	Height          int32 // colour rows plus AND mask rows
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32

	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
	AlphaMask uint32
}

// EffectiveHeight is the pixel height of the image once the AND mask rows
// are excluded.
func (h DIBHeader) EffectiveHeight() int {
	return int(h.Height / 2)
}

// PaletteEntries returns the number of RGBQUADs between the header and the
// pixel rows.
func (h DIBHeader) PaletteEntries() int {
	if h.ColorsUsed != 0 {
		return int(h.ColorsUsed)
	}
	if h.BitCount <= 8 {
		return 1 << h.BitCount
	}
	return 0
}

// hasAlpha reports whether decoded pixels carry an alpha channel: 32 bpp
// with a non-zero alpha mask. Only synthesized BI_RGB masks have one.
func (h DIBHeader) hasAlpha() bool {
	return h.BitCount == 32 && h.AlphaMask != 0
}

// rowStride returns the 4-byte aligned length of one row of the colour
// bitmap.
func (h DIBHeader) rowStride() int64 {
	return (int64(h.Width)*int64(h.BitCount) + 31) / 32 * 4
}

// readDIBHeader parses BITMAPINFOHEADER and, for BI_BITFIELDS, the three
// colour masks that follow it.
func readDIBHeader(r *byteReader) (DIBHeader, error) {
	var h DIBHeader
	var err error

	if h.HeaderSize, err = r.ReadUint32("DIB header size"); err != nil {
		return h, err
	}
	if h.HeaderSize != infoHeaderLen {
		return h, &FormatError{
			Field:  "header size",
			Value:  int64(h.HeaderSize),
			Reason: fmt.Sprintf("wrong bitmap header size %d, want %d", h.HeaderSize, infoHeaderLen),
		}
	}
	if h.Width, err = r.ReadInt32("DIB width"); err != nil {
		return h, err
	}
	if h.Height, err = r.ReadInt32("DIB height"); err != nil {
		return h, err
	}
	if h.Planes, err = r.ReadUint16("DIB planes"); err != nil {
		return h, err
	}
	if h.BitCount, err = r.ReadUint16("DIB bit count"); err != nil {
		return h, err
	}
	if h.Compression, err = r.ReadUint32("DIB compression"); err != nil {
		return h, err
	}
	if h.ImageSize, err = r.ReadUint32("DIB image size"); err != nil {
		return h, err
	}
	if h.XPelsPerMeter, err = r.ReadInt32("DIB x resolution"); err != nil {
		return h, err
	}
	if h.YPelsPerMeter, err = r.ReadInt32("DIB y resolution"); err != nil {
		return h, err
	}
	if h.ColorsUsed, err = r.ReadUint32("DIB colors used"); err != nil {
		return h, err
	}
	if h.ColorsImportant, err = r.ReadUint32("DIB colors important"); err != nil {
		return h, err
	}

	if err := h.validate(); err != nil {
		return h, err
	}

	if h.Compression == biBitFields {
		if h.RedMask, err = r.ReadUint32("red mask"); err != nil {
			return h, err
		}
		if h.GreenMask, err = r.ReadUint32("green mask"); err != nil {
			return h, err
		}
		if h.BlueMask, err = r.ReadUint32("blue mask"); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (h DIBHeader) validate() error {
	if h.Planes != 1 {
		return &FormatError{
			Field:  "planes",
			Value:  int64(h.Planes),
			Reason: fmt.Sprintf("planes can't be %d, want 1", h.Planes),
		}
	}
	if h.Width <= 0 {
		return &FormatError{Field: "width", Value: int64(h.Width)}
	}
	if h.EffectiveHeight() <= 0 {
		return &FormatError{
			Field:  "height",
			Value:  int64(h.Height),
			Reason: fmt.Sprintf("height is %d, want a positive, doubled row count", h.Height),
		}
	}
	switch h.BitCount {
	case 1, 2, 4, 8, 16, 24, 32:
	default:
		return &FormatError{Field: "bit count", Value: int64(h.BitCount)}
	}
	if h.Compression != biRGB && h.Compression != biBitFields {
		return &FormatError{
			Field:  "compression",
			Value:  int64(h.Compression),
			Reason: fmt.Sprintf("compression %d is not supported, want 0 (BI_RGB) or 3 (BI_BITFIELDS)", h.Compression),
		}
	}
	return nil
}

// Bitmap is a headless DIB payload rebuilt into a complete BMP file.
type Bitmap struct {
	// Header is the payload's info header after 32 bpp mask synthesis.
	// Height still counts the AND mask rows.
	Header DIBHeader
	// Stream is the complete BMP file: file header, info header, masks,
	// then the payload's palette, colour rows and AND mask verbatim.
	Stream []byte
	// PixelOffset is the offset of the colour rows within Stream.
	PixelOffset uint32
	// Mask holds the AND mask rows, bottom-up, MaskStride bytes each.
	// It is nil when the payload ends before the mask.
	Mask       []byte
	MaskStride int

	maskOff  int64 // payload offset where the AND mask should start
	maskLen  int64
	maskHave int64 // payload bytes available from maskOff on
}

// missingMask returns the error for a bitmap whose AND mask is cut short.
func (bm *Bitmap) missingMask() error {
	return truncated("AND mask", bm.maskOff, bm.maskLen, bm.maskHave)
}

// ReconstructBitmap rebuilds a BMP file from a headless DIB payload.
//
// 32 bpp BI_RGB payloads carry alpha in the fourth byte without declaring
// it, so they are rewritten as BI_BITFIELDS with an explicit alpha mask in
// a BITMAPV4HEADER: the four masks sit directly after the 40 base fields
// and the colour space fields are zero, which is the layout BMP decoders
// need to honour the alpha mask. Payloads that already are BI_BITFIELDS
// keep their 40 byte header followed by the three colour masks.
//
// The palette and colour rows must fit in the payload; the AND mask may
// be cut short and is then left nil.
func ReconstructBitmap(payload []byte) (*Bitmap, error) {
	r := newByteReader(payload, 0)
	h, err := readDIBHeader(r)
	if err != nil {
		return nil, err
	}

	infoLen := infoHeaderLen
	switch {
	case h.Compression == biRGB && h.BitCount == 32:
		infoLen = v4InfoHeaderLen
		h.Compression = biBitFields
		h.RedMask = redMask32
		h.GreenMask = greenMask32
		h.BlueMask = blueMask32
		h.AlphaMask = alphaMask32
	case h.Compression == biBitFields:
		infoLen = infoHeaderLen + colorMasksLen
	}

	rest := r.Bytes()
	paletteLen := int64(h.PaletteEntries()) * 4
	if paletteLen > int64(len(rest)) {
		return nil, truncated("palette", int64(r.Position()), paletteLen, int64(len(rest)))
	}

	// Bound the colour rows by what the payload holds before any codec
	// sizes a buffer from the header.
	height := int64(h.EffectiveHeight())
	stride := h.rowStride()
	if avail := int64(len(rest)) - paletteLen; height > avail/stride {
		want := int64(math.MaxInt64)
		if height <= math.MaxInt64/stride {
			want = stride * height
		}
		return nil, truncated("colour rows", int64(r.Position())+paletteLen, want, avail)
	}

	pixelOffset := uint32(fileHeaderLen + infoLen + int(paletteLen))
	total := fileHeaderLen + infoLen + len(rest)

	w := newByteWriter(total)
	w.WriteBytes(magicBMP[:])
	w.WriteUint32(uint32(total))
	w.WriteUint32(0) // reserved
	w.WriteUint32(pixelOffset)
	writeInfoHeader(w, h, infoLen)
	w.WriteBytes(rest)

	bm := &Bitmap{
		Header:      h,
		Stream:      w.Bytes(),
		PixelOffset: pixelOffset,
		MaskStride:  maskStride(int(h.Width)),
	}

	// The AND mask follows the colour rows.
	maskOff := paletteLen + stride*height
	maskEnd := maskOff + int64(bm.MaskStride)*height
	if maskEnd <= int64(len(rest)) {
		bm.Mask = rest[maskOff:maskEnd]
	}
	bm.maskOff = int64(r.Position()) + maskOff
	bm.maskLen = maskEnd - maskOff
	bm.maskHave = int64(len(rest)) - maskOff
	return bm, nil
}

// writeInfoHeader writes the info header with the undoubled height,
// followed by the colour masks for BI_BITFIELDS. A BITMAPV4HEADER holds all
// four masks and is padded to its full length; the 40 byte header is
// followed by the three colour masks only.
func writeInfoHeader(w *byteWriter, h DIBHeader, infoLen int) {
	start := w.Len()
	headerLen := infoLen
	if infoLen != v4InfoHeaderLen {
		headerLen = infoHeaderLen
	}
	w.WriteUint32(uint32(headerLen))
	w.WriteInt32(h.Width)
	w.WriteInt32(h.Height / 2)
	w.WriteUint16(h.Planes)
	w.WriteUint16(h.BitCount)
	w.WriteUint32(h.Compression)
	w.WriteUint32(h.ImageSize)
	w.WriteInt32(h.XPelsPerMeter)
	w.WriteInt32(h.YPelsPerMeter)
	w.WriteUint32(h.ColorsUsed)
	w.WriteUint32(h.ColorsImportant)
	if h.Compression == biBitFields {
		w.WriteUint32(h.RedMask)
		w.WriteUint32(h.GreenMask)
		w.WriteUint32(h.BlueMask)
		if infoLen == v4InfoHeaderLen {
			w.WriteUint32(h.AlphaMask)
		}
	}
	// Colour space type, endpoints and gamma stay zero.
	w.Pad(infoLen - (w.Len() - start))
}
