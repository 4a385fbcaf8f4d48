package ico

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEntry is one image of a synthetic file. Width, height and bit count
// only go into the directory entry; the payload is used as given.
type testEntry struct {
	width, height uint8
	bitCount      uint16
	payload       []byte
}

// buildFile lays out a file with payloads stored in directory order.
func buildFile(t *testing.T, typ ImageType, entries ...testEntry) []byte {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	return buildFileOrdered(t, typ, order, entries...)
}

// buildFileOrdered stores payloads in the given order; order[k] is the
// entry whose payload is written k-th after the directory.
func buildFileOrdered(t *testing.T, typ ImageType, order []int, entries ...testEntry) []byte {
	t.Helper()

	offsets := make([]uint32, len(entries))
	next := uint32(headerLen + entryLen*len(entries))
	for _, i := range order {
		offsets[i] = next
		next += uint32(len(entries[i].payload))
	}

	var buf bytes.Buffer
	write := func(v interface{}) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	write([3]uint16{0, uint16(typ), uint16(len(entries))})
	for i, e := range entries {
		write(DirectoryEntry{
			Width:    e.width,
			Height:   e.height,
			Planes:   1,
			BitCount: e.bitCount,
			Size:     uint32(len(e.payload)),
			Offset:   offsets[i],
		})
	}
	for _, i := range order {
		buf.Write(entries[i].payload)
	}
	return buf.Bytes()
}

// dib describes a headless bitmap payload.
type dib struct {
	width, height int
	bitCount      uint16
	compression   uint32
	colorsUsed    uint32
	masks         [3]uint32 // written when compression is BI_BITFIELDS
	palette       [][4]byte // BGRX, zero-filled up to the palette size
	pixels        []byte    // colour rows bottom-up, zero-filled when nil
	mask          []byte    // AND mask rows bottom-up, zero-filled when nil
	omitMask      bool
	headerSize    uint32 // defaults to 40
	planes        uint16 // defaults to 1
}

func (d dib) header() DIBHeader {
	return DIBHeader{
		HeaderSize:  infoHeaderLen,
		Width:       int32(d.width),
		Height:      int32(2 * d.height),
		Planes:      1,
		BitCount:    d.bitCount,
		Compression: d.compression,
		ColorsUsed:  d.colorsUsed,
	}
}

func (d dib) bytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	write := func(v interface{}) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	headerSize := d.headerSize
	if headerSize == 0 {
		headerSize = infoHeaderLen
	}
	planes := d.planes
	if planes == 0 {
		planes = 1
	}
	write(headerSize)
	write(int32(d.width))
	write(int32(2 * d.height))
	write(planes)
	write(d.bitCount)
	write(d.compression)
	write(uint32(0)) // image size
	write(int32(0))  // x resolution
	write(int32(0))  // y resolution
	write(d.colorsUsed)
	write(uint32(0)) // colors important
	if d.compression == biBitFields {
		write(d.masks)
	}

	h := d.header()
	for i := 0; i < h.PaletteEntries(); i++ {
		var entry [4]byte
		if i < len(d.palette) {
			entry = d.palette[i]
		}
		buf.Write(entry[:])
	}

	pixels := d.pixels
	if pixels == nil {
		pixels = make([]byte, int(h.rowStride())*d.height)
	}
	buf.Write(pixels)

	if !d.omitMask {
		mask := d.mask
		if mask == nil {
			mask = make([]byte, maskStride(d.width)*d.height)
		}
		buf.Write(mask)
	}
	return buf.Bytes()
}

// bgraRows packs 32 bpp pixels bottom-up. px is indexed by output row.
func bgraRows(width, height int, px func(x, y int) color.NRGBA) []byte {
	out := make([]byte, 0, width*height*4)
	for y := height - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			c := px(x, y)
			out = append(out, c.B, c.G, c.R, c.A)
		}
	}
	return out
}

// maskRows packs an AND mask bottom-up. set is indexed by output row.
func maskRows(width, height int, set func(x, y int) bool) []byte {
	stride := maskStride(width)
	out := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		row := out[(height-1-y)*stride:]
		for x := 0; x < width; x++ {
			if set(x, y) {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidNRGBA(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
