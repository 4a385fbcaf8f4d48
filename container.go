package ico

import (
	"fmt"
	"io"
)

const (
	headerLen = 6  // ICONDIR
	entryLen  = 16 // ICONDIRENTRY
)

// ImageType is the resource type stored in the file header.
type ImageType uint16

const (
	TypeIcon   ImageType = 1
	TypeCursor ImageType = 2
)

func (t ImageType) String() string {
	switch t {
	case TypeIcon:
		return "icon"
	case TypeCursor:
		return "cursor"
	default:
		return fmt.Sprintf("ImageType(%d)", uint16(t))
	}
}

// Header is the 6-byte file header (ICONDIR).
type Header struct {
	Reserved uint16 // always 0
	Type     ImageType
	Count    uint16 // number of directory entries
}

// DirectoryEntry describes one embedded image (ICONDIRENTRY).
//
// For cursors Planes and BitCount hold the hotspot coordinates; they are
// kept as read and not interpreted.
type DirectoryEntry struct {
	Width      uint8 // 0 means 256
	Height     uint8 // 0 means 256
	ColorCount uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	Size       uint32 // payload length in bytes
	Offset     uint32 // payload offset from the start of the file
}

// Dimensions returns the size advertised by the directory, mapping the
// 0 byte to 256.
func (e DirectoryEntry) Dimensions() (width, height int) {
	width, height = int(e.Width), int(e.Height)
	if width == 0 {
		width = 256
	}
	if height == 0 {
		height = 256
	}
	return width, height
}

// end returns the offset one past the payload.
func (e DirectoryEntry) end() int64 {
	return int64(e.Offset) + int64(e.Size)
}

// Container is a parsed file header and directory. Payloads are not read.
type Container struct {
	Header  Header
	Entries []DirectoryEntry
}

// Parse reads and validates the file header and the directory table.
// Directory order is the order images are reported in, independent of
// where each payload is stored.
func Parse(src io.ReaderAt) (*Container, error) {
	data, err := readAt(src, 0, headerLen, "header")
	if err != nil {
		return nil, err
	}
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	dirLen := int64(header.Count) * entryLen
	data, err = readAt(src, headerLen, dirLen, "directory")
	if err != nil {
		return nil, err
	}

	r := newByteReader(data, headerLen)
	entries := make([]DirectoryEntry, header.Count)
	for i := range entries {
		if entries[i], err = parseEntry(r); err != nil {
			return nil, fmt.Errorf("directory entry %d: %w", i, err)
		}
	}

	return &Container{Header: header, Entries: entries}, nil
}

// parseHeader decodes and validates ICONDIR.
func parseHeader(data []byte) (Header, error) {
	r := newByteReader(data, 0)

	var h Header
	var err error
	if h.Reserved, err = r.ReadUint16("reserved"); err != nil {
		return Header{}, err
	}
	typ, err := r.ReadUint16("type")
	if err != nil {
		return Header{}, err
	}
	h.Type = ImageType(typ)
	if h.Count, err = r.ReadUint16("count"); err != nil {
		return Header{}, err
	}

	// The field is signed in the reference layout; report it both ways so
	// 0xdabf shows up as -9985 as well.
	if h.Reserved != 0 {
		return Header{}, &FormatError{
			Field:  "reserved",
			Value:  int64(int16(h.Reserved)),
			Reason: fmt.Sprintf("reserved is %d (%#04x), want 0", int16(h.Reserved), h.Reserved),
		}
	}
	if h.Type != TypeIcon && h.Type != TypeCursor {
		return Header{}, &FormatError{
			Field:  "type",
			Value:  int64(int16(typ)),
			Reason: fmt.Sprintf("image type is %d, want 1 (icon) or 2 (cursor)", int16(typ)),
		}
	}
	return h, nil
}

// parseEntry decodes one ICONDIRENTRY. All 16 bytes are consumed, including
// the ones this package never looks at.
func parseEntry(r *byteReader) (DirectoryEntry, error) {
	var e DirectoryEntry
	var err error
	if e.Width, err = r.ReadUint8("width"); err != nil {
		return e, err
	}
	if e.Height, err = r.ReadUint8("height"); err != nil {
		return e, err
	}
	if e.ColorCount, err = r.ReadUint8("color count"); err != nil {
		return e, err
	}
	if e.Reserved, err = r.ReadUint8("entry reserved"); err != nil {
		return e, err
	}
	if e.Planes, err = r.ReadUint16("planes"); err != nil {
		return e, err
	}
	if e.BitCount, err = r.ReadUint16("bit count"); err != nil {
		return e, err
	}
	if e.Size, err = r.ReadUint32("size"); err != nil {
		return e, err
	}
	if e.Offset, err = r.ReadUint32("offset"); err != nil {
		return e, err
	}
	return e, nil
}

// EntryLayout describes where a payload sits relative to the rest of the
// file. None of these conditions is an error; they are reported so callers
// can flag unusual files.
type EntryLayout struct {
	// OutOfOrder is set when the payload starts before the end of the
	// previous entry's payload, i.e. a forward-only reader would have to
	// seek backwards.
	OutOfOrder bool
	// OverlapsDirectory is set when the payload starts inside the header
	// or directory table.
	OverlapsDirectory bool
}

// Layout reports the layout flags of every entry, in directory order.
func (c *Container) Layout() []EntryLayout {
	dirEnd := int64(headerLen) + int64(len(c.Entries))*entryLen
	layout := make([]EntryLayout, len(c.Entries))

	prevEnd := dirEnd
	for i, e := range c.Entries {
		layout[i].OutOfOrder = int64(e.Offset) < prevEnd && i > 0
		layout[i].OverlapsDirectory = int64(e.Offset) < dirEnd
		prevEnd = e.end()
	}
	return layout
}

// readPayload reads the payload of entry i.
func (c *Container) readPayload(src io.ReaderAt, i int) ([]byte, error) {
	e := c.Entries[i]
	return readAt(src, int64(e.Offset), int64(e.Size), "payload")
}
