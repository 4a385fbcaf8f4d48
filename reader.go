package ico

import "encoding/binary"

// byteReader is a little-endian cursor over an in-memory byte slice.
//
// Every read names the field being read so that a short read turns into a
// TruncatedDataError that says exactly what was missing. base is the
// absolute offset of data[0] in the enclosing source and only affects
// diagnostics.
type byteReader struct {
	data []byte
	pos  int
	base int64
}

// newByteReader creates a cursor positioned at the start of data.
func newByteReader(data []byte, base int64) *byteReader {
	return &byteReader{data: data, base: base}
}

func (r *byteReader) need(n int, field string) error {
	if n < 0 || r.pos+n > len(r.data) {
		return truncated(field, r.base+int64(r.pos), int64(n), int64(len(r.data)-r.pos))
	}
	return nil
}

// ReadUint8 reads one byte.
func (r *byteReader) ReadUint8(field string) (uint8, error) {
	if err := r.need(1, field); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads 16 bits little-endian.
func (r *byteReader) ReadUint16(field string) (uint16, error) {
	if err := r.need(2, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads 32 bits little-endian.
func (r *byteReader) ReadUint32(field string) (uint32, error) {
	if err := r.need(4, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a signed 32-bit little-endian value.
func (r *byteReader) ReadInt32(field string) (int32, error) {
	v, err := r.ReadUint32(field)
	return int32(v), err
}

// Position returns the current offset relative to the start of data.
func (r *byteReader) Position() int {
	return r.pos
}

// Bytes returns the unread bytes as a slice of the underlying data.
func (r *byteReader) Bytes() []byte {
	return r.data[r.pos:]
}
