package ico

import "encoding/binary"

// byteWriter appends little-endian values to a preallocated buffer.
type byteWriter struct {
	buf []byte
}

// newByteWriter creates a writer with room for size bytes.
func newByteWriter(size int) *byteWriter {
	return &byteWriter{buf: make([]byte, 0, size)}
}

func (w *byteWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *byteWriter) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *byteWriter) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *byteWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// Pad appends n zero bytes.
func (w *byteWriter) Pad(n int) {
	for range n {
		w.buf = append(w.buf, 0)
	}
}

// Len returns the number of bytes written so far.
func (w *byteWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes.
func (w *byteWriter) Bytes() []byte {
	return w.buf
}
