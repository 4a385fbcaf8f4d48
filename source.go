package ico

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// readChunk bounds single allocations when the size of a source is unknown,
// so a corrupt size field cannot force a huge allocation up front.
const readChunk = 64 << 10

// sizer is implemented by sources that know their length, such as
// *bytes.Reader, *strings.Reader and *io.SectionReader.
type sizer interface {
	Size() int64
}

// readAt reads exactly size bytes at absolute offset off.
func readAt(src io.ReaderAt, off, size int64, field string) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if s, ok := src.(sizer); ok {
		if avail := s.Size() - off; avail < size {
			return nil, truncated(field, off, size, avail)
		}
	}

	buf := make([]byte, 0, min(size, readChunk))
	for int64(len(buf)) < size {
		n := min(size-int64(len(buf)), readChunk)
		start := len(buf)
		buf = append(buf, make([]byte, n)...)
		got, err := src.ReadAt(buf[start:], off+int64(start))
		if int64(got) < n {
			if err == nil || errors.Is(err, io.EOF) {
				return nil, truncated(field, off, size, int64(start+got))
			}
			return nil, fmt.Errorf("ico: reading %s at offset %d: %w", field, off, err)
		}
	}
	return buf, nil
}

// NewReaderSource adapts a sequential reader to the random access reads the
// container layout needs. Payloads may be stored out of order or overlap,
// so everything read from r is kept and later reads at earlier offsets are
// served from memory. Readers that already implement io.ReaderAt are
// returned unchanged.
func NewReaderSource(r io.Reader) io.ReaderAt {
	if ra, ok := r.(io.ReaderAt); ok {
		return ra
	}
	return &readerSource{r: r}
}

type readerSource struct {
	mu  sync.Mutex
	r   io.Reader
	buf []byte
	err error // sticky error from r
}

// fill reads from r until end bytes are buffered or r fails.
func (s *readerSource) fill(end int64) {
	for int64(len(s.buf)) < end && s.err == nil {
		n := min(end-int64(len(s.buf)), readChunk)
		start := len(s.buf)
		s.buf = append(s.buf, make([]byte, n)...)
		got, err := io.ReadFull(s.r, s.buf[start:])
		s.buf = s.buf[:start+got]
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = io.EOF
			}
			s.err = err
		}
	}
}

func (s *readerSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("ico: negative offset")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fill(off + int64(len(p)))
	if off >= int64(len(s.buf)) {
		return 0, s.err
	}
	n := copy(p, s.buf[off:])
	if n < len(p) {
		return n, s.err
	}
	return n, nil
}
