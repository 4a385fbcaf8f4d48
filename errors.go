package ico

import (
	"errors"
	"fmt"
)

var (
	ErrFormat    = errors.New("ico: invalid format")
	ErrTruncated = errors.New("ico: truncated data")
	ErrDecode    = errors.New("ico: decode failed")
)

// FormatError reports a violated structural invariant: a bad reserved
// field, an unknown image type, an unexpected DIB header size, a wrong
// plane count and so on.
type FormatError struct {
	Field  string // name of the offending field
	Value  int64  // value that was read
	Reason string // optional detail, replaces the default message
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("ico: invalid format: %s", e.Reason)
	}
	return fmt.Sprintf("ico: invalid format: %s is %d", e.Field, e.Value)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// TruncatedDataError reports that fewer bytes were available than a field
// or payload declares.
type TruncatedDataError struct {
	Field  string
	Offset int64 // absolute offset for container reads, payload-relative otherwise
	Want   int64
	Have   int64
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("ico: truncated data: %s at offset %d needs %d bytes, have %d",
		e.Field, e.Offset, e.Want, e.Have)
}

func (e *TruncatedDataError) Is(target error) bool {
	return target == ErrTruncated
}

// DecodeError reports that a pixel codec rejected an otherwise well-formed
// payload.
type DecodeError struct {
	Kind PayloadKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ico: decode failed: %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EntryError ties an error to the directory entry it occurred in.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

func truncated(field string, offset, want, have int64) error {
	if have < 0 {
		have = 0
	}
	return &TruncatedDataError{Field: field, Offset: offset, Want: want, Have: have}
}
