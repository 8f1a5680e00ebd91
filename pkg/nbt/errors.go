package nbt

import (
	"errors"
	"fmt"
)

// Error kinds. Decode and encode failures wrap one of these; test with
// errors.Is.
var (
	ErrUnexpectedEOF         = errors.New("nbt: unexpected end of data")
	ErrUnknownTagType        = errors.New("nbt: unknown tag type")
	ErrInvalidStringEncoding = errors.New("nbt: invalid string encoding")
	ErrListTypeMismatch      = errors.New("nbt: list element type mismatch")
	ErrDepthLimitExceeded    = errors.New("nbt: depth limit exceeded")
	ErrLengthMismatch        = errors.New("nbt: declared length mismatch")
	ErrCompression           = errors.New("nbt: compression error")
	ErrInvalidLength         = errors.New("nbt: invalid length")
	ErrInvalidRoot           = errors.New("nbt: root tag is not a compound")
	ErrDuplicateKey          = errors.New("nbt: duplicate compound key")
	ErrStringTooLong         = errors.New("nbt: string too long")
	ErrTrailingData          = errors.New("nbt: trailing data after root tag")
	ErrNilTag                = errors.New("nbt: nil tag")
)

// DecodeError reports where decoding stopped.
type DecodeError struct {
	// Offset is the position in the decompressed input.
	Offset int
	// Path locates the failing value, e.g. "Level.Sections[3].Blocks".
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
	}
	return fmt.Sprintf("%v at %s (offset %d)", e.Err, e.Path, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports which value could not be encoded.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v at %s", e.Err, e.Path)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// joinPath prefixes path with seg. Index segments look like "[3]" and attach
// without a dot.
func joinPath(seg, path string) string {
	switch {
	case path == "":
		return seg
	case path[0] == '[':
		return seg + path
	default:
		return seg + "." + path
	}
}

func keySegment(name string) string {
	if name == "" {
		return `""`
	}
	return name
}

func indexSegment(i int) string {
	return fmt.Sprintf("[%d]", i)
}

// withSegment prepends seg to the path of a DecodeError or EncodeError.
func withSegment(err error, seg string) error {
	switch e := err.(type) {
	case *DecodeError:
		e.Path = joinPath(seg, e.Path)
	case *EncodeError:
		e.Path = joinPath(seg, e.Path)
	}
	return err
}
