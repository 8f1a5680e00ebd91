package nbt

import (
	"encoding/binary"
	"math"
)

// Reader reads NBT primitives from a byte slice. The offset only moves
// forward; a read that would run past the end fails with ErrUnexpectedEOF
// and consumes nothing.
type Reader struct {
	buf     []byte
	off     int
	order   binary.ByteOrder
	strings StringEncoding
}

// NewReader returns a Reader over data using the given byte order and
// string encoding.
func NewReader(data []byte, order ByteOrder, strings StringEncoding) *Reader {
	return &Reader{buf: data, order: order.binary(), strings: strings}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) errorf(err error) error {
	return &DecodeError{Offset: r.off, Err: err}
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.errorf(ErrUnexpectedEOF)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// ReadInt16 reads a signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

// ReadInt64 reads a signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(r.order.Uint64(b)), nil
}

// ReadFloat32 reads an IEEE 754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(r.order.Uint32(b)), nil
}

// ReadFloat64 reads an IEEE 754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// ReadBytes reads n bytes. The result aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadString reads a string prefixed by its unsigned 16-bit byte length.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	start := r.off
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	s, ok := decodeString(b, r.strings)
	if !ok {
		return "", &DecodeError{Offset: start, Err: ErrInvalidStringEncoding}
	}
	return s, nil
}

// ReadTagType reads a tag type byte and checks it against the known set.
func (r *Reader) ReadTagType() (TagType, error) {
	start := r.off
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	t := TagType(b)
	if !t.Valid() {
		return 0, &DecodeError{Offset: start, Err: ErrUnknownTagType}
	}
	return t, nil
}

// readLength reads an Int32 element count and checks that count elements of
// size bytes each could still fit in the input.
func (r *Reader) readLength(size int) (int, error) {
	start := r.off
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &DecodeError{Offset: start, Err: ErrInvalidLength}
	}
	if size > 0 && int(n) > r.Remaining()/size {
		return 0, r.errorf(ErrUnexpectedEOF)
	}
	return int(n), nil
}
