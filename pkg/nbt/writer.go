package nbt

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer writes NBT binary data to an io.Writer.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
//
// Besides serving the tree encoder, the named-tag methods let a producer
// stream a document without building it in memory:
//
//	w.BeginCompound("")
//	w.WriteInt("xPos", 3)
//	w.EndCompound()
type Writer struct {
	w       io.Writer
	order   binary.ByteOrder
	strings StringEncoding
	scratch []byte
	err     error
}

// NewWriter creates a new big-endian NBT Writer with modified UTF-8 strings.
func NewWriter(w io.Writer) *Writer {
	return NewWriterOptions(w, BigEndian, ModifiedUTF8)
}

// NewWriterOptions creates a Writer with an explicit byte order and string
// encoding.
func NewWriterOptions(w io.Writer, order ByteOrder, strings StringEncoding) *Writer {
	return &Writer{w: w, order: order.binary(), strings: strings}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

func (w *Writer) putByte(v byte) {
	w.write([]byte{v})
}

func (w *Writer) putUint16(v uint16) {
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *Writer) putInt32(v int32) {
	var buf [4]byte
	w.order.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

func (w *Writer) putInt64(v int64) {
	var buf [8]byte
	w.order.PutUint64(buf[:], uint64(v))
	w.write(buf[:])
}

func (w *Writer) putLength(n int) {
	if n > math.MaxInt32 {
		w.fail(&EncodeError{Err: ErrInvalidLength})
		return
	}
	w.putInt32(int32(n))
}

// putString writes the length-prefixed wire form of s.
func (w *Writer) putString(s string) {
	if w.err != nil {
		return
	}
	b, ok := encodeString(w.scratch[:0], s, w.strings)
	w.scratch = b[:0]
	if !ok {
		w.fail(&EncodeError{Err: ErrInvalidStringEncoding})
		return
	}
	if len(b) > math.MaxUint16 {
		w.fail(&EncodeError{Err: ErrStringTooLong})
		return
	}
	w.putUint16(uint16(len(b)))
	if len(b) > 0 {
		w.write(b)
	}
}

func (w *Writer) writeTagHeader(tagType TagType, name string) {
	w.putByte(byte(tagType))
	w.putString(name)
}

// BeginCompound writes a compound tag header. Use name="" for the root.
func (w *Writer) BeginCompound(name string) {
	w.writeTagHeader(TagCompound, name)
}

// EndCompound writes an End tag to close a compound.
func (w *Writer) EndCompound() {
	w.putByte(byte(TagEnd))
}

// WriteTagByte writes a named byte tag.
func (w *Writer) WriteTagByte(name string, v byte) {
	w.writeTagHeader(TagByte, name)
	w.putByte(v)
}

// WriteShort writes a named short tag.
func (w *Writer) WriteShort(name string, v int16) {
	w.writeTagHeader(TagShort, name)
	w.putUint16(uint16(v))
}

// WriteInt writes a named int tag.
func (w *Writer) WriteInt(name string, v int32) {
	w.writeTagHeader(TagInt, name)
	w.putInt32(v)
}

// WriteLong writes a named long tag.
func (w *Writer) WriteLong(name string, v int64) {
	w.writeTagHeader(TagLong, name)
	w.putInt64(v)
}

// WriteFloat writes a named float tag.
func (w *Writer) WriteFloat(name string, v float32) {
	w.writeTagHeader(TagFloat, name)
	w.putInt32(int32(math.Float32bits(v)))
}

// WriteDouble writes a named double tag.
func (w *Writer) WriteDouble(name string, v float64) {
	w.writeTagHeader(TagDouble, name)
	w.putInt64(int64(math.Float64bits(v)))
}

// WriteByteArray writes a named byte array tag.
func (w *Writer) WriteByteArray(name string, v []byte) {
	w.writeTagHeader(TagByteArray, name)
	w.putLength(len(v))
	w.write(v)
}

// WriteString writes a named string tag.
func (w *Writer) WriteString(name string, v string) {
	w.writeTagHeader(TagString, name)
	w.putString(v)
}

// WriteIntArray writes a named int array tag.
func (w *Writer) WriteIntArray(name string, v []int32) {
	w.writeTagHeader(TagIntArray, name)
	w.putLength(len(v))
	for _, val := range v {
		w.putInt32(val)
	}
}

// WriteLongArray writes a named long array tag.
func (w *Writer) WriteLongArray(name string, v []int64) {
	w.writeTagHeader(TagLongArray, name)
	w.putLength(len(v))
	for _, val := range v {
		w.putInt64(val)
	}
}

// BeginList writes a named list tag header. The caller then writes count
// unnamed payloads of elemType.
func (w *Writer) BeginList(name string, elemType TagType, count int32) {
	w.writeTagHeader(TagList, name)
	w.putByte(byte(elemType))
	w.putInt32(count)
}
