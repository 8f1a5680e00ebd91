package nbt

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// Encode serializes doc and compresses the result according to
// opts.Compression.
func Encode(doc *Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriterOptions(&buf, opts.ByteOrder, opts.Strings)
	if err := WriteDocument(w, doc, opts); err != nil {
		return nil, err
	}
	return Compress(buf.Bytes(), opts.Compression)
}

// EncodeTo encodes doc and writes it to w. Nothing is written if encoding
// fails.
func EncodeTo(w io.Writer, doc *Document, opts Options) error {
	data, err := Encode(doc, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write nbt: %w", err)
	}
	return nil
}

// WriteDocument writes the named root compound of doc to w without
// compression.
func WriteDocument(w *Writer, doc *Document, opts Options) error {
	if err := w.Err(); err != nil {
		return err
	}
	if doc == nil || doc.Root == nil {
		return &EncodeError{Err: ErrNilTag}
	}
	e := encoder{w: w, maxDepth: opts.maxDepth()}
	w.BeginCompound(doc.Name)
	if err := w.Err(); err != nil {
		return err
	}
	return e.compound(doc.Root, 1)
}

// EncodeTag writes the unnamed payload of tag, as it would appear inside a
// list. A writer that has already failed is left alone and its error is
// returned as is.
func EncodeTag(w *Writer, tag Tag, opts Options) error {
	if err := w.Err(); err != nil {
		return err
	}
	e := encoder{w: w, maxDepth: opts.maxDepth()}
	return e.value(tag, 0)
}

type encoder struct {
	w        *Writer
	maxDepth int
}

// value writes the unnamed payload of tag.
func (e *encoder) value(tag Tag, depth int) error {
	w := e.w
	switch v := tag.(type) {
	case Byte:
		w.putByte(byte(v))
	case Short:
		w.putUint16(uint16(v))
	case Int:
		w.putInt32(int32(v))
	case Long:
		w.putInt64(int64(v))
	case Float:
		w.putInt32(int32(math.Float32bits(float32(v))))
	case Double:
		w.putInt64(int64(math.Float64bits(float64(v))))
	case String:
		w.putString(string(v))
	case ByteArray:
		w.putLength(len(v))
		w.write(v.bytes())
	case IntArray:
		w.putLength(len(v))
		for _, x := range v {
			w.putInt32(x)
		}
	case LongArray:
		w.putLength(len(v))
		for _, x := range v {
			w.putInt64(x)
		}
	case *List:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		if err := e.checkList(v, depth+1); err != nil {
			return err
		}
		w.putByte(byte(v.Elem))
		w.putInt32(int32(len(v.Items)))
		return e.items(v, depth+1)
	case *Compound:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		return e.compound(v, depth+1)
	case nil:
		return &EncodeError{Err: ErrNilTag}
	default:
		return &EncodeError{Err: fmt.Errorf("%w: %T", ErrUnknownTagType, tag)}
	}
	return w.Err()
}

// named writes tag with its header through the Writer's named-tag methods,
// the same calls a streaming producer makes.
func (e *encoder) named(name string, tag Tag, depth int) error {
	w := e.w
	switch v := tag.(type) {
	case Byte:
		w.WriteTagByte(name, byte(v))
	case Short:
		w.WriteShort(name, int16(v))
	case Int:
		w.WriteInt(name, int32(v))
	case Long:
		w.WriteLong(name, int64(v))
	case Float:
		w.WriteFloat(name, float32(v))
	case Double:
		w.WriteDouble(name, float64(v))
	case String:
		w.WriteString(name, string(v))
	case ByteArray:
		w.WriteByteArray(name, v.bytes())
	case IntArray:
		w.WriteIntArray(name, v)
	case LongArray:
		w.WriteLongArray(name, v)
	case *List:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		if err := e.checkList(v, depth+1); err != nil {
			return err
		}
		w.BeginList(name, v.Elem, int32(len(v.Items)))
		if err := w.Err(); err != nil {
			return err
		}
		return e.items(v, depth+1)
	case *Compound:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		w.BeginCompound(name)
		if err := w.Err(); err != nil {
			return err
		}
		return e.compound(v, depth+1)
	case nil:
		return &EncodeError{Err: ErrNilTag}
	default:
		return &EncodeError{Err: fmt.Errorf("%w: %T", ErrUnknownTagType, tag)}
	}
	return w.Err()
}

func (e *encoder) compound(c *Compound, depth int) error {
	if depth > e.maxDepth {
		return &EncodeError{Err: ErrDepthLimitExceeded}
	}

	for name, v := range c.All() {
		if err := e.named(name, v, depth); err != nil {
			return withSegment(err, keySegment(name))
		}
	}
	e.w.EndCompound()
	return e.w.Err()
}

// checkList validates l before any of it is written.
func (e *encoder) checkList(l *List, depth int) error {
	if depth > e.maxDepth {
		return &EncodeError{Err: ErrDepthLimitExceeded}
	}
	if !l.Elem.Valid() {
		return &EncodeError{Err: ErrUnknownTagType}
	}
	if len(l.Items) > math.MaxInt32 {
		return &EncodeError{Err: ErrInvalidLength}
	}
	for i, item := range l.Items {
		if item == nil {
			return &EncodeError{Path: indexSegment(i), Err: ErrNilTag}
		}
		if item.Type() != l.Elem {
			err := fmt.Errorf("%w: declared %s, got %s", ErrListTypeMismatch, l.Elem, item.Type())
			return &EncodeError{Path: indexSegment(i), Err: err}
		}
	}
	return nil
}

func (e *encoder) items(l *List, depth int) error {
	for i, item := range l.Items {
		if err := e.value(item, depth); err != nil {
			return withSegment(err, indexSegment(i))
		}
	}
	return e.w.Err()
}

// bytes returns the array as raw bytes for the wire.
func (a ByteArray) bytes() []byte {
	b := make([]byte, len(a))
	for i, c := range a {
		b[i] = byte(c)
	}
	return b
}
