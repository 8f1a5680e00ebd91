package nbt

import (
	"fmt"
	"io"
)

// Decode parses a complete NBT file. The input is decompressed first
// according to opts.Compression. On any error no document is returned.
func Decode(data []byte, opts Options) (*Document, error) {
	raw, err := Decompress(data, opts.Compression)
	if err != nil {
		return nil, err
	}

	r := NewReader(raw, opts.ByteOrder, opts.Strings)
	doc, err := ReadDocument(r, opts)
	if err != nil {
		return nil, err
	}
	if r.Remaining() > 0 {
		doc.Warnings = append(doc.Warnings, &DecodeError{Offset: r.Offset(), Err: ErrTrailingData})
	}
	return doc, nil
}

// DecodeFrom reads all of rd, decompressing on the fly, and decodes it.
func DecodeFrom(rd io.Reader, opts Options) (*Document, error) {
	dr, err := NewDecompressor(rd, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	data, err := io.ReadAll(dr)
	if err != nil {
		if opts.Compression != CompressionNone {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		return nil, fmt.Errorf("read nbt: %w", err)
	}
	opts.Compression = CompressionNone
	return Decode(data, opts)
}

// ReadDocument decodes one named root compound from r. Bytes after the root
// are left unread.
func ReadDocument(r *Reader, opts Options) (*Document, error) {
	start := r.Offset()
	typ, err := r.ReadTagType()
	if err != nil {
		return nil, err
	}
	if typ != TagCompound {
		return nil, &DecodeError{Offset: start, Err: ErrInvalidRoot}
	}
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}

	d := decoder{r: r, opts: opts, maxDepth: opts.maxDepth()}
	root, err := d.compound(1)
	if err != nil {
		return nil, err
	}
	return &Document{Name: name, Root: root}, nil
}

// DecodeTag decodes one unnamed payload of type typ, as found inside a list.
func DecodeTag(r *Reader, typ TagType, opts Options) (Tag, error) {
	d := decoder{r: r, opts: opts, maxDepth: opts.maxDepth()}
	return d.value(typ, 0)
}

type decoder struct {
	r        *Reader
	opts     Options
	maxDepth int
}

// value decodes a payload of type typ whose parent sits at depth.
func (d *decoder) value(typ TagType, depth int) (Tag, error) {
	r := d.r
	switch typ {
	case TagByte:
		v, err := r.ReadByte()
		return Byte(int8(v)), err
	case TagShort:
		v, err := r.ReadInt16()
		return Short(v), err
	case TagInt:
		v, err := r.ReadInt32()
		return Int(v), err
	case TagLong:
		v, err := r.ReadInt64()
		return Long(v), err
	case TagFloat:
		v, err := r.ReadFloat32()
		return Float(v), err
	case TagDouble:
		v, err := r.ReadFloat64()
		return Double(v), err
	case TagString:
		v, err := r.ReadString()
		return String(v), err
	case TagByteArray:
		n, err := r.readLength(1)
		if err != nil {
			return nil, err
		}
		b, err := r.ReadBytes(n)
		if err != nil {
			return nil, err
		}
		arr := make(ByteArray, n)
		for i, c := range b {
			arr[i] = int8(c)
		}
		return arr, nil
	case TagIntArray:
		n, err := r.readLength(4)
		if err != nil {
			return nil, err
		}
		arr := make(IntArray, n)
		for i := range arr {
			if arr[i], err = r.ReadInt32(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case TagLongArray:
		n, err := r.readLength(8)
		if err != nil {
			return nil, err
		}
		arr := make(LongArray, n)
		for i := range arr {
			if arr[i], err = r.ReadInt64(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case TagList:
		return d.list(depth + 1)
	case TagCompound:
		return d.compound(depth + 1)
	}
	return nil, r.errorf(ErrUnknownTagType)
}

func (d *decoder) compound(depth int) (*Compound, error) {
	if depth > d.maxDepth {
		return nil, d.r.errorf(ErrDepthLimitExceeded)
	}

	c := NewCompound()
	for {
		typ, err := d.r.ReadTagType()
		if err != nil {
			return nil, err
		}
		if typ == TagEnd {
			return c, nil
		}

		nameOff := d.r.Offset()
		name, err := d.r.ReadString()
		if err != nil {
			return nil, err
		}
		if d.opts.DuplicateKeys == DuplicateReject && c.Has(name) {
			return nil, &DecodeError{Offset: nameOff, Path: keySegment(name), Err: ErrDuplicateKey}
		}

		v, err := d.value(typ, depth)
		if err != nil {
			return nil, withSegment(err, keySegment(name))
		}
		c.Set(name, v)
	}
}

// minSize is the smallest encoding of a payload of each type, used to
// reject element counts that cannot fit in the remaining input.
var minSize = [...]int{
	TagEnd:       0,
	TagByte:      1,
	TagShort:     2,
	TagInt:       4,
	TagLong:      8,
	TagFloat:     4,
	TagDouble:    8,
	TagByteArray: 4,
	TagString:    2,
	TagList:      5,
	TagCompound:  1,
	TagIntArray:  4,
	TagLongArray: 4,
}

func (d *decoder) list(depth int) (*List, error) {
	if depth > d.maxDepth {
		return nil, d.r.errorf(ErrDepthLimitExceeded)
	}

	elem, err := d.r.ReadTagType()
	if err != nil {
		return nil, err
	}
	countOff := d.r.Offset()
	n, err := d.r.readLength(minSize[elem])
	if err != nil {
		return nil, err
	}
	if elem == TagEnd && n > 0 {
		return nil, &DecodeError{Offset: countOff, Err: ErrInvalidLength}
	}

	items := make([]Tag, n)
	for i := range items {
		v, err := d.value(elem, depth)
		if err != nil {
			return nil, withSegment(err, indexSegment(i))
		}
		items[i] = v
	}
	return &List{Elem: elem, Items: items}, nil
}
