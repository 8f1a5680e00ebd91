// Package nbt decodes and encodes the Named Binary Tag format used by
// Minecraft save files, in both the Java edition framing (big-endian,
// usually gzip compressed) and the Bedrock edition framing (little-endian,
// optionally wrapped in a version + length envelope).
//
// A decoded file is a Document holding one root Compound. Values are the
// concrete types implementing Tag; switch on them directly:
//
//	switch v := tag.(type) {
//	case nbt.Int:
//		...
//	case *nbt.Compound:
//		...
//	}
package nbt

import "fmt"

// TagType identifies an NBT tag on the wire.
type TagType byte

// NBT tag type IDs.
const (
	TagEnd       TagType = 0
	TagByte      TagType = 1
	TagShort     TagType = 2
	TagInt       TagType = 3
	TagLong      TagType = 4
	TagFloat     TagType = 5
	TagDouble    TagType = 6
	TagByteArray TagType = 7
	TagString    TagType = 8
	TagList      TagType = 9
	TagCompound  TagType = 10
	TagIntArray  TagType = 11
	TagLongArray TagType = 12
)

var tagNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_Byte_Array",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_Int_Array",
	TagLongArray: "TAG_Long_Array",
}

// Valid reports whether t is one of the known tag types.
func (t TagType) Valid() bool {
	return t <= TagLongArray
}

func (t TagType) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("TAG_Unknown(%d)", byte(t))
}

// Tag is an NBT value. The set of implementations is closed: Byte, Short,
// Int, Long, Float, Double, ByteArray, String, *List, *Compound, IntArray
// and LongArray.
type Tag interface {
	Type() TagType
	tag()
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }
func (*List) Type() TagType     { return TagList }
func (*Compound) Type() TagType { return TagCompound }

func (Byte) tag()      {}
func (Short) tag()     {}
func (Int) tag()       {}
func (Long) tag()      {}
func (Float) tag()     {}
func (Double) tag()    {}
func (ByteArray) tag() {}
func (String) tag()    {}
func (IntArray) tag()  {}
func (LongArray) tag() {}
func (*List) tag()     {}
func (*Compound) tag() {}

// List is a homogeneous sequence of tags. Every item must have type Elem.
// An empty list conventionally declares TagEnd.
type List struct {
	Elem  TagType
	Items []Tag
}

// NewList returns a list of elem holding items.
func NewList(elem TagType, items ...Tag) *List {
	return &List{Elem: elem, Items: items}
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// Append adds items to the end of the list. It does not check their types;
// the encoder does.
func (l *List) Append(items ...Tag) {
	l.Items = append(l.Items, items...)
}

// Document is a decoded NBT file: one named root compound plus, for the
// Bedrock framing, the envelope that preceded it.
type Document struct {
	// Name is the root tag name, usually empty.
	Name string
	Root *Compound

	// Envelope is set by DecodeBedrock and nil for plain NBT.
	Envelope *Envelope

	// Warnings lists non-fatal inconsistencies found while decoding, such
	// as ErrLengthMismatch or ErrTrailingData.
	Warnings []error
}

// NewDocument returns a document with the given root name and an empty root.
func NewDocument(name string) *Document {
	return &Document{Name: name, Root: NewCompound()}
}

// Envelope is the Bedrock file header in front of the NBT payload.
type Envelope struct {
	Version       int32
	PayloadLength int32
}
