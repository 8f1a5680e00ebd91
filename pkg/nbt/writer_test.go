package nbt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var framings = []struct {
	name    string
	order   ByteOrder
	strings StringEncoding
}{
	{"java", BigEndian, ModifiedUTF8},
	{"bedrock", LittleEndian, UTF8},
}

func framingOptions(order ByteOrder, enc StringEncoding) Options {
	opts := rawOptions()
	opts.ByteOrder = order
	opts.Strings = enc
	return opts
}

// streamLevel writes a document through the named-tag methods only.
func streamLevel(t *testing.T, w *Writer, opts Options) {
	t.Helper()
	w.BeginCompound("Level")
	w.WriteTagByte("byte", 0xFB)
	w.WriteShort("short", -300)
	w.WriteInt("int", 123456)
	w.WriteLong("long", math.MinInt64)
	w.WriteFloat("float", 1.5)
	w.WriteDouble("double", -2.25)
	w.WriteByteArray("bytes", []byte{1, 0xFE, 3})
	w.WriteString("name", "h\u00e9llo \x00 \U0001F600")
	w.WriteIntArray("ints", []int32{100, -200})
	w.WriteLongArray("longs", []int64{1 << 40, -1})

	w.BeginList("tags", TagString, 2)
	for _, s := range []string{"a", "b"} {
		if err := EncodeTag(w, String(s), opts); err != nil {
			t.Fatalf("EncodeTag failed: %v", err)
		}
	}
	w.BeginList("empty", TagEnd, 0)

	w.BeginCompound("Pos")
	w.WriteInt("x", 3)
	w.WriteInt("z", -5)
	w.EndCompound()

	w.EndCompound()
	if err := w.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
}

func treeLevel() *Document {
	pos := NewCompound()
	pos.Set("x", Int(3))
	pos.Set("z", Int(-5))

	doc := NewDocument("Level")
	doc.Root.Set("byte", Byte(-5))
	doc.Root.Set("short", Short(-300))
	doc.Root.Set("int", Int(123456))
	doc.Root.Set("long", Long(math.MinInt64))
	doc.Root.Set("float", Float(1.5))
	doc.Root.Set("double", Double(-2.25))
	doc.Root.Set("bytes", ByteArray{1, -2, 3})
	doc.Root.Set("name", String("h\u00e9llo \x00 \U0001F600"))
	doc.Root.Set("ints", IntArray{100, -200})
	doc.Root.Set("longs", LongArray{1 << 40, -1})
	doc.Root.Set("tags", NewList(TagString, String("a"), String("b")))
	doc.Root.Set("empty", NewList(TagEnd))
	doc.Root.Set("Pos", pos)
	return doc
}

func TestStreamMatchesTree(t *testing.T) {
	for _, f := range framings {
		t.Run(f.name, func(t *testing.T) {
			opts := framingOptions(f.order, f.strings)

			var buf bytes.Buffer
			streamLevel(t, NewWriterOptions(&buf, f.order, f.strings), opts)

			want, err := Encode(treeLevel(), opts)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
				t.Fatalf("streamed bytes mismatch (-tree +stream):\n%s", diff)
			}

			doc, err := Decode(buf.Bytes(), opts)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !doc.Equal(treeLevel()) {
				t.Fatalf("expected the streamed document to decode to the tree, got %s", SNBT(doc.Root))
			}
		})
	}
}

func TestStreamListPayloads(t *testing.T) {
	items := []Tag{Int(7), Int(-1), Int(math.MaxInt32)}
	for _, f := range framings {
		t.Run(f.name, func(t *testing.T) {
			opts := framingOptions(f.order, f.strings)

			var buf bytes.Buffer
			w := NewWriterOptions(&buf, f.order, f.strings)
			w.BeginList("xs", TagInt, int32(len(items)))
			for _, item := range items {
				if err := EncodeTag(w, item, opts); err != nil {
					t.Fatalf("EncodeTag failed: %v", err)
				}
			}

			// Skip the tag id and the name to reach the list payload.
			r := NewReader(buf.Bytes()[1+2+len("xs"):], f.order, f.strings)
			got, err := DecodeTag(r, TagList, opts)
			if err != nil {
				t.Fatalf("DecodeTag failed: %v", err)
			}
			want := NewList(TagInt, items...)
			if !Equal(want, got) {
				t.Fatalf("expected %s, got %s", SNBT(want), SNBT(got))
			}
		})
	}
}

func TestWriteLongArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteLongArray("la", []int64{-1, 7})

	data := buf.Bytes()
	if TagType(data[0]) != TagLongArray {
		t.Fatalf("expected tag type %d, got %d", TagLongArray, data[0])
	}
	// tag(1) + name_len(2) + name(2) = 5, then count(4) + longs(16)
	if len(data) != 25 {
		t.Fatalf("expected 25 bytes, got %d", len(data))
	}
	v0 := int64(binary.BigEndian.Uint64(data[9:17]))
	v1 := int64(binary.BigEndian.Uint64(data[17:25]))
	if v0 != -1 || v1 != 7 {
		t.Fatalf("expected [-1,7], got [%d,%d]", v0, v1)
	}
}

func TestWriteLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterOptions(&buf, LittleEndian, UTF8)
	w.WriteInt("x", 0x01020304)

	data := buf.Bytes()
	// name length is little-endian too
	if data[1] != 1 || data[2] != 0 {
		t.Fatalf("expected little-endian name length, got % x", data[1:3])
	}
	if !bytes.Equal(data[4:8], []byte{4, 3, 2, 1}) {
		t.Fatalf("expected 04 03 02 01, got % x", data[4:8])
	}
}

func TestWriteStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("s", strings.Repeat("a", 70000))
	w.WriteInt("after", 1)

	if !errors.Is(w.Err(), ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", w.Err())
	}
}

func TestWriteModifiedUTF8Name(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteTagByte("a\x00", 1)

	data := buf.Bytes()
	// NUL is written as C0 80, so the name is 3 bytes long.
	if n := binary.BigEndian.Uint16(data[1:3]); n != 3 {
		t.Fatalf("expected name length 3, got %d", n)
	}
	if !bytes.Equal(data[3:6], []byte{'a', 0xC0, 0x80}) {
		t.Fatalf("expected 61 c0 80, got % x", data[3:6])
	}
}

func TestEncodeTagAfterWriterFailed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("s", strings.Repeat("a", 70000))
	first := w.Err()
	if first == nil {
		t.Fatal("expected the writer to have failed")
	}

	inner := NewCompound()
	inner.Set("k", NewList(TagInt, Int(1)))
	err := EncodeTag(w, inner, DefaultOptions())
	if err != first {
		t.Fatalf("expected the writer's first error back, got %v", err)
	}
	var ee *EncodeError
	if !errors.As(err, &ee) || ee.Path != "" {
		t.Fatalf("expected the error path to stay empty, got %v", err)
	}

	doc := NewDocument("")
	doc.Root.Set("c", inner)
	if err := WriteDocument(w, doc, DefaultOptions()); err != first || ee.Path != "" {
		t.Fatalf("expected WriteDocument to return the untouched first error, got %v", err)
	}
}
