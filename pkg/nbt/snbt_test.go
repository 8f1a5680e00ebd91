package nbt

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSNBT(t *testing.T) {
	pos := NewCompound()
	pos.Set("x", Int(3))

	c := NewCompound()
	c.Set("b", Byte(1))
	c.Set("s", Short(-2))
	c.Set("l", Long(5))
	c.Set("f", Float(1))
	c.Set("d", Double(0.5))
	c.Set("name", String(`say "hi"`))
	c.Set("with space", NewList(TagInt, Int(1), Int(2)))
	c.Set("ba", ByteArray{1, -1})
	c.Set("ia", IntArray{})
	c.Set("la", LongArray{9})
	c.Set("pos", pos)

	want := `{b: 1b, s: -2s, l: 5L, f: 1.0f, d: 0.5d, name: "say \"hi\"", "with space": [1, 2], ` +
		`ba: [B; 1B, -1B], ia: [I;], la: [L; 9L], pos: {x: 3}}`
	if got := SNBT(c); got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestSNBTSpecialFloats(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{Double(math.Inf(1)), "Infinityd"},
		{Float(float32(math.Inf(-1))), "-Infinityf"},
		{Double(1e21), "1e+21d"},
		{Float(0.1), "0.1f"},
	}
	for _, tc := range tests {
		if got := SNBT(tc.tag); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestSNBTEscapes(t *testing.T) {
	if got := SNBT(String("a\nb\\\x01")); got != `"a\nb\\\u0001"` {
		t.Fatalf("unexpected escaping: %s", got)
	}
}

func TestSNBTUnformattable(t *testing.T) {
	bad := NewCompound()
	bad.Set("ok", Int(1))
	bad.Set("items", &List{Elem: TagInt, Items: []Tag{Int(2), nil}})

	var sb strings.Builder
	if err := FormatSNBT(&sb, bad); !errors.Is(err, ErrNilTag) {
		t.Fatalf("expected ErrNilTag, got %v", err)
	}
	if got := SNBT(bad); got != "" {
		t.Fatalf("expected an empty string, got %q", got)
	}
}
