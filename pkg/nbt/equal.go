package nbt

import (
	"math"
	"slices"
)

// Equal reports whether a and b hold the same value. Lists and arrays
// compare element by element in order; compounds compare by key regardless
// of insertion order. Floating point values compare by bit pattern, so a NaN
// equals an identical NaN.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}

	switch x := a.(type) {
	case Byte, Short, Int, Long, String:
		return a == b
	case Float:
		return math.Float32bits(float32(x)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(x)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return slices.Equal(x, b.(ByteArray))
	case IntArray:
		return slices.Equal(x, b.(IntArray))
	case LongArray:
		return slices.Equal(x, b.(LongArray))
	case *List:
		y := b.(*List)
		if x.Elem != y.Elem || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		y := b.(*Compound)
		if x.Len() != y.Len() {
			return false
		}
		for k, v := range x.All() {
			w, ok := y.Get(k)
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal reports whether two documents have the same root name and
// structurally equal roots. Envelopes and warnings are not compared.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Name != o.Name {
		return false
	}
	if d.Root == nil || o.Root == nil {
		return d.Root == nil && o.Root == nil
	}
	return Equal(d.Root, o.Root)
}
