package nbt

import (
	"iter"
	"strconv"
)

// Segment names a child within its parent: a key for compound entries, an
// index for list items and array elements.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Node is one step of a walk.
type Node struct {
	Segment Segment
	Tag     Tag
	Depth   int
}

// Walk visits the document depth first in pre-order. The root compound comes
// first at depth 0 under the document name; compound entries follow in
// insertion order and list and array elements in index order. The sequence
// can be ranged over any number of times. The tree must not be modified
// while a walk is in progress.
func Walk(doc *Document) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if doc == nil || doc.Root == nil {
			return
		}
		if !yield(Node{Segment: Segment{Key: doc.Name}, Tag: doc.Root}) {
			return
		}
		walk(doc.Root, yield)
	}
}

// WalkTag visits every descendant of tag in pre-order. Direct children are
// at depth 1. Scalars have no descendants.
func WalkTag(tag Tag) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(tag, yield)
	}
}

// Children visits the direct children of tag only, at depth 1. It is the
// lazy expansion step for tree views.
func Children(tag Tag) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		n := childCount(tag)
		for i := 0; i < n; i++ {
			seg, child := childAt(tag, i)
			if !yield(Node{Segment: seg, Tag: child, Depth: 1}) {
				return
			}
		}
	}
}

type walkFrame struct {
	tag   Tag
	next  int
	depth int
}

// walk uses an explicit stack so arbitrarily deep in-memory trees cannot
// exhaust the goroutine stack.
func walk(root Tag, yield func(Node) bool) {
	if childCount(root) == 0 {
		return
	}
	stack := []walkFrame{{tag: root, depth: 1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= childCount(top.tag) {
			stack = stack[:len(stack)-1]
			continue
		}
		seg, child := childAt(top.tag, top.next)
		top.next++
		depth := top.depth

		if !yield(Node{Segment: seg, Tag: child, Depth: depth}) {
			return
		}
		if childCount(child) > 0 {
			stack = append(stack, walkFrame{tag: child, depth: depth + 1})
		}
	}
}

func childCount(tag Tag) int {
	switch v := tag.(type) {
	case *Compound:
		if v != nil {
			return v.Len()
		}
	case *List:
		if v != nil {
			return len(v.Items)
		}
	case ByteArray:
		return len(v)
	case IntArray:
		return len(v)
	case LongArray:
		return len(v)
	}
	return 0
}

func childAt(tag Tag, i int) (Segment, Tag) {
	idx := Segment{Index: i, IsIndex: true}
	switch v := tag.(type) {
	case *Compound:
		k := v.keyAt(i)
		child, _ := v.Get(k)
		return Segment{Key: k}, child
	case *List:
		return idx, v.Items[i]
	case ByteArray:
		return idx, Byte(v[i])
	case IntArray:
		return idx, Int(v[i])
	case LongArray:
		return idx, Long(v[i])
	}
	return idx, nil
}
