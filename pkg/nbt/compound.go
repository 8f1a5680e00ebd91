package nbt

import "iter"

// Compound maps names to tags and remembers insertion order, which the
// encoder reproduces.
type Compound struct {
	keys   []string
	values map[string]Tag
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{values: make(map[string]Tag)}
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	return len(c.keys)
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	t, ok := c.values[name]
	return t, ok
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Set stores tag under name. Replacing an existing entry keeps its position.
func (c *Compound) Set(name string, tag Tag) {
	if c.values == nil {
		c.values = make(map[string]Tag)
	}
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = tag
}

// Delete removes name. It reports whether the entry existed.
func (c *Compound) Delete(name string) bool {
	if _, ok := c.values[name]; !ok {
		return false
	}
	delete(c.values, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the entry names in insertion order.
func (c *Compound) Keys() []string {
	return append([]string(nil), c.keys...)
}

// All iterates over the entries in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for _, k := range c.keys {
			if !yield(k, c.values[k]) {
				return
			}
		}
	}
}

// keyAt returns the i-th key; callers guarantee the bound.
func (c *Compound) keyAt(i int) string {
	return c.keys[i]
}
