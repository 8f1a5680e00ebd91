package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/nbt-explorer/internal/explorer"
	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
	"github.com/OCharnyshevich/nbt-explorer/pkg/region"
)

type colors struct {
	header func(a ...any) string
	key    func(a ...any) string
	kind   func(a ...any) string
	value  map[nbt.TagType]func(a ...any) string
}

func newColors() *colors {
	number := color.New(color.FgCyan).SprintFunc()
	array := color.New(color.FgMagenta).SprintFunc()
	container := color.New(color.Faint).SprintFunc()
	return &colors{
		header: color.New(color.Bold, color.Underline).SprintFunc(),
		key:    color.New(color.FgYellow).SprintFunc(),
		kind:   color.New(color.FgBlue).SprintFunc(),
		value: map[nbt.TagType]func(a ...any) string{
			nbt.TagByte:      number,
			nbt.TagShort:     number,
			nbt.TagInt:       number,
			nbt.TagLong:      number,
			nbt.TagFloat:     number,
			nbt.TagDouble:    number,
			nbt.TagString:    color.New(color.FgGreen).SprintFunc(),
			nbt.TagByteArray: array,
			nbt.TagIntArray:  array,
			nbt.TagLongArray: array,
			nbt.TagList:      container,
			nbt.TagCompound:  container,
		},
	}
}

// dumper prints documents as an indented tree, one tag per line. Array
// elements are summarised instead of listed.
type dumper struct {
	w *bufio.Writer
	c *colors
}

func newDumper(w io.Writer) *dumper {
	return &dumper{w: bufio.NewWriter(w), c: newColors()}
}

func (d *dumper) header(entry *explorer.Entry) {
	line := fmt.Sprintf("%s (%s", entry.Path, entry.Format)
	if entry.Format == explorer.FormatBedrock {
		line += fmt.Sprintf(", version %d", entry.Version)
	}
	if entry.Format == explorer.FormatJava && entry.Compression != nbt.CompressionNone {
		line += ", " + entry.Compression.String()
	}
	fmt.Fprintln(d.w, d.c.header(line+")"))
}

func (d *dumper) chunk(pos region.ChunkPos) {
	fmt.Fprintf(d.w, "%s\n", d.c.header(fmt.Sprintf("chunk %d,%d", pos.X, pos.Z)))
}

func (d *dumper) document(doc *nbt.Document) error {
	skipBelow := -1
	for n := range nbt.Walk(doc) {
		if skipBelow >= 0 {
			if n.Depth > skipBelow {
				continue
			}
			skipBelow = -1
		}

		label := n.Segment.String()
		if n.Segment.IsIndex {
			label = "[" + label + "]"
		}
		typ := n.Tag.Type()
		value, err := summary(n.Tag)
		if err != nil {
			return fmt.Errorf("format %s: %w", label, err)
		}
		fmt.Fprintf(d.w, "%s%s %s %s\n",
			strings.Repeat("  ", n.Depth),
			d.c.key(label+":"),
			d.c.kind(typ.String()),
			d.c.value[typ](value))

		switch typ {
		case nbt.TagByteArray, nbt.TagIntArray, nbt.TagLongArray:
			skipBelow = n.Depth
		}
	}
	for _, w := range doc.Warnings {
		fmt.Fprintf(d.w, "%s %v\n", color.RedString("warning:"), w)
	}
	return d.w.Flush()
}

func summary(tag nbt.Tag) (string, error) {
	switch t := tag.(type) {
	case *nbt.Compound:
		return fmt.Sprintf("{%d entries}", t.Len()), nil
	case *nbt.List:
		return fmt.Sprintf("[%d x %s]", t.Len(), t.Elem), nil
	case nbt.ByteArray:
		return fmt.Sprintf("[%d bytes]", len(t)), nil
	case nbt.IntArray:
		return fmt.Sprintf("[%d ints]", len(t)), nil
	case nbt.LongArray:
		return fmt.Sprintf("[%d longs]", len(t)), nil
	}
	var sb strings.Builder
	if err := nbt.FormatSNBT(&sb, tag); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func sortedChunks(chunks map[region.ChunkPos]*nbt.Document) []region.ChunkPos {
	out := make([]region.ChunkPos, 0, len(chunks))
	for pos := range chunks {
		out = append(out, pos)
	}
	slices.SortFunc(out, func(a, b region.ChunkPos) int {
		if a.Z != b.Z {
			return a.Z - b.Z
		}
		return a.X - b.X
	})
	return out
}
