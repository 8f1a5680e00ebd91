package nbt

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SNBT returns the stringified form of tag, as accepted by Minecraft
// commands. It returns "" if the tag cannot be formatted (a nil tag or
// nesting too deep); use FormatSNBT to get the error.
func SNBT(tag Tag) string {
	var sb strings.Builder
	if err := FormatSNBT(&sb, tag); err != nil {
		return ""
	}
	return sb.String()
}

// FormatSNBT writes the stringified form of tag to w. Numbers carry their
// type suffix, arrays their type prefix, and compound entries keep their
// insertion order.
func FormatSNBT(w io.Writer, tag Tag) error {
	bw := bufio.NewWriter(w)
	if err := writeSNBT(bw, tag, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func writeSNBT(w *bufio.Writer, tag Tag, depth int) error {
	if depth > DefaultMaxDepth*4 {
		return &EncodeError{Err: ErrDepthLimitExceeded}
	}

	switch v := tag.(type) {
	case Byte:
		w.WriteString(strconv.FormatInt(int64(v), 10))
		w.WriteByte('b')
	case Short:
		w.WriteString(strconv.FormatInt(int64(v), 10))
		w.WriteByte('s')
	case Int:
		w.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		w.WriteString(strconv.FormatInt(int64(v), 10))
		w.WriteByte('L')
	case Float:
		writeSNBTFloat(w, float64(v), 32)
		w.WriteByte('f')
	case Double:
		writeSNBTFloat(w, float64(v), 64)
		w.WriteByte('d')
	case String:
		writeSNBTString(w, string(v))
	case ByteArray:
		w.WriteString("[B;")
		for i, x := range v {
			writeSep(w, i)
			w.WriteString(strconv.FormatInt(int64(x), 10))
			w.WriteByte('B')
		}
		w.WriteByte(']')
	case IntArray:
		w.WriteString("[I;")
		for i, x := range v {
			writeSep(w, i)
			w.WriteString(strconv.FormatInt(int64(x), 10))
		}
		w.WriteByte(']')
	case LongArray:
		w.WriteString("[L;")
		for i, x := range v {
			writeSep(w, i)
			w.WriteString(strconv.FormatInt(x, 10))
			w.WriteByte('L')
		}
		w.WriteByte(']')
	case *List:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		w.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				w.WriteString(", ")
			}
			if err := writeSNBT(w, item, depth+1); err != nil {
				return withSegment(err, indexSegment(i))
			}
		}
		w.WriteByte(']')
	case *Compound:
		if v == nil {
			return &EncodeError{Err: ErrNilTag}
		}
		w.WriteByte('{')
		i := 0
		for k, item := range v.All() {
			if i > 0 {
				w.WriteString(", ")
			}
			i++
			writeSNBTKey(w, k)
			w.WriteString(": ")
			if err := writeSNBT(w, item, depth+1); err != nil {
				return withSegment(err, keySegment(k))
			}
		}
		w.WriteByte('}')
	default:
		return &EncodeError{Err: ErrNilTag}
	}
	return nil
}

// writeSep writes the separator before array element i; the first element
// follows the type prefix after a single space.
func writeSep(w *bufio.Writer, i int) {
	if i > 0 {
		w.WriteByte(',')
	}
	w.WriteByte(' ')
}

func writeSNBTFloat(w *bufio.Writer, f float64, bits int) {
	switch {
	case math.IsInf(f, 1):
		w.WriteString("Infinity")
		return
	case math.IsInf(f, -1):
		w.WriteString("-Infinity")
		return
	case math.IsNaN(f):
		w.WriteString("NaN")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	w.WriteString(s)
}

func writeSNBTKey(w *bufio.Writer, k string) {
	if isBareKey(k) {
		w.WriteString(k)
		return
	}
	writeSNBTString(w, k)
}

// isBareKey reports whether k can appear unquoted.
func isBareKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == '+':
		default:
			return false
		}
	}
	return true
}

func writeSNBTString(w *bufio.Writer, s string) {
	w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			w.WriteString(`\\`)
		case '"':
			w.WriteString(`\"`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		default:
			if r < 0x20 || r == utf8.RuneError {
				w.WriteString(`\u`)
				h := strconv.FormatInt(int64(r), 16)
				w.WriteString(strings.Repeat("0", 4-len(h)))
				w.WriteString(h)
			} else {
				w.WriteRune(r)
			}
		}
	}
	w.WriteByte('"')
}
