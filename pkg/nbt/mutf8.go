package nbt

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeString converts a wire string payload to a Go string.
func decodeString(b []byte, enc StringEncoding) (string, bool) {
	if enc == UTF8 {
		if !utf8.Valid(b) {
			return "", false
		}
		return string(b), true
	}
	return decodeMUTF8(b)
}

// encodeString appends the wire form of s to dst.
func encodeString(dst []byte, s string, enc StringEncoding) ([]byte, bool) {
	if enc == UTF8 {
		if !utf8.ValidString(s) {
			return dst, false
		}
		return append(dst, s...), true
	}
	return appendMUTF8(dst, s)
}

// decodeMUTF8 accepts only the canonical modified UTF-8 forms, so that
// re-encoding a decoded string reproduces the input bytes.
func decodeMUTF8(b []byte) (string, bool) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), true
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", false
		case c < 0x80:
			out = append(out, c)
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", false
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if r != 0 && r < 0x80 {
				return "", false
			}
			out = utf8.AppendRune(out, r)
			i += 2
		case c&0xF0 == 0xE0:
			r, ok := threeByte(b, i)
			if !ok {
				return "", false
			}
			i += 3
			switch {
			case r >= 0xD800 && r <= 0xDBFF:
				lo, ok := threeByte(b, i)
				if !ok || lo < 0xDC00 || lo > 0xDFFF {
					return "", false
				}
				out = utf8.AppendRune(out, utf16.DecodeRune(r, lo))
				i += 3
			case r >= 0xDC00 && r <= 0xDFFF:
				return "", false
			default:
				out = utf8.AppendRune(out, r)
			}
		default:
			return "", false
		}
	}
	return string(out), true
}

func threeByte(b []byte, i int) (rune, bool) {
	if i+2 >= len(b) || b[i]&0xF0 != 0xE0 || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	r := rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
	if r < 0x800 {
		return 0, false
	}
	return r, true
}

func appendMUTF8(dst []byte, s string) ([]byte, bool) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return dst, false
		}
		i += size

		switch {
		case r == 0:
			dst = append(dst, 0xC0, 0x80)
		case r < 0x80:
			dst = append(dst, byte(r))
		case r < 0x800:
			dst = append(dst, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			dst = appendThreeByte(dst, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = appendThreeByte(dst, hi)
			dst = appendThreeByte(dst, lo)
		}
	}
	return dst, true
}

func appendThreeByte(dst []byte, r rune) []byte {
	return append(dst, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}
