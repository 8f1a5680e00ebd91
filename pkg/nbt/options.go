package nbt

import (
	"encoding/binary"
	"fmt"
)

// ByteOrder selects the integer byte order of the whole stream.
type ByteOrder int

const (
	// BigEndian is used by Java edition files.
	BigEndian ByteOrder = iota
	// LittleEndian is used by Bedrock edition files.
	LittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	}
	return fmt.Sprintf("ByteOrder(%d)", int(o))
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// StringEncoding selects how string payloads are interpreted.
type StringEncoding int

const (
	// ModifiedUTF8 is Java's DataOutput encoding: NUL as C0 80 and
	// supplementary characters as surrogate pairs.
	ModifiedUTF8 StringEncoding = iota
	// UTF8 is plain UTF-8, as written by Bedrock edition.
	UTF8
)

func (e StringEncoding) String() string {
	switch e {
	case ModifiedUTF8:
		return "mutf8"
	case UTF8:
		return "utf8"
	}
	return fmt.Sprintf("StringEncoding(%d)", int(e))
}

// DuplicateKeyPolicy decides what decoding does when a compound repeats a
// name.
type DuplicateKeyPolicy int

const (
	// DuplicateLastWins keeps the first position and the last value.
	DuplicateLastWins DuplicateKeyPolicy = iota
	// DuplicateReject fails with ErrDuplicateKey.
	DuplicateReject
)

// DefaultMaxDepth bounds nesting of compounds and lists. Minecraft itself
// uses the same limit.
const DefaultMaxDepth = 512

// Options configure decoding and encoding. The zero value is not useful;
// start from DefaultOptions or BedrockOptions.
type Options struct {
	ByteOrder   ByteOrder
	Strings     StringEncoding
	Compression Compression

	// MaxDepth is the deepest permitted nesting; the root compound is at
	// depth 1. Values <= 0 mean DefaultMaxDepth.
	MaxDepth int

	// StrictLength turns a Bedrock envelope length mismatch into an error.
	StrictLength bool

	DuplicateKeys DuplicateKeyPolicy
}

// DefaultOptions returns options for Java edition files: big-endian,
// modified UTF-8 strings and compression detected on decode.
func DefaultOptions() Options {
	return Options{
		ByteOrder:   BigEndian,
		Strings:     ModifiedUTF8,
		Compression: CompressionAuto,
		MaxDepth:    DefaultMaxDepth,
	}
}

// BedrockOptions returns options for Bedrock edition files.
func BedrockOptions() Options {
	return Options{
		ByteOrder:   LittleEndian,
		Strings:     UTF8,
		Compression: CompressionNone,
		MaxDepth:    DefaultMaxDepth,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
