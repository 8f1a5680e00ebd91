package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
)

// Format names accepted by Config.Format.
const (
	FormatAuto    = "auto"
	FormatJava    = "java"
	FormatBedrock = "bedrock"
)

// MaxDepthLimit caps MaxDepth. The decoder recurses once per level, so an
// unbounded limit would let a crafted file exhaust the stack.
const MaxDepthLimit = 1 << 16

// Config holds the explorer configuration.
type Config struct {
	Format         string   `json:"format"`      // "auto", "java" or "bedrock"
	ByteOrder      string   `json:"byte_order"`  // overrides the format default: "big" or "little"
	Strings        string   `json:"strings"`     // overrides the format default: "mutf8" or "utf8"
	Compression    string   `json:"compression"` // "auto", "none", "gzip" or "zlib"
	MaxDepth       int      `json:"max_depth"`
	StrictLength   bool     `json:"strict_length"`
	RejectDupKeys  bool     `json:"reject_duplicate_keys"`
	BedrockVersion int32    `json:"bedrock_version"`
	Workers        int      `json:"workers"`
	Extensions     []string `json:"extensions"`
	Color          string   `json:"color"` // "auto", "always" or "never"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:         FormatAuto,
		Compression:    "auto",
		MaxDepth:       nbt.DefaultMaxDepth,
		BedrockVersion: 8,
		Workers:        runtime.NumCPU(),
		Extensions:     []string{".nbt", ".dat", ".dat_old", ".mca"},
		Color:          "auto",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["format"] {
		cfg.Format = fromFile.Format
	}
	if !explicitFlags["byte-order"] {
		cfg.ByteOrder = fromFile.ByteOrder
	}
	if !explicitFlags["strings"] {
		cfg.Strings = fromFile.Strings
	}
	if !explicitFlags["compression"] {
		cfg.Compression = fromFile.Compression
	}
	if !explicitFlags["max-depth"] {
		cfg.MaxDepth = fromFile.MaxDepth
	}
	if !explicitFlags["strict-length"] {
		cfg.StrictLength = fromFile.StrictLength
	}
	if !explicitFlags["reject-duplicates"] {
		cfg.RejectDupKeys = fromFile.RejectDupKeys
	}
	if !explicitFlags["bedrock-version"] {
		cfg.BedrockVersion = fromFile.BedrockVersion
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["ext"] {
		cfg.Extensions = fromFile.Extensions
	}
	if !explicitFlags["color"] {
		cfg.Color = fromFile.Color
	}
}

// Validate reports the first field holding a value outside its domain.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatJava, FormatBedrock:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q", c.Color)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("max depth must be at most %d, got %d", MaxDepthLimit, c.MaxDepth)
	}
	_, err := c.Options()
	return err
}

// Options converts the config into codec options. The format picks the base
// framing; ByteOrder, Strings and Compression override it when set.
func (c *Config) Options() (nbt.Options, error) {
	opts := nbt.DefaultOptions()
	if c.Format == FormatBedrock {
		opts = nbt.BedrockOptions()
	}

	switch strings.ToLower(c.ByteOrder) {
	case "":
	case "big":
		opts.ByteOrder = nbt.BigEndian
	case "little":
		opts.ByteOrder = nbt.LittleEndian
	default:
		return opts, fmt.Errorf("unknown byte order %q", c.ByteOrder)
	}

	switch strings.ToLower(c.Strings) {
	case "":
	case "mutf8":
		opts.Strings = nbt.ModifiedUTF8
	case "utf8":
		opts.Strings = nbt.UTF8
	default:
		return opts, fmt.Errorf("unknown string encoding %q", c.Strings)
	}

	comp, err := ParseCompression(c.Compression)
	if err != nil {
		return opts, err
	}
	// Bedrock files are never compressed, so auto keeps the raw framing.
	if comp != nbt.CompressionAuto || c.Format != FormatBedrock {
		opts.Compression = comp
	}

	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	opts.StrictLength = c.StrictLength
	if c.RejectDupKeys {
		opts.DuplicateKeys = nbt.DuplicateReject
	}
	return opts, nil
}

// ParseCompression maps a compression name to its codec value. The empty
// string means auto-detection.
func ParseCompression(name string) (nbt.Compression, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return nbt.CompressionAuto, nil
	case "none":
		return nbt.CompressionNone, nil
	case "gzip":
		return nbt.CompressionGzip, nil
	case "zlib":
		return nbt.CompressionZlib, nil
	}
	return nbt.CompressionAuto, fmt.Errorf("unknown compression %q", name)
}

// HasExtension reports whether name ends in one of the configured
// extensions, ignoring case.
func (c *Config) HasExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range c.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
