package nbt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression is the framing applied around the encoded bytes. It is a
// property of the file, never of the tag tree.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZlib
	// CompressionAuto sniffs the magic bytes when decoding and writes
	// uncompressed output when encoding.
	CompressionAuto
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionAuto:
		return "auto"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// DetectCompression guesses the compression of data from its first bytes.
// Uncompressed NBT starts with a tag type byte, which never looks like a
// gzip or zlib header.
func DetectCompression(data []byte) Compression {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return CompressionGzip
	case len(data) >= 2 && isZlibHeader(data[0], data[1]):
		return CompressionZlib
	}
	return CompressionNone
}

// isZlibHeader checks CMF/FLG per RFC 1950: deflate method, window <= 32K
// and the header checksum.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// NewDecompressor wraps r so that reads return decompressed bytes. With
// CompressionAuto the first bytes of r are peeked to pick the format.
func NewDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	if c == CompressionAuto {
		br := bufio.NewReader(r)
		head, err := br.Peek(2)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: peek header: %v", ErrCompression, err)
		}
		c = DetectCompression(head)
		r = br
	}

	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
		return zr, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
		return zr, nil
	}
	return nil, fmt.Errorf("%w: unsupported compression %s", ErrCompression, c)
}

// NewCompressor returns a writer that compresses into w. Close flushes the
// compressed stream but does not close w.
func NewCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone, CompressionAuto:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		// Header fields stay zero so output does not depend on the clock.
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case CompressionZlib:
		return zlib.NewWriterLevel(w, zlib.DefaultCompression)
	}
	return nil, fmt.Errorf("%w: unsupported compression %s", ErrCompression, c)
}

// Decompress returns the decompressed form of data.
func Decompress(data []byte, c Compression) ([]byte, error) {
	if c == CompressionAuto {
		c = DetectCompression(data)
	}
	if c == CompressionNone {
		return data, nil
	}

	dr, err := NewDecompressor(bytes.NewReader(data), c)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	out, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompression, c, err)
	}
	return out, nil
}

// Compress returns data compressed with c.
func Compress(data []byte, c Compression) ([]byte, error) {
	if c == CompressionNone || c == CompressionAuto {
		return data, nil
	}

	var buf bytes.Buffer
	cw, err := NewCompressor(&buf, c)
	if err != nil {
		return nil, err
	}
	if _, err := cw.Write(data); err != nil {
		return nil, fmt.Errorf("compress %s: %w", c, err)
	}
	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("close %s writer: %w", c, err)
	}
	return buf.Bytes(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
