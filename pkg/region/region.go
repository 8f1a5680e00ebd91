// Package region reads and writes Anvil region files (.mca), which pack up
// to 32x32 independently compressed NBT chunks behind a sector table.
package region

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
)

const (
	sectorSize    = 4096
	headerSectors = 2 // location table + timestamp table
	chunksPerSide = 32
	chunkCount    = chunksPerSide * chunksPerSide
	maxSectors    = 0xFF
)

// Chunk compression ids stored in the byte after each chunk's length.
const (
	CompressionGzip byte = 1
	CompressionZlib byte = 2
	CompressionNone byte = 3
)

var (
	ErrUnsupportedCompression = errors.New("region: unsupported chunk compression")
	ErrChunkNotFound          = errors.New("region: chunk not present")
	ErrCorrupt                = errors.New("region: corrupt region file")
	ErrChunkTooLarge          = errors.New("region: chunk exceeds 255 sectors")
)

// ChunkPos is a chunk coordinate. Only the low five bits select the slot
// inside a region, so absolute world coordinates may be used directly.
type ChunkPos struct {
	X, Z int
}

func (p ChunkPos) index() int {
	return (p.X & 31) + (p.Z&31)*chunksPerSide
}

// FileName returns the conventional region file name for region (rx, rz).
func FileName(rx, rz int) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// Region is an open region file. Chunks are decoded lazily by Chunk.
type Region struct {
	r          io.ReaderAt
	size       int64
	locations  [chunkCount]uint32
	timestamps [chunkCount]uint32
	opts       nbt.Options
	closer     io.Closer
}

// ReadRegion parses the header of a region held in r. size is the total
// length of the region data; opts controls how chunk NBT is decoded.
func ReadRegion(r io.ReaderAt, size int64, opts nbt.Options) (*Region, error) {
	if size < headerSectors*sectorSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, size)
	}

	var header [headerSectors * sectorSize]byte
	if _, err := r.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("read region header: %w", err)
	}

	rg := &Region{r: r, size: size, opts: opts}
	for i := range chunkCount {
		rg.locations[i] = binary.BigEndian.Uint32(header[i*4:])
		rg.timestamps[i] = binary.BigEndian.Uint32(header[sectorSize+i*4:])
	}
	// Chunks are always stored uncompressed inside their own framing.
	rg.opts.Compression = nbt.CompressionNone
	return rg, nil
}

// Open reads the region file at path. The caller must Close the result.
func Open(path string, opts nbt.Options) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat region file: %w", err)
	}

	rg, err := ReadRegion(f, info.Size(), opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	rg.closer = f
	return rg, nil
}

// Close releases the underlying file, if Open created one.
func (rg *Region) Close() error {
	if rg.closer == nil {
		return nil
	}
	return rg.closer.Close()
}

// Chunks lists the positions of all present chunks in slot order.
func (rg *Region) Chunks() []ChunkPos {
	var out []ChunkPos
	for i, loc := range rg.locations {
		if loc != 0 {
			out = append(out, ChunkPos{X: i % chunksPerSide, Z: i / chunksPerSide})
		}
	}
	return out
}

// Timestamp reports the last modification time recorded for a chunk.
func (rg *Region) Timestamp(pos ChunkPos) time.Time {
	return time.Unix(int64(rg.timestamps[pos.index()]), 0)
}

// Chunk decodes the chunk at pos.
func (rg *Region) Chunk(pos ChunkPos) (*nbt.Document, error) {
	data, err := rg.RawChunk(pos)
	if err != nil {
		return nil, err
	}
	doc, err := nbt.Decode(data, rg.opts)
	if err != nil {
		return nil, fmt.Errorf("decode chunk (%d,%d): %w", pos.X, pos.Z, err)
	}
	return doc, nil
}

// RawChunk returns the decompressed NBT bytes of the chunk at pos.
func (rg *Region) RawChunk(pos ChunkPos) ([]byte, error) {
	loc := rg.locations[pos.index()]
	if loc == 0 {
		return nil, fmt.Errorf("chunk (%d,%d): %w", pos.X, pos.Z, ErrChunkNotFound)
	}

	offset := int64(loc>>8) * sectorSize
	sectors := int64(loc & 0xFF)
	if offset < headerSectors*sectorSize || offset+5 > rg.size {
		return nil, fmt.Errorf("%w: chunk (%d,%d) at offset %d", ErrCorrupt, pos.X, pos.Z, offset)
	}

	var header [5]byte
	if _, err := rg.r.ReadAt(header[:], offset); err != nil {
		return nil, fmt.Errorf("read chunk header: %w", err)
	}
	length := int64(binary.BigEndian.Uint32(header[0:4]))
	if length < 1 || 4+length > sectors*sectorSize || offset+4+length > rg.size {
		return nil, fmt.Errorf("%w: chunk (%d,%d) length %d", ErrCorrupt, pos.X, pos.Z, length)
	}

	compressed := make([]byte, length-1) // -1 for compression byte
	if _, err := rg.r.ReadAt(compressed, offset+5); err != nil {
		return nil, fmt.Errorf("read chunk data: %w", err)
	}

	var c nbt.Compression
	switch header[4] {
	case CompressionGzip:
		c = nbt.CompressionGzip
	case CompressionZlib:
		c = nbt.CompressionZlib
	case CompressionNone:
		c = nbt.CompressionNone
	default:
		return nil, fmt.Errorf("chunk (%d,%d) id %d: %w", pos.X, pos.Z, header[4], ErrUnsupportedCompression)
	}
	return nbt.Decompress(compressed, c)
}

// WriteRegion encodes chunks into a complete region image on w. Every chunk
// is zlib compressed and padded to a sector boundary.
func WriteRegion(w io.Writer, chunks map[ChunkPos]*nbt.Document, opts nbt.Options) error {
	opts.Compression = nbt.CompressionNone

	type chunkEntry struct {
		index      int
		compressed []byte
	}
	entries := make([]chunkEntry, 0, len(chunks))
	seen := make(map[int]ChunkPos, len(chunks))

	for pos, doc := range chunks {
		idx := pos.index()
		if prev, ok := seen[idx]; ok {
			return fmt.Errorf("chunks (%d,%d) and (%d,%d) share a region slot", prev.X, prev.Z, pos.X, pos.Z)
		}
		seen[idx] = pos

		raw, err := nbt.Encode(doc, opts)
		if err != nil {
			return fmt.Errorf("encode chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		compressed, err := nbt.Compress(raw, nbt.CompressionZlib)
		if err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		entries = append(entries, chunkEntry{index: idx, compressed: compressed})
	}
	slices.SortFunc(entries, func(a, b chunkEntry) int { return a.index - b.index })

	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk's data: 4 bytes length + 1 byte compression type + compressed data,
	// padded to sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for _, e := range entries {
		payloadLen := uint32(len(e.compressed)) + 1 // +1 for compression byte
		totalLen := 4 + payloadLen
		sectorCount := (totalLen + sectorSize - 1) / sectorSize
		if sectorCount > maxSectors {
			return fmt.Errorf("slot %d: %w", e.index, ErrChunkTooLarge)
		}

		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4], (currentSector<<8)|sectorCount)
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = CompressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)

		if pad := int(sectorCount)*sectorSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}
		currentSector += sectorCount
	}

	if _, err := w.Write(locations); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}
	if _, err := w.Write(timestamps); err != nil {
		return fmt.Errorf("write timestamps: %w", err)
	}
	if _, err := w.Write(dataBuf.Bytes()); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}
	return nil
}

// SaveRegion writes chunks to dir/r.<rx>.<rz>.mca, replacing the file
// atomically.
func SaveRegion(dir string, rx, rz int, chunks map[ChunkPos]*nbt.Document, opts nbt.Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	path := filepath.Join(dir, FileName(rx, rz))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	if err := WriteRegion(f, chunks, opts); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}
	return nil
}
