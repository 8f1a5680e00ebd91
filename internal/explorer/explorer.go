// Package explorer loads NBT files and folders from disk, recognising Java
// edition, Bedrock and region containers, and writes them back.
package explorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/nbt-explorer/internal/config"
	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
	"github.com/OCharnyshevich/nbt-explorer/pkg/region"
)

var ErrUnknownFormat = errors.New("unrecognised file format")

// Entry is one loaded file.
type Entry struct {
	Path        string
	Format      Format
	Compression nbt.Compression // Java edition only
	Version     int32           // Bedrock envelope version

	Doc    *nbt.Document                     // Java and Bedrock
	Chunks map[region.ChunkPos]*nbt.Document // region files

	// Err is set by LoadFolder for files that failed to load.
	Err error
}

// Explorer loads and saves NBT files according to a Config.
type Explorer struct {
	cfg *config.Config
	log *slog.Logger
}

// New creates an Explorer. The config is validated up front.
func New(cfg *config.Config, log *slog.Logger) (*Explorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Explorer{cfg: cfg, log: log}, nil
}

// options returns the codec options for format. An explicit config format
// always wins over the sniffed one.
func (e *Explorer) options(f Format) (nbt.Options, error) {
	cfg := *e.cfg
	if cfg.Format == config.FormatAuto {
		switch f {
		case FormatBedrock:
			cfg.Format = config.FormatBedrock
		default:
			cfg.Format = config.FormatJava
		}
	}
	return cfg.Options()
}

// LoadFile reads and decodes a single file.
func (e *Explorer) LoadFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.Load(path, data)
}

// Load decodes data that was read from path.
func (e *Explorer) Load(path string, data []byte) (*Entry, error) {
	log := e.log.With("path", path)

	format := sniffPath(path, data)
	switch e.cfg.Format {
	case config.FormatJava:
		if format != FormatRegion {
			format = FormatJava
		}
	case config.FormatBedrock:
		format = FormatBedrock
	}

	opts, err := e.options(format)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Path: path, Format: format}
	switch format {
	case FormatJava:
		entry.Compression = opts.Compression
		if entry.Compression == nbt.CompressionAuto {
			entry.Compression = nbt.DetectCompression(data)
		}
		entry.Doc, err = nbt.Decode(data, opts)
	case FormatBedrock:
		entry.Version, entry.Doc, err = nbt.DecodeBedrock(data, opts)
	case FormatRegion:
		entry.Chunks, err = loadRegion(data, opts)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s file: %w", format, err)
	}

	if entry.Doc != nil {
		for _, w := range entry.Doc.Warnings {
			log.Warn("decoded with warning", "warning", w)
		}
	}
	log.Debug("loaded file", "format", format, "size", len(data))
	return entry, nil
}

func loadRegion(data []byte, opts nbt.Options) (map[region.ChunkPos]*nbt.Document, error) {
	rg, err := region.ReadRegion(bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return nil, err
	}
	chunks := make(map[region.ChunkPos]*nbt.Document)
	for _, pos := range rg.Chunks() {
		doc, err := rg.Chunk(pos)
		if err != nil {
			return nil, err
		}
		chunks[pos] = doc
	}
	return chunks, nil
}

// LoadFolder loads every file under dir whose extension is configured,
// decoding up to cfg.Workers files at once. Files that fail to load are
// returned with Err set; only walking the tree or cancellation is fatal.
// Entries are sorted by path.
func (e *Explorer) LoadFolder(ctx context.Context, dir string) ([]*Entry, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && e.cfg.HasExtension(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk folder: %w", err)
	}
	sort.Strings(paths)

	entries := make([]*Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := e.LoadFile(path)
			if err != nil {
				e.log.Warn("skip file", "path", path, "error", err)
				entry = &Entry{Path: path, Format: FormatUnknown, Err: err}
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load folder: %w", err)
	}

	e.log.Info("loaded folder", "dir", dir, "files", len(entries))
	return entries, nil
}

// Encode produces the on-disk bytes for entry in its own format.
func (e *Explorer) Encode(entry *Entry) ([]byte, error) {
	opts, err := e.options(entry.Format)
	if err != nil {
		return nil, err
	}

	switch entry.Format {
	case FormatJava:
		if opts.Compression == nbt.CompressionAuto {
			opts.Compression = entry.Compression
		}
		return nbt.Encode(entry.Doc, opts)
	case FormatBedrock:
		return nbt.EncodeBedrock(entry.Version, entry.Doc, opts)
	case FormatRegion:
		var buf bytes.Buffer
		if err := region.WriteRegion(&buf, entry.Chunks, opts); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("encode %s: %w", entry.Format, ErrUnknownFormat)
}

// Save encodes entry and writes it to path atomically.
func (e *Explorer) Save(path string, entry *Entry) error {
	data, err := e.Encode(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := atomicWrite(path, data); err != nil {
		return err
	}
	e.log.Info("saved file", "path", path, "format", entry.Format, "size", len(data))
	return nil
}
