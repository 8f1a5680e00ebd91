package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/nbt-explorer/internal/config"
	"github.com/OCharnyshevich/nbt-explorer/internal/explorer"
	"github.com/OCharnyshevich/nbt-explorer/internal/fetch"
	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
	"github.com/OCharnyshevich/nbt-explorer/pkg/region"
)

type app struct {
	cfg      *config.Config
	opts     options
	explorer *explorer.Explorer
	log      *slog.Logger
	out      io.Writer
}

// load resolves src, downloading it first when remote, and loads a single
// file or every matching file of a folder.
func (a *app) load(ctx context.Context, src string) ([]*explorer.Entry, error) {
	if fetch.IsRemote(src) {
		dst := a.opts.fetchDir
		if dst == "" {
			tmp, err := os.MkdirTemp("", "nbtx-")
			if err != nil {
				return nil, fmt.Errorf("create fetch dir: %w", err)
			}
			dst = filepath.Join(tmp, "src")
		}
		if err := fetch.Fetch(ctx, src, dst, a.log); err != nil {
			return nil, err
		}
		src = dst
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return a.explorer.LoadFolder(ctx, src)
	}
	entry, err := a.explorer.LoadFile(src)
	if err != nil {
		return nil, err
	}
	return []*explorer.Entry{entry}, nil
}

func (a *app) each(ctx context.Context, srcs []string, fn func(*explorer.Entry) error) error {
	var failed int
	for _, src := range srcs {
		entries, err := a.load(ctx, src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Err != nil {
				failed++
				a.log.Error("load file", "path", entry.Path, "error", entry.Err)
				continue
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d files could not be loaded", failed)
	}
	return nil
}

func (a *app) dump(ctx context.Context, srcs []string) error {
	d := newDumper(a.out)
	return a.each(ctx, srcs, func(entry *explorer.Entry) error {
		d.header(entry)
		if entry.Doc != nil {
			return d.document(entry.Doc)
		}
		for _, pos := range sortedChunks(entry.Chunks) {
			d.chunk(pos)
			if err := d.document(entry.Chunks[pos]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *app) snbt(ctx context.Context, srcs []string) error {
	return a.each(ctx, srcs, func(entry *explorer.Entry) error {
		docs := []*nbt.Document{entry.Doc}
		if entry.Doc == nil {
			docs = docs[:0]
			for _, pos := range sortedChunks(entry.Chunks) {
				docs = append(docs, entry.Chunks[pos])
			}
		}
		for _, doc := range docs {
			if err := nbt.FormatSNBT(a.out, doc.Root); err != nil {
				return fmt.Errorf("write snbt: %w", err)
			}
			fmt.Fprintln(a.out)
		}
		return nil
	})
}

// check proves the round-trip law on each file: decoding and re-encoding
// must reproduce the decompressed input byte for byte.
func (a *app) check(ctx context.Context, srcs []string) error {
	var bad int
	err := a.each(ctx, srcs, func(entry *explorer.Entry) error {
		if err := a.checkEntry(entry); err != nil {
			bad++
			fmt.Fprintf(a.out, "FAIL %s: %v\n", entry.Path, err)
			return nil
		}
		fmt.Fprintf(a.out, "ok   %s\n", entry.Path)
		return nil
	})
	if err != nil {
		return err
	}
	if bad > 0 {
		return fmt.Errorf("%d files do not round-trip", bad)
	}
	return nil
}

var errRoundTrip = errors.New("re-encoded bytes differ")

func (a *app) checkEntry(entry *explorer.Entry) error {
	if entry.Format == explorer.FormatRegion {
		return a.checkRegion(entry)
	}

	original, err := os.ReadFile(entry.Path)
	if err != nil {
		return err
	}

	encoded, err := a.explorer.Encode(entry)
	if err != nil {
		return err
	}
	want, err := nbt.Decompress(original, nbt.CompressionAuto)
	if err != nil {
		return err
	}
	got, err := nbt.Decompress(encoded, nbt.CompressionAuto)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("%w: %d bytes in, %d bytes out", errRoundTrip, len(want), len(got))
	}
	return nil
}

func (a *app) checkRegion(entry *explorer.Entry) error {
	opts, err := a.cfg.Options()
	if err != nil {
		return err
	}
	opts.Compression = nbt.CompressionNone

	rg, err := region.Open(entry.Path, opts)
	if err != nil {
		return err
	}
	defer rg.Close()

	for _, pos := range rg.Chunks() {
		want, err := rg.RawChunk(pos)
		if err != nil {
			return err
		}
		got, err := nbt.Encode(entry.Chunks[pos], opts)
		if err != nil {
			return fmt.Errorf("chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		if !bytes.Equal(want, got) {
			return fmt.Errorf("chunk (%d,%d): %w", pos.X, pos.Z, errRoundTrip)
		}
	}
	return nil
}

func (a *app) convert(ctx context.Context, srcs []string) error {
	if len(srcs) != 1 || a.opts.output == "" {
		return errors.New("convert needs exactly one input and -o")
	}
	target := explorer.Format(a.opts.target)
	if target != explorer.FormatJava && target != explorer.FormatBedrock {
		return fmt.Errorf("--to must be java or bedrock, got %q", a.opts.target)
	}

	entries, err := a.load(ctx, srcs[0])
	if err != nil {
		return err
	}
	if len(entries) != 1 {
		return errors.New("convert works on a single file")
	}
	entry := entries[0]
	if entry.Err != nil {
		return entry.Err
	}
	if entry.Doc == nil {
		return fmt.Errorf("convert: %s files are not supported", entry.Format)
	}

	out := *a.cfg
	out.Format = string(target)
	out.ByteOrder, out.Strings = "", ""
	if target == explorer.FormatJava && entry.Format != explorer.FormatJava && out.Compression == "auto" {
		out.Compression = "gzip"
	}
	saver, err := explorer.New(&out, a.log)
	if err != nil {
		return err
	}

	converted := *entry
	converted.Format = target
	if target == explorer.FormatBedrock && entry.Format != explorer.FormatBedrock {
		converted.Version = a.cfg.BedrockVersion
	}
	converted.Doc.Envelope = nil
	return saver.Save(a.opts.output, &converted)
}

func runConfig(cfg *config.Config, o options) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.output != "" {
		return explorer.SaveConfig(o.output, cfg)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
