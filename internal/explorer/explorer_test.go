package explorer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OCharnyshevich/nbt-explorer/internal/config"
	"github.com/OCharnyshevich/nbt-explorer/pkg/nbt"
	"github.com/OCharnyshevich/nbt-explorer/pkg/region"
)

func testDoc() *nbt.Document {
	doc := nbt.NewDocument("Data")
	doc.Root.Set("x", nbt.Int(7))
	doc.Root.Set("LevelName", nbt.String("world"))
	doc.Root.Set("Pos", nbt.NewList(nbt.TagDouble, nbt.Double(1), nbt.Double(64), nbt.Double(-3)))
	return doc
}

func newTestExplorer(t *testing.T, mutate func(*config.Config)) *Explorer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	e, err := New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type fixtures struct {
	java, gzipped, bedrock, regionFile []byte
}

func buildFixtures(t *testing.T) fixtures {
	t.Helper()
	var f fixtures
	var err error

	if f.java, err = nbt.Encode(testDoc(), nbt.DefaultOptions()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	opts := nbt.DefaultOptions()
	opts.Compression = nbt.CompressionGzip
	if f.gzipped, err = nbt.Encode(testDoc(), opts); err != nil {
		t.Fatalf("Encode gzip failed: %v", err)
	}
	if f.bedrock, err = nbt.EncodeBedrock(9, testDoc(), nbt.BedrockOptions()); err != nil {
		t.Fatalf("EncodeBedrock failed: %v", err)
	}
	var buf bytes.Buffer
	chunks := map[region.ChunkPos]*nbt.Document{{X: 0, Z: 0}: testDoc()}
	if err := region.WriteRegion(&buf, chunks, nbt.DefaultOptions()); err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}
	f.regionFile = buf.Bytes()
	return f
}

func TestSniff(t *testing.T) {
	f := buildFixtures(t)
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"java", f.java, FormatJava},
		{"gzip", f.gzipped, FormatJava},
		{"bedrock", f.bedrock, FormatBedrock},
		{"region", f.regionFile, FormatRegion},
		{"text", []byte("hello world"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tc := range tests {
		if got := Sniff(tc.data); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestLoadFile(t *testing.T) {
	f := buildFixtures(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raw.nbt"), f.java)
	writeFile(t, filepath.Join(dir, "level.dat"), f.gzipped)
	writeFile(t, filepath.Join(dir, "bedrock.dat"), f.bedrock)
	writeFile(t, filepath.Join(dir, "r.0.0.mca"), f.regionFile)

	e := newTestExplorer(t, nil)

	tests := []struct {
		file        string
		format      Format
		compression nbt.Compression
	}{
		{"raw.nbt", FormatJava, nbt.CompressionNone},
		{"level.dat", FormatJava, nbt.CompressionGzip},
		{"bedrock.dat", FormatBedrock, nbt.CompressionNone},
	}
	for _, tc := range tests {
		entry, err := e.LoadFile(filepath.Join(dir, tc.file))
		if err != nil {
			t.Fatalf("%s: LoadFile failed: %v", tc.file, err)
		}
		if entry.Format != tc.format {
			t.Fatalf("%s: expected format %s, got %s", tc.file, tc.format, entry.Format)
		}
		if entry.Compression != tc.compression {
			t.Fatalf("%s: expected compression %s, got %s", tc.file, tc.compression, entry.Compression)
		}
		if !entry.Doc.Equal(testDoc()) {
			t.Fatalf("%s: document differs", tc.file)
		}
	}

	entry, err := e.LoadFile(filepath.Join(dir, "bedrock.dat"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if entry.Version != 9 {
		t.Fatalf("expected bedrock version 9, got %d", entry.Version)
	}

	entry, err = e.LoadFile(filepath.Join(dir, "r.0.0.mca"))
	if err != nil {
		t.Fatalf("LoadFile region failed: %v", err)
	}
	if entry.Format != FormatRegion || len(entry.Chunks) != 1 {
		t.Fatalf("expected one region chunk, got %s with %d", entry.Format, len(entry.Chunks))
	}
	if !entry.Chunks[region.ChunkPos{}].Equal(testDoc()) {
		t.Fatal("region chunk differs")
	}
}

func TestLoadFileForcedFormat(t *testing.T) {
	f := buildFixtures(t)
	path := filepath.Join(t.TempDir(), "level.dat")
	writeFile(t, path, f.bedrock)

	e := newTestExplorer(t, func(c *config.Config) { c.Format = config.FormatJava })
	if _, err := e.LoadFile(path); err == nil {
		t.Fatal("expected a Bedrock file to fail as Java edition")
	}

	e = newTestExplorer(t, func(c *config.Config) { c.Format = config.FormatBedrock })
	entry, err := e.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if entry.Format != FormatBedrock {
		t.Fatalf("expected bedrock, got %s", entry.Format)
	}
}

func TestLoadFileUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.dat")
	writeFile(t, path, []byte("plain text"))

	e := newTestExplorer(t, nil)
	if _, err := e.LoadFile(path); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadFolder(t *testing.T) {
	f := buildFixtures(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "level.dat"), f.gzipped)
	writeFile(t, filepath.Join(dir, "level.dat_old"), f.gzipped)
	writeFile(t, filepath.Join(dir, "players", "a.dat"), f.java)
	writeFile(t, filepath.Join(dir, "region", "r.0.0.mca"), f.regionFile)
	writeFile(t, filepath.Join(dir, "broken.nbt"), []byte{0x0A, 0x00})
	writeFile(t, filepath.Join(dir, "readme.txt"), []byte("ignored"))

	e := newTestExplorer(t, nil)
	entries, err := e.LoadFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadFolder failed: %v", err)
	}

	var got []string
	for _, entry := range entries {
		rel, _ := filepath.Rel(dir, entry.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	want := []string{"broken.nbt", "level.dat", "level.dat_old", "players/a.dat", "region/r.0.0.mca"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	if !errors.Is(entries[0].Err, nbt.ErrUnexpectedEOF) {
		t.Fatalf("expected broken.nbt to fail with ErrUnexpectedEOF, got %v", entries[0].Err)
	}
	for _, entry := range entries[1:] {
		if entry.Err != nil {
			t.Fatalf("%s: unexpected error %v", entry.Path, entry.Err)
		}
	}
}

func TestLoadFolderCancelled(t *testing.T) {
	f := buildFixtures(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "level.dat"), f.gzipped)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestExplorer(t, nil)
	if _, err := e.LoadFolder(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSavePreservesBytes(t *testing.T) {
	f := buildFixtures(t)
	dir := t.TempDir()
	e := newTestExplorer(t, nil)

	for name, data := range map[string][]byte{
		"level.dat":   f.gzipped,
		"raw.nbt":     f.java,
		"bedrock.dat": f.bedrock,
	} {
		src := filepath.Join(dir, "in", name)
		writeFile(t, src, data)
		entry, err := e.LoadFile(src)
		if err != nil {
			t.Fatalf("%s: LoadFile failed: %v", name, err)
		}

		dst := filepath.Join(dir, "out", name)
		if err := e.Save(dst, entry); err != nil {
			t.Fatalf("%s: Save failed: %v", name, err)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("%s: read saved file: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("%s: saved bytes differ from the original", name)
		}
		if _, err := os.Stat(dst + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("%s: expected temp file to be gone", name)
		}
	}
}

func TestSaveRegion(t *testing.T) {
	f := buildFixtures(t)
	dir := t.TempDir()
	e := newTestExplorer(t, nil)

	src := filepath.Join(dir, "r.0.0.mca")
	writeFile(t, src, f.regionFile)
	entry, err := e.LoadFile(src)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	dst := filepath.Join(dir, "copy", "r.0.0.mca")
	if err := e.Save(dst, entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	again, err := e.LoadFile(dst)
	if err != nil {
		t.Fatalf("LoadFile of saved region failed: %v", err)
	}
	if !again.Chunks[region.ChunkPos{}].Equal(testDoc()) {
		t.Fatal("saved region chunk differs")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Format = "console"
	if _, err := New(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Fatal("expected an invalid config error")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	log := slog.New(slog.DiscardHandler)

	cfg := config.DefaultConfig()
	if err := LoadConfig(filepath.Join(dir, "missing.json"), cfg, log); err != nil {
		t.Fatalf("expected missing config to be ignored, got %v", err)
	}
	if cfg.Format != config.FormatAuto {
		t.Fatalf("expected config unchanged, got format %q", cfg.Format)
	}

	path := filepath.Join(dir, "nbtx.json")
	writeFile(t, path, []byte(`{"format": "bedrock", "workers": 3}`))
	if err := LoadConfig(path, cfg, log); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Format != config.FormatBedrock || cfg.Workers != 3 {
		t.Fatalf("expected values from file, got %+v", cfg)
	}
	if cfg.MaxDepth != nbt.DefaultMaxDepth {
		t.Fatalf("expected unset fields to keep defaults, got depth %d", cfg.MaxDepth)
	}

	out := filepath.Join(dir, "saved.json")
	if err := SaveConfig(out, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	reloaded := config.DefaultConfig()
	if err := LoadConfig(out, reloaded, log); err != nil {
		t.Fatalf("LoadConfig of saved config failed: %v", err)
	}
	if diff := cmp.Diff(cfg, reloaded); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	writeFile(t, path, []byte(`{"format": `))
	if err := LoadConfig(path, cfg, log); err == nil {
		t.Fatal("expected a parse error")
	}
}
