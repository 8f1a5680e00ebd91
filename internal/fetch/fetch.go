// Package fetch downloads remote worlds and NBT files so they can be
// explored locally.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	get "github.com/hashicorp/go-getter"
)

// IsRemote reports whether src names something that has to be downloaded
// rather than a path on the local filesystem.
func IsRemote(src string) bool {
	if _, err := os.Stat(src); err == nil {
		return false
	}
	pwd, err := os.Getwd()
	if err != nil {
		return false
	}
	u, err := get.Detect(src, pwd, get.Detectors)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(u, "file://")
}

// Fetch downloads src into dst. src may be any go-getter address, for
// example "git::https://example.com/worlds.git//survival" or an http URL
// of a single level.dat. A single file ends up inside dst under its own
// name; dst is replaced if it already exists.
func Fetch(ctx context.Context, src, dst string, log *slog.Logger) error {
	if dst == "" {
		return fmt.Errorf("fetch %s: empty destination", src)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}

	log.Info("start downloading", "src", src, "dst", dst)
	if err := get.GetAny(dst, src, get.WithContext(ctx)); err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}
	log.Info("done downloading", "dst", dst)
	return nil
}
