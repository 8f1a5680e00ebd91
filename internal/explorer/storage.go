package explorer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/OCharnyshevich/nbt-explorer/internal/config"
)

// LoadConfig reads a JSON config file into cfg. If the file does not exist,
// cfg is unchanged.
func LoadConfig(path string, cfg *config.Config, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to path atomically.
func SaveConfig(path string, cfg *config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return atomicWrite(path, append(data, '\n'))
}

// atomicWrite writes data using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
