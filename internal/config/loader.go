package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFromFile reads and parses a .mlc.toml configuration file at path.
// Unknown keys produce a warning rather than an error, so a config written
// for a newer mlc release still loads under an older one.
func LoadFromFile(path string) (*FileConfig, error) {
	var fc FileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	warnUndecodedKeys(meta, path)
	return &fc, nil
}

// LoadFromFileIfExists is LoadFromFile, except a missing file is not an
// error: it returns (nil, nil) so callers can fall through to defaults.
func LoadFromFileIfExists(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	return LoadFromFile(path)
}

func warnUndecodedKeys(meta toml.MetaData, source string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	slog.Warn("unknown config keys will be ignored", "source", source, "keys", strings.Join(keys, ", "))
}
