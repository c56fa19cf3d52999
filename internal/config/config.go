// Package config loads the optional cclone configuration file: TOML
// defaults for engine options, overlaid by CLI flags at the call site.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional cclone configuration file. Every field
// is a pointer so the CLI layer can distinguish "not set in file" from
// "explicitly set to the zero value" when merging with flags.
type Config struct {
	Recursive            *bool    `toml:"recursive"`
	FollowSymlinks       *bool    `toml:"follow_symlinks"`
	Verify               *bool    `toml:"verify"`
	Resume               *bool    `toml:"resume"`
	Progress             *bool    `toml:"progress"`
	Quiet                *bool    `toml:"quiet"`
	PreserveMetadata     *bool    `toml:"preserve_metadata"`
	Threads              *int     `toml:"threads"`
	BufferSize           *int64   `toml:"buffer_size"`
	IncludePatterns      []string `toml:"include_patterns"`
	ExcludePatterns      []string `toml:"exclude_patterns"`
	ResumePath           *string  `toml:"resume_path"`
	RateLimitBytesPerSec *int64   `toml:"rate_limit_bytes_per_sec"`
	JournalPath          *string  `toml:"journal_path"`
}

// ConfigPath returns the resolved path to the config file.
func ConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cclone", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. The config file is always
// optional; every field defaults to the engine's built-in default when
// left unset here and unset on the command line.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
