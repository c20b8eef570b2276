// Package config loads the editor configuration from a TOML file.
//
// A missing file is not an error: every field has a default, and a file only
// needs to name the values it overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/gridedit/core"
)

// Store backend names
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// DefaultPath is the config file looked up when no -config flag is given
const DefaultPath = "gridedit.toml"

// Config is the full editor configuration
type Config struct {
	Grid   Grid   `toml:"grid"`
	Store  Store  `toml:"store"`
	Editor Editor `toml:"editor"`
	Log    Log    `toml:"log"`
}

// Grid holds the fixed document dimensions
type Grid struct {
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`
}

// Store selects and parameterizes the document backend
type Store struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	RedisKey  string `toml:"redis_key"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// Timeout returns the per-operation store deadline
func (s Store) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Editor holds interactive behavior toggles
type Editor struct {
	Bell bool `toml:"bell"`
}

// Log controls the debug log file
type Log struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Grid: Grid{
			Rows: core.DefaultRows,
			Cols: core.DefaultCols,
		},
		Store: Store{
			Backend:   BackendSQLite,
			Path:      "gridedit.db",
			RedisAddr: "localhost:6379",
			RedisKey:  "documents",
			TimeoutMs: 2000,
		},
		Log: Log{
			Dir: "logs",
		},
	}
}

// Load reads path over the defaults; a missing file yields the defaults unchanged
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config read: %w", err)
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result
// Keys absent from data keep the values already in cfg
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("config parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse: unknown key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate rejects values the editor cannot run with
func (c *Config) Validate() error {
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 {
		return fmt.Errorf("config: grid must be at least 1x1, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}

	switch c.Store.Backend {
	case BackendSQLite, BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("config: store.path required for %s backend", c.Store.Backend)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" || c.Store.RedisKey == "" {
			return fmt.Errorf("config: store.redis_addr and store.redis_key required for redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}

	if c.Store.TimeoutMs < 0 {
		return fmt.Errorf("config: store.timeout_ms must not be negative")
	}
	return nil
}
