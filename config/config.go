// Package config loads classkit.toml, the settings shared by the classkit
// command line and the class loader.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const FileName = "classkit.toml"

type Config struct {
	Log    LogConfig    `toml:"log"`
	Loader LoaderConfig `toml:"loader"`
	Dump   DumpConfig   `toml:"dump"`
}

type LogConfig struct {
	// Verbosity follows commonlog: 0 logs notices, 1 adds info, 2 adds
	// debug and negative values quiet it down to nothing at -4.
	Verbosity int `toml:"verbosity"`

	// File receives log output; empty means stderr.
	File string `toml:"file"`
}

type LoaderConfig struct {
	// Classpath lists directories and jar or zip archives searched in order.
	Classpath []string `toml:"classpath"`

	// WriteAccess lets loaded class files be written back to disk.
	WriteAccess bool `toml:"write_access"`

	// Workers bounds concurrent parses during a scan; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`
}

type DumpConfig struct {
	Format string `toml:"format"`
}

func Default() *Config {
	return &Config{
		Log:    LogConfig{Verbosity: 1},
		Loader: LoaderConfig{Classpath: []string{"."}},
		Dump:   DumpConfig{Format: "tree"},
	}
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if cfg.Log.File != "" && !filepath.IsAbs(cfg.Log.File) {
		cfg.Log.File = filepath.Join(filepath.Dir(path), cfg.Log.File)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Dump.Format {
	case "line", "json", "tree":
	default:
		return fmt.Errorf("unknown dump format %q (expected line, json, or tree)", c.Dump.Format)
	}
	if c.Loader.Workers < 0 {
		return fmt.Errorf("loader workers must not be negative, got %d", c.Loader.Workers)
	}
	return nil
}

// LogPath returns the log file for commonlog.Configure, nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	return &path
}

// Find looks for classkit.toml in start and its parents and returns its
// path, or "" if there is none.
func Find(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
