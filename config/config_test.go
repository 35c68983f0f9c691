package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.LogPath() != nil {
		t.Error("default LogPath() is not nil")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[log]
verbosity = 3
file = "classkit.log"

[loader]
classpath = ["build/classes", "lib/dep.jar"]
write_access = true
workers = 4

[dump]
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Verbosity != 3 {
		t.Errorf("Verbosity = %d", cfg.Log.Verbosity)
	}
	if got := *cfg.LogPath(); got != filepath.Join(dir, "classkit.log") {
		t.Errorf("LogPath() = %q", got)
	}
	if want := []string{"build/classes", "lib/dep.jar"}; !reflect.DeepEqual(cfg.Loader.Classpath, want) {
		t.Errorf("Classpath = %v, want %v", cfg.Loader.Classpath, want)
	}
	if !cfg.Loader.WriteAccess || cfg.Loader.Workers != 4 {
		t.Errorf("Loader = %+v", cfg.Loader)
	}
	if cfg.Dump.Format != "json" {
		t.Errorf("Format = %q", cfg.Dump.Format)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[loader]\nwrite_access = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dump.Format != "tree" || cfg.Log.Verbosity != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Loader.Classpath, []string{"."}) {
		t.Errorf("Classpath = %v", cfg.Loader.Classpath)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":         "[log\nverbosity = 1",
		"wrong type":     "[log]\nverbosity = \"loud\"",
		"unknown format": "[dump]\nformat = \"xml\"",
		"bad workers":    "[loader]\nworkers = -2",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded")
			}
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Find(nested); got != path {
		t.Errorf("Find(%q) = %q, want %q", nested, got, path)
	}
}
