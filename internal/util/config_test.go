package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("default log level = %q, want %q", cfg.LogLevel, "error")
	}
	if cfg.DebugAST {
		t.Error("debug_ast should default to false")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gecko.toml")
	content := `
log_level = "debug"
log_file = "/tmp/gecko.log"
debug_ast = true
history_file = "/tmp/hist"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFile != "/tmp/gecko.log" {
		t.Errorf("log file = %q", cfg.LogFile)
	}
	if !cfg.DebugAST {
		t.Error("debug_ast not picked up")
	}
	if cfg.HistoryFile != "/tmp/hist" {
		t.Errorf("history file = %q", cfg.HistoryFile)
	}
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gecko.toml")
	if err := os.WriteFile(path, []byte(`log_level = "info"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.HistoryFile == "" {
		t.Error("history file default was dropped")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gecko.toml")
	if err := os.WriteFile(path, []byte(`log_level = [broken`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("malformed config must be an error")
	}
}

func TestDefaultConfigPathPrefersGeckoHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GECKO_HOME", dir)

	if got := DefaultConfigPath(); got != filepath.Join(dir, "gecko.toml") {
		t.Errorf("DefaultConfigPath = %q", got)
	}
}
