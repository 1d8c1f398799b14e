package util

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Configuration carries the interpreter settings assembled from the optional
// TOML config file and the command-line flags (flags win).
type Configuration struct {
	Version   string
	BuildDate string
	Commit    string

	LogLevel    string
	LogFile     string
	DebugAST    bool
	HistoryFile string
}

// fileConfig is the TOML surface of the config file.
type fileConfig struct {
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	DebugAST    bool   `toml:"debug_ast"`
	HistoryFile string `toml:"history_file"`
}

// Load builds a Configuration from defaults plus the TOML file at path. An
// empty path falls back to DefaultConfigPath; a missing file is not an
// error, a malformed one is.
func Load(path string) (Configuration, error) {
	cfg := Configuration{
		LogLevel:    "error",
		HistoryFile: defaultHistoryFile(),
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return cfg, err
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.HistoryFile != "" {
		cfg.HistoryFile = fc.HistoryFile
	}
	cfg.DebugAST = fc.DebugAST
	return cfg, nil
}

// DefaultConfigPath prefers $GECKO_HOME/gecko.toml, then ~/.gecko.toml.
func DefaultConfigPath() string {
	if home := os.Getenv("GECKO_HOME"); home != "" {
		return filepath.Join(home, "gecko.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".gecko.toml")
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".gecko_history")
}
