// Package config provides configuration management for the keyslip CLI.
//
// Configuration is layered from four sources with increasing precedence:
// built-in defaults, a keyslip.yaml file, KEYSLIP_* environment
// variables, and command-line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// ServerConfig holds configuration for the HTTP correction server.
type ServerConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	Wordlist       string        `koanf:"wordlist"`
	Keymap         string        `koanf:"keymap"`
	Layout         string        `koanf:"layout"`
	Threshold      float64       `koanf:"threshold"`
	MaxSuggestions int           `koanf:"max_suggestions"`
	Auto           bool          `koanf:"auto"`
	DataDir        string        `koanf:"data_dir"`
	OutputFormat   string        `koanf:"output"`
	Verbose        bool          `koanf:"verbose"`
	LogLevel       string        `koanf:"log_level"`
	Server         *ServerConfig `koanf:"server"`
}

// Default configuration values.
const (
	DefaultLayout         = keymap.DefaultLayout
	DefaultThreshold      = spell.DefaultThreshold
	DefaultMaxSuggestions = spell.DefaultMaxSuggestions
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel       = "info"
	DefaultServerAddr     = ":8484"
)

// DefaultDataDir returns the default data directory, ~/.keyslip.
// Falls back to a relative .keyslip directory when the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keyslip"
	}
	return filepath.Join(home, ".keyslip")
}

// GetServerConfig returns the server config with defaults applied for any unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return &ServerConfig{Addr: DefaultServerAddr}
	}
	srv := c.Server
	if srv.Addr == "" {
		srv.Addr = DefaultServerAddr
	}
	return srv
}

// StatePath returns the location of the check history database inside
// the data directory.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// HistoryFile returns the location of the interactive session history
// inside the data directory.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "repl_history")
}
