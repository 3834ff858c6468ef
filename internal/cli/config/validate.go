package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/keyslip-labs/keyslip/internal/keymap"
)

// Validate checks if the configuration is valid.
// Word list presence is deliberately not checked here so commands that
// do not need a dictionary (init, doctor, version) can still run.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %g", c.Threshold)
	}
	if c.MaxSuggestions < 1 {
		return fmt.Errorf("max_suggestions must be at least 1, got %d", c.MaxSuggestions)
	}
	if c.Layout != "" && !slices.Contains(keymap.Layouts(), c.Layout) {
		return fmt.Errorf("unknown keyboard layout %q (available: %s)", c.Layout, strings.Join(keymap.Layouts(), ", "))
	}
	if c.Server != nil && c.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
			return fmt.Errorf("invalid server address %q: %w", c.Server.Addr, err)
		}
	}
	return nil
}

// ValidateWordlist checks that a word list has been configured and exists.
// Commands that need the correction engine call this before opening it.
func (c *Config) ValidateWordlist() error {
	if c.Wordlist == "" {
		return fmt.Errorf("no word list configured\nHint: set wordlist in keyslip.yaml or use --wordlist to specify a path")
	}
	if _, err := os.Stat(c.Wordlist); os.IsNotExist(err) {
		return fmt.Errorf("word list does not exist: %s\nHint: run 'keyslip init' to scaffold a starter word list", c.Wordlist)
	}
	return nil
}
