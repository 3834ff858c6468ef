package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/keyslip-labs/keyslip/internal/cli/config"
	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/engine"
	"github.com/keyslip-labs/keyslip/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if err := cfg.ValidateWordlist(); err != nil {
		return nil, nil, err
	}

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need a loaded dictionary.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	threshold := config.DefaultThreshold
	if v, err := strconv.ParseFloat(os.Getenv("KEYSLIP_THRESHOLD"), 64); err == nil {
		threshold = v
	}
	maxSuggestions := config.DefaultMaxSuggestions
	if v, err := strconv.Atoi(os.Getenv("KEYSLIP_MAX_SUGGESTIONS")); err == nil {
		maxSuggestions = v
	}

	return &config.Config{
		Wordlist:       os.Getenv("KEYSLIP_WORDLIST"),
		Keymap:         os.Getenv("KEYSLIP_KEYMAP"),
		Layout:         getEnvOrDefault("KEYSLIP_LAYOUT", config.DefaultLayout),
		Threshold:      threshold,
		MaxSuggestions: maxSuggestions,
		Auto:           os.Getenv("KEYSLIP_AUTO") == "true",
		DataDir:        getEnvOrDefault("KEYSLIP_DATA_DIR", config.DefaultDataDir()),
		OutputFormat:   os.Getenv("KEYSLIP_OUTPUT"),
		Verbose:        os.Getenv("KEYSLIP_VERBOSE") == "true",
		LogLevel:       getEnvOrDefault("KEYSLIP_LOG_LEVEL", config.DefaultLogLevel),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure the data directory exists before the engine opens the
	// personal dictionary under it.
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return nil, err
		}
	}

	engineCfg := engine.Config{
		WordlistPath:   cfg.Wordlist,
		KeymapPath:     cfg.Keymap,
		Layout:         cfg.Layout,
		Threshold:      cfg.Threshold,
		MaxSuggestions: cfg.MaxSuggestions,
		DataDir:        cfg.DataDir,
		Logger:         logger,
	}

	return engine.New(engineCfg)
}

// openStateStore opens the check-history store under the data directory.
func openStateStore(cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, err
	}
	return state.Open(cfg.StatePath(), logger)
}
