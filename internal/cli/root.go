// Package cli provides the command-line interface for Keyslip.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/keyslip-labs/keyslip/internal/cli/commands"
	"github.com/keyslip-labs/keyslip/internal/cli/config"
	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "keyslip",
		Short: "Keyslip - Keyboard-aware spelling correction",
		Long: `Keyslip suggests and applies corrections for misspelled words by modeling
how typos actually happen on a physical keyboard. Substituting a letter
with one of its neighbors on the keyboard costs less than substituting a
distant one, so "hwllo" resolves to "hello" ahead of candidates a plain
edit-distance ranker would pick.

Point it at a word list, choose a keyboard layout (or supply your own
keymap file), then use 'correct' for single words, 'check' for files,
or 'repl' for an interactive session.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with CLI flags layered on top
			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)

			// Create and store logger; commands and the engine pull it
			// back out through config.GetLogger.
			ctx = context.WithValue(ctx, config.LoggerKey(), newLogger(cfg))
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Keyboard-aware spelling correction
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./keyslip.yaml)")
	rootCmd.PersistentFlags().String("wordlist", "", "Path to the word list (one word per line)")
	rootCmd.PersistentFlags().String("keymap", "", "Path to a keymap file (overrides --layout)")
	rootCmd.PersistentFlags().String("layout", "", "Built-in keyboard layout (qwerty|azerty|jcuken)")
	rootCmd.PersistentFlags().Float64("threshold", config.DefaultThreshold, "Minimum similarity score for suggestions (0..1)")
	rootCmd.PersistentFlags().Int("max-suggestions", config.DefaultMaxSuggestions, "Maximum suggestions per word")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for history and the personal dictionary (default: ~/.keyslip)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for layout flag
	_ = rootCmd.RegisterFlagCompletionFunc("layout", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return keymap.Layouts(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCorrectCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewWordsCommand())
	rootCmd.AddCommand(commands.NewKeymapCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the process logger from the configured level.
// Verbose forces debug regardless of log_level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. The context is cancelled on SIGINT or
// SIGTERM so long-running commands like serve shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Layout:         config.DefaultLayout,
		Threshold:      config.DefaultThreshold,
		MaxSuggestions: config.DefaultMaxSuggestions,
		DataDir:        config.DefaultDataDir(),
		OutputFormat:   config.DefaultOutput,
		LogLevel:       config.DefaultLogLevel,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Keyslip.

To load completions:

Bash:
  $ source <(keyslip completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ keyslip completion bash > /etc/bash_completion.d/keyslip
  # macOS:
  $ keyslip completion bash > $(brew --prefix)/etc/bash_completion.d/keyslip

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ keyslip completion zsh > "${fpath[1]}/_keyslip"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ keyslip completion fish | source

  # To load completions for each session, execute once:
  $ keyslip completion fish > ~/.config/fish/completions/keyslip.fish

PowerShell:
  PS> keyslip completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> keyslip completion powershell > keyslip.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
