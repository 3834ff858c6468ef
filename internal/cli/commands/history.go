package commands

import (
	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int    // Maximum number of runs to show
	Format string // Output format: text, markdown, json
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past check runs",
		Long: `Show recorded check runs, newest first.

Only run metadata is stored: source, word counts, and timing. The
checked words themselves are never persisted.`,
		Example: `  # Last 20 runs
  keyslip history

  # Last 5 runs as JSON
  keyslip history --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	store, err := openStateStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListChecks(opts.Limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if records == nil {
			records = []*state.CheckRecord{}
		}
		return r.JSON(records)
	}

	renderHistory(r, records)
	return nil
}
