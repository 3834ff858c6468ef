package commands

import (
	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// CorrectOptions holds options for the correct command.
type CorrectOptions struct {
	Format string // Output format: text, markdown, json
}

// NewCorrectCommand creates the correct command.
func NewCorrectCommand() *cobra.Command {
	opts := &CorrectOptions{}
	cmd := &cobra.Command{
		Use:   "correct <word> [word...]",
		Short: "Suggest corrections for misspelled words",
		Long: `Rank each word against the dictionary and print the closest matches.

Substitutions between keyboard neighbors cost half as much as other
edits, so a slip like "gello" resolves to "hello" ahead of equally
distant but unrelated words. A top match scoring above 0.9 is announced
as the correction; otherwise the candidates print as a ranked table.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Correct a single word
  keyslip correct helo

  # Correct several words at once
  keyslip correct helo wrold tset

  # Output as JSON
  keyslip correct helo --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrect(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runCorrect(cmd *cobra.Command, opts *CorrectOptions, words []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	results := make([]spell.Result, len(words))
	for i, w := range words {
		results[i] = cmdCtx.Engine.Correct(w)
	}

	// Misspellings are the expected input here, not failures: the exit
	// code stays zero either way.
	if r.EffectiveMode() == output.ModeJSON {
		if len(results) == 1 {
			return r.JSON(results[0])
		}
		return r.JSON(results)
	}

	for _, res := range results {
		renderResult(r, res)
	}
	return nil
}
