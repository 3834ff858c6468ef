package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
)

// WordsOptions holds options shared by the words subcommands.
type WordsOptions struct {
	Format string // Output format: text, markdown, json
}

// NewWordsCommand creates the words command group.
func NewWordsCommand() *cobra.Command {
	opts := &WordsOptions{}
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Manage the personal dictionary",
		Long: `List, add, and remove words in the personal dictionary.

Personal words live under the data directory and merge into the
dictionary after the base word list, so they never change how base
entries rank against each other.`,
		Example: `  # List personal words
  keyslip words list

  # Add words
  keyslip words add golang keyslip

  # Remove a word
  keyslip words remove keyslip`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	cmd.AddCommand(newWordsListCommand(opts))
	cmd.AddCommand(newWordsAddCommand(opts))
	cmd.AddCommand(newWordsRemoveCommand(opts))

	return cmd
}

// wordsRenderer applies the group-level format override.
func wordsRenderer(cmd *cobra.Command, cmdCtx *CommandContext, opts *WordsOptions) *output.Renderer {
	if opts.Format != "" {
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}
	return cmdCtx.Renderer
}

func newWordsListCommand(opts *WordsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List personal dictionary words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := wordsRenderer(cmd, cmdCtx, opts)

			words, err := cmdCtx.Engine.UserWords()
			if err != nil {
				return err
			}

			if r.EffectiveMode() == output.ModeJSON {
				if words == nil {
					words = []string{}
				}
				return r.JSON(map[string][]string{"words": words})
			}

			renderWords(r, words)
			return nil
		},
	}
}

func newWordsAddCommand(opts *WordsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <word> [word...]",
		Short: "Add words to the personal dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := wordsRenderer(cmd, cmdCtx, opts)

			for _, word := range args {
				if err := cmdCtx.Engine.AddWord(word); err != nil {
					return fmt.Errorf("failed to add %q: %w", word, err)
				}
				r.Success(fmt.Sprintf("added %q", strings.ToLower(strings.TrimSpace(word))))
			}
			return nil
		},
	}
}

func newWordsRemoveCommand(opts *WordsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <word> [word...]",
		Short: "Remove words from the personal dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := wordsRenderer(cmd, cmdCtx, opts)

			for _, word := range args {
				removed, err := cmdCtx.Engine.RemoveWord(word)
				if err != nil {
					return fmt.Errorf("failed to remove %q: %w", word, err)
				}
				if !removed {
					r.Warning(fmt.Sprintf("%q is not in the personal dictionary", strings.ToLower(strings.TrimSpace(word))))
					continue
				}
				r.Success(fmt.Sprintf("removed %q", strings.ToLower(strings.TrimSpace(word))))
			}
			return nil
		},
	}
}
