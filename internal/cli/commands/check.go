package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/checker"
	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/state"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Jobs   int    // Concurrent corrections; 0 means GOMAXPROCS
	Format string // Output format: text, markdown, json
}

// CheckOutput is the JSON envelope for one checked source.
type CheckOutput struct {
	Source       string            `json:"source"`
	WordsScanned int               `json:"words_scanned"`
	Flagged      int               `json:"flagged"`
	Confident    int               `json:"confident"`
	DurationMS   int64             `json:"duration_ms"`
	Findings     []checker.Finding `json:"findings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Spell-check files or stdin",
		Long: `Scan documents and report words the dictionary does not know.

Each unknown word is scored against the dictionary and printed with its
position and closest matches. With no paths the text is read from
stdin. Run metadata (word counts and timing, never the words
themselves) is recorded to the check history.

The command exits with code 1 when any misspelling is found, so it can
gate commit hooks and CI steps.`,
		Example: `  # Check files
  keyslip check README.md docs/notes.txt

  # Check stdin
  cat draft.txt | keyslip check

  # Bound the number of concurrent corrections
  keyslip check --jobs 2 large.txt

  # Output as JSON
  keyslip check --format json draft.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Concurrent corrections (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, paths []string) error {
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

	chk := checker.New(cmdCtx.Engine, opts.Jobs)

	var reports []*checker.Report
	if len(paths) == 0 {
		rep, err := chk.Check(cmd.Context(), cmd.InOrStdin(), "stdin")
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	} else {
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			rep, err := chk.Check(cmd.Context(), f, path)
			_ = f.Close()
			if err != nil {
				return err
			}
			reports = append(reports, rep)
		}
	}

	recordReports(cmdCtx, reports)

	flagged := 0
	for _, rep := range reports {
		flagged += len(rep.Findings)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := make([]CheckOutput, len(reports))
		for i, rep := range reports {
			out[i] = CheckOutput{
				Source:       rep.Source,
				WordsScanned: rep.WordsScanned,
				Flagged:      len(rep.Findings),
				Confident:    rep.Confident(),
				DurationMS:   rep.Elapsed.Milliseconds(),
				Findings:     rep.Findings,
			}
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderChecksMarkdown(r, reports)
	default:
		renderChecksText(r, reports)
	}

	// Exit with code 1 if misspellings found
	if flagged > 0 {
		return fmt.Errorf("found %d misspelled words", flagged)
	}
	return nil
}

// recordReports persists run metadata. Failures disable history for the
// run but never fail the check itself.
func recordReports(cmdCtx *CommandContext, reports []*checker.Report) {
	store, err := openStateStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Logger.Warn("check history disabled",
			slog.String("error", err.Error()))
		return
	}
	defer func() { _ = store.Close() }()

	for _, rep := range reports {
		rec := &state.CheckRecord{
			Source:       rep.Source,
			WordsScanned: int64(rep.WordsScanned),
			Flagged:      int64(len(rep.Findings)),
			Confident:    int64(rep.Confident()),
			DurationMS:   rep.Elapsed.Milliseconds(),
			StartedAt:    rep.StartedAt,
		}
		if err := store.RecordCheck(rec); err != nil {
			cmdCtx.Logger.Error("failed to record check",
				slog.String("source", rep.Source),
				slog.String("error", err.Error()))
		}
	}
}

func renderChecksText(r *output.Renderer, reports []*checker.Report) {
	st := r.Styles()

	scanned, flagged, confident := 0, 0, 0
	for _, rep := range reports {
		scanned += rep.WordsScanned
		flagged += len(rep.Findings)
		confident += rep.Confident()

		if len(rep.Findings) == 0 {
			continue
		}

		r.Println(st.Bold.Render(rep.Source))
		for _, f := range rep.Findings {
			loc := fmt.Sprintf("%-7s", fmt.Sprintf("%d:%d", f.Line, f.Col))
			if f.Result.Confident {
				r.Printf("  %s %s -> %s %s\n",
					st.Muted.Render(loc),
					f.Word,
					st.Success.Render(f.Result.Correction),
					st.Muted.Render("("+formatScore(f.Result.Candidates[0].Score)+")"))
				continue
			}
			r.Printf("  %s %s: %s\n",
				st.Muted.Render(loc),
				f.Word,
				formatSuggestions(f.Result.Candidates))
		}
		r.Println("")
	}

	if flagged == 0 {
		r.Success(fmt.Sprintf("No misspellings found (%d words scanned)", scanned))
		return
	}
	r.Printf("Summary: %d flagged, %d confident, %d words scanned\n",
		flagged, confident, scanned)
}

func renderChecksMarkdown(r *output.Renderer, reports []*checker.Report) {
	for _, rep := range reports {
		r.Printf("## %s\n\n", rep.Source)

		if len(rep.Findings) == 0 {
			r.Printf("No misspellings found (%d words scanned).\n\n", rep.WordsScanned)
			continue
		}

		r.Println("| Line | Col | Word | Suggestions |")
		r.Println("| --- | --- | --- | --- |")
		for _, f := range rep.Findings {
			r.Printf("| %d | %d | %s | %s |\n",
				f.Line, f.Col, f.Word, formatSuggestions(f.Result.Candidates))
		}
		r.Println("")
	}
}
