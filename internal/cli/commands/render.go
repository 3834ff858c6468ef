package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/state"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// formatScore renders a similarity score with two decimals.
func formatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// renderResult writes one correction result in the renderer's mode.
// JSON mode is handled by the callers because the envelope differs
// between single and batch lookups.
func renderResult(r *output.Renderer, res spell.Result) {
	if r.EffectiveMode() == output.ModeMarkdown {
		renderResultMarkdown(r, res)
		return
	}
	renderResultText(r, res)
}

func renderResultText(r *output.Renderer, res spell.Result) {
	st := r.Styles()

	if res.Confident {
		r.Printf("%s -> %s %s\n",
			res.Input,
			st.Success.Render(res.Correction),
			st.Muted.Render("("+formatScore(res.Candidates[0].Score)+")"))
		return
	}

	if len(res.Candidates) == 0 {
		r.Printf("%s: no suggestions\n", res.Input)
		return
	}

	r.Printf("%s: did you mean\n", res.Input)
	renderCandidatesTable(r, res.Candidates)
}

func renderResultMarkdown(r *output.Renderer, res spell.Result) {
	if res.Confident {
		r.Printf("`%s` -> `%s` (%s)\n",
			res.Input, res.Correction, formatScore(res.Candidates[0].Score))
		return
	}

	if len(res.Candidates) == 0 {
		r.Printf("`%s`: no suggestions\n", res.Input)
		return
	}

	r.Printf("`%s`: did you mean\n\n", res.Input)
	renderCandidatesMarkdown(r, res.Candidates)
}

func renderCandidatesTable(r *output.Renderer, candidates []spell.Candidate) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Word", "Score"})

	for i, c := range candidates {
		t.AppendRow(table.Row{i + 1, c.Word, formatScore(c.Score)})
	}

	t.Render()
}

func renderCandidatesMarkdown(r *output.Renderer, candidates []spell.Candidate) {
	r.Println("| # | Word | Score |")
	r.Println("| --- | --- | --- |")
	for i, c := range candidates {
		r.Printf("| %d | %s | %s |\n", i+1, c.Word, formatScore(c.Score))
	}
}

// formatSuggestions renders a candidate list on a single line, as used
// by check findings and the REPL.
func formatSuggestions(candidates []spell.Candidate) string {
	if len(candidates) == 0 {
		return "(no suggestions)"
	}

	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("%s (%s)", c.Word, formatScore(c.Score))
	}
	return strings.Join(parts, ", ")
}

// renderHistory writes past check runs, newest first.
func renderHistory(r *output.Renderer, records []*state.CheckRecord) {
	if len(records) == 0 {
		r.Muted("(no checks recorded)")
		return
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println("| Started | Source | Scanned | Flagged | Confident | Duration |")
		r.Println("| --- | --- | --- | --- | --- | --- |")
		for _, rec := range records {
			r.Printf("| %s | %s | %d | %d | %d | %s |\n",
				rec.StartedAt.Format(time.RFC3339), rec.Source,
				rec.WordsScanned, rec.Flagged, rec.Confident,
				formatDuration(rec.DurationMS))
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "Source", "Scanned", "Flagged", "Confident", "Duration"})

	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.StartedAt.Format("2006-01-02 15:04:05"), rec.Source,
			rec.WordsScanned, rec.Flagged, rec.Confident,
			formatDuration(rec.DurationMS),
		})
	}

	t.Render()
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// renderWords writes the personal dictionary word list.
func renderWords(r *output.Renderer, words []string) {
	if len(words) == 0 {
		r.Muted("(personal dictionary is empty)")
		return
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		for _, w := range words {
			r.Printf("- %s\n", w)
		}
		return
	}

	for _, w := range words {
		r.Println(w)
	}
}
