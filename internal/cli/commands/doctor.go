package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/config"
	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/keyslip-labs/keyslip/internal/state"
	"github.com/keyslip-labs/keyslip/internal/userdict"
	"github.com/keyslip-labs/keyslip/internal/wordlist"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a comprehensive setup health check",
		Long: `Analyze the keyslip setup for configuration and data issues.

The doctor command inspects every moving part and produces a report
including:
- Setup summary (dictionary size, keymap, data directory)
- Health checks grouped by category (configuration, dictionary, keymap, data)
- Health score (0-100)
- Actionable recommendations

Unlike the correction commands, doctor never fails on a missing word
list; it reports the gap instead.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  keyslip doctor

  # Output as JSON
  keyslip doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         SetupSummary  `json:"summary"`
	HealthChecks    []HealthCheck `json:"health_checks"`
	Score           int           `json:"score"`
	Recommendations []string      `json:"recommendations"`
	IssueCount      int           `json:"issue_count"`
}

// SetupSummary contains setup-level statistics.
type SetupSummary struct {
	ConfigFile   string `json:"config_file,omitempty"`
	Words        int    `json:"words"`
	UserWords    int    `json:"user_words"`
	KeymapKeys   int    `json:"keymap_keys"`
	KeymapSource string `json:"keymap_source"`
	DataDir      string `json:"data_dir"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	doctorOutput := buildDoctorOutput(cmdCtx.Cfg, cmdCtx.Logger)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

// buildDoctorOutput runs every check directly against the configured
// paths rather than through the engine, so a broken setup still yields
// a full report. Checks stay in build order: configuration, dictionary,
// keymap, data.
func buildDoctorOutput(cfg *config.Config, logger *slog.Logger) *DoctorOutput {
	var checks []HealthCheck
	summary := SetupSummary{DataDir: cfg.DataDir}

	pass := func(name, group, detail string) {
		checks = append(checks, HealthCheck{Name: name, Group: group, Status: "pass", Detail: detail})
	}
	warn := func(name, group, detail string) {
		checks = append(checks, HealthCheck{Name: name, Group: group, Status: "warn", Detail: detail})
	}
	fail := func(name, group, detail string) {
		checks = append(checks, HealthCheck{Name: name, Group: group, Status: "error", Detail: detail})
	}

	// configuration
	if file := config.GetConfigFileUsed(); file != "" {
		summary.ConfigFile = file
		pass("config file", "configuration", file)
	} else {
		warn("config file", "configuration", "not found (using defaults, env, and flags)")
	}

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		fail("threshold", "configuration", fmt.Sprintf("%g is outside [0,1]", cfg.Threshold))
	} else {
		pass("threshold", "configuration", fmt.Sprintf("%.2f", cfg.Threshold))
	}

	if cfg.MaxSuggestions < 1 {
		fail("max suggestions", "configuration", fmt.Sprintf("%d is below 1", cfg.MaxSuggestions))
	} else {
		pass("max suggestions", "configuration", fmt.Sprintf("%d", cfg.MaxSuggestions))
	}

	// dictionary
	var words []string
	if cfg.Wordlist == "" {
		fail("word list configured", "dictionary", "no word list configured")
	} else {
		pass("word list configured", "dictionary", cfg.Wordlist)

		loaded, err := wordlist.Load(cfg.Wordlist)
		if err != nil {
			fail("word list readable", "dictionary", err.Error())
		} else {
			words = loaded
			summary.Words = len(words)
			pass("word list readable", "dictionary", fmt.Sprintf("%d entries", len(words)))

			dups, nonLower := wordlistHygiene(cfg.Wordlist)
			if dups > 0 || nonLower > 0 {
				warn("word list hygiene", "dictionary",
					fmt.Sprintf("%d duplicate, %d non-lowercase entries", dups, nonLower))
			} else {
				pass("word list hygiene", "dictionary", "no duplicates, all lowercase")
			}
		}
	}

	// keymap
	var rel spell.NeighborRelation
	if cfg.Keymap != "" {
		summary.KeymapSource = cfg.Keymap
		loaded, err := keymap.Load(cfg.Keymap)
		if err != nil {
			fail("keymap file", "keymap", err.Error())
		} else {
			rel = loaded
			pass("keymap file", "keymap", cfg.Keymap)
		}
	} else {
		layout := cfg.Layout
		if layout == "" {
			layout = keymap.DefaultLayout
		}
		summary.KeymapSource = layout + " (built-in)"
		built, err := keymap.Builtin(layout)
		if err != nil {
			fail("layout", "keymap", err.Error())
		} else {
			rel = built
			pass("layout", "keymap", layout)
		}
	}

	if rel != nil {
		summary.KeymapKeys = len(rel)
		pass("adjacency", "keymap",
			fmt.Sprintf("%d keys, %.1f neighbors per key, %d asymmetric pairs",
				len(rel), averageNeighbors(rel), asymmetricPairs(rel)))

		if len(words) > 0 {
			missing := uncoveredLetters(words, rel)
			if len(missing) > 0 {
				warn("alphabet coverage", "keymap", coverageDetail(missing))
			} else {
				pass("alphabet coverage", "keymap", "every word list letter has a key")
			}
		}
	}

	// data
	if err := probeDataDir(cfg.DataDir); err != nil {
		fail("data directory", "data", err.Error())
	} else {
		pass("data directory", "data", cfg.DataDir)
	}

	if store, err := state.Open(cfg.StatePath(), logger); err != nil {
		warn("state database", "data", err.Error())
	} else {
		version, verr := store.GetMigrationVersion()
		count, cerr := store.CountChecks()
		_ = store.Close()
		if verr != nil || cerr != nil {
			warn("state database", "data", "opened, but schema inspection failed")
		} else {
			pass("state database", "data", fmt.Sprintf("schema v%d, %d runs recorded", version, count))
		}
	}

	if users, err := userdict.Open(filepath.Join(cfg.DataDir, "userdict")); err != nil {
		warn("personal dictionary", "data", err.Error())
	} else {
		userWords, werr := users.Words()
		_ = users.Close()
		if werr != nil {
			warn("personal dictionary", "data", werr.Error())
		} else {
			summary.UserWords = len(userWords)
			pass("personal dictionary", "data", fmt.Sprintf("%d words", len(userWords)))
		}
	}

	issues := 0
	for _, c := range checks {
		if c.Status != "pass" {
			issues++
		}
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

// wordlistHygiene reports duplicate and non-lowercase entries in the
// raw file. The loader lowercases and keeps duplicates, so both shift
// ranking without any visible error.
func wordlistHygiene(path string) (dups, nonLower int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer func() { _ = f.Close() }()

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		lower := strings.ToLower(raw)
		if raw != lower {
			nonLower++
		}
		if _, ok := seen[lower]; ok {
			dups++
		}
		seen[lower] = struct{}{}
	}

	return dups, nonLower
}

func averageNeighbors(rel spell.NeighborRelation) float64 {
	if len(rel) == 0 {
		return 0
	}
	total := 0
	for _, neighbors := range rel {
		total += len(neighbors)
	}
	return float64(total) / float64(len(rel))
}

// asymmetricPairs counts directed edges without a reverse edge. Nonzero
// is normal for hand-written keymaps; the built-in layouts are
// symmetric.
func asymmetricPairs(rel spell.NeighborRelation) int {
	n := 0
	for a, neighbors := range rel {
		for _, b := range neighbors {
			if !rel.Near(b, a) {
				n++
			}
		}
	}
	return n
}

// uncoveredLetters lists word list letters missing from the relation.
// Substitutions involving those letters never earn the neighbor
// discount.
func uncoveredLetters(words []string, rel spell.NeighborRelation) []string {
	seen := make(map[rune]struct{})
	var missing []string

	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				continue
			}
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			if _, ok := rel[r]; !ok {
				missing = append(missing, string(r))
			}
		}
	}

	sort.Strings(missing)
	return missing
}

func coverageDetail(missing []string) string {
	if len(missing) > 12 {
		return fmt.Sprintf("%d letters without a key: %s ...",
			len(missing), strings.Join(missing[:12], " "))
	}
	return "letters without a key: " + strings.Join(missing, " ")
}

// probeDataDir verifies the data directory exists and is writable.
func probeDataDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no data directory configured")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, nil, 0600); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	return os.Remove(probe)
}

// calculateHealthScore computes a health score from 0-100. Errors count
// double.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= 20
		case "warn":
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.Status == "pass" {
			continue
		}

		rec := getRecommendation(check.Name)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	// Limit to top 5 recommendations
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(name string) string {
	switch name {
	case "config file":
		return "Run 'keyslip init' to scaffold keyslip.yaml"
	case "threshold":
		return "Set threshold between 0 and 1 in keyslip.yaml"
	case "max suggestions":
		return "Set max_suggestions to at least 1"
	case "word list configured", "word list readable":
		return "Point wordlist at a readable file, or run 'keyslip init' for a starter list"
	case "word list hygiene":
		return "Deduplicate and lowercase the word list to keep ranking deterministic"
	case "keymap file":
		return "Fix the keymap path in keyslip.yaml or remove it to use the built-in layout"
	case "layout":
		return "Pick a built-in layout (" + strings.Join(keymap.Layouts(), ", ") + ") or configure a keymap file"
	case "alphabet coverage":
		return "Add keymap entries for the uncovered letters"
	case "data directory":
		return "Point data_dir at a writable directory"
	case "state database":
		return "Remove the state database file to rebuild it"
	case "personal dictionary":
		return "Close other keyslip sessions holding the personal dictionary"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Keyslip Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Setup Summary
	r.Println(styles.Header2.Render("Setup Summary"))
	r.Printf("   Words: %d | Personal: %d | Keymap: %s (%d keys)\n",
		out.Summary.Words, out.Summary.UserWords, out.Summary.KeymapSource, out.Summary.KeymapKeys)
	configFile := out.Summary.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}
	r.Printf("   Config: %s | Data: %s\n", configFile, out.Summary.DataDir)
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s", icon, check.Name)
		if check.Detail != "" {
			status += ": " + styles.Muted.Render(check.Detail)
		}
		r.Println("   " + status)
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println(output.FormatHeader(1, "Keyslip Health Report"))
	r.Println("")

	// Setup Summary
	r.Println(output.FormatHeader(2, "Setup Summary"))
	r.Println("")
	r.Println(output.FormatKeyValue("Words", fmt.Sprintf("%d", out.Summary.Words)))
	r.Println(output.FormatKeyValue("Personal words", fmt.Sprintf("%d", out.Summary.UserWords)))
	r.Println(output.FormatKeyValue("Keymap", fmt.Sprintf("%s (%d keys)", out.Summary.KeymapSource, out.Summary.KeymapKeys)))
	if out.Summary.ConfigFile != "" {
		r.Println(output.FormatKeyValue("Config file", out.Summary.ConfigFile))
	}
	r.Println(output.FormatKeyValue("Data directory", out.Summary.DataDir))
	r.Println("")

	// Health Checks
	r.Println(output.FormatHeader(2, "Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(output.FormatHeader(3, titleCaser.String(currentGroup)))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s", status, check.Name)
		if check.Detail != "" {
			r.Printf(": %s", check.Detail)
		}
		r.Println("")
	}
	r.Println("")

	// Health Score
	r.Println(output.FormatHeader(2, "Health Score"))
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(output.FormatHeader(2, "Recommendations"))
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
