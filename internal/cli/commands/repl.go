package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/engine"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

const replPrompt = "keyslip> "

// ReplOptions holds options for the repl command.
type ReplOptions struct {
	Auto   bool // Apply confident corrections without asking
	NoAuto bool // Never apply corrections automatically
}

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	opts := &ReplOptions{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive correction session",
		Long: `Start an interactive session that corrects words as you type them.

Known words are confirmed; unknown words print a ranked candidate list
to pick from by number. With auto-correction enabled, a top match
scoring above 0.9 is applied without asking. When neither a flag nor
the config decides it, the session asks once at startup.

Words added with .add persist in the personal dictionary; .ignore and
.threshold last only for the session.`,
		Example: `  # Start a session
  keyslip repl

  # Apply confident corrections without asking
  keyslip repl --auto

  # Never auto-correct, always show candidates
  keyslip repl --no-auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Auto, "auto", false, "Apply confident corrections without asking")
	cmd.Flags().BoolVar(&opts.NoAuto, "no-auto", false, "Never apply corrections automatically")

	return cmd
}

// replSession carries the per-session state: the engine, the renderer,
// and the auto-correction toggle.
type replSession struct {
	eng    *engine.Engine
	r      *output.Renderer
	errOut io.Writer
	auto   bool
}

func runRepl(cmd *cobra.Command, opts *ReplOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cmdCtx.Cfg.HistoryFile(),
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session := &replSession{
		eng:    cmdCtx.Engine,
		r:      cmdCtx.Renderer,
		errOut: cmd.ErrOrStderr(),
	}

	// Resolve the auto toggle: flags first, then config, then ask once.
	switch {
	case cmd.Flags().Changed("auto"):
		session.auto = opts.Auto
	case cmd.Flags().Changed("no-auto"):
		session.auto = !opts.NoAuto
	case cmdCtx.Cfg.Auto:
		session.auto = true
	default:
		session.auto = promptAuto(rl)
	}

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "keyslip: %d dictionary words, auto-correction %s\n",
		cmdCtx.Engine.DictionarySize(), onOff(session.auto))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// REPL loop
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := session.handleDotCommand(line); quit {
				break
			}
			continue
		}

		if line == "exit" || line == "quit" {
			break
		}

		for _, word := range strings.Fields(line) {
			session.correctWord(rl, word)
		}
	}

	return nil
}

// promptAuto asks the session-level yes/no question once. Only y/yes
// enables it; anything else, including EOF, is no.
func promptAuto(rl *readline.Instance) bool {
	rl.SetPrompt("Enable auto-correction? [y/N] ")
	defer rl.SetPrompt(replPrompt)

	line, err := rl.Readline()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// correctWord resolves one typed word: confirm, auto-correct, or offer
// candidates to pick from.
func (s *replSession) correctWord(rl *readline.Instance, word string) {
	st := s.r.Styles()

	if s.eng.Known(word) {
		s.r.Success(strings.ToLower(word))
		return
	}

	res := s.eng.Correct(word)

	if s.auto && res.Confident {
		s.r.Printf("%s -> %s %s\n",
			res.Input,
			st.Success.Render(res.Correction),
			st.Muted.Render("("+formatScore(res.Candidates[0].Score)+")"))
		return
	}

	if len(res.Candidates) == 0 {
		s.r.Printf("%s: no suggestions\n", res.Input)
		return
	}

	renderCandidatesTable(s.r, res.Candidates)
	s.promptSelection(rl, res.Input, res.Candidates)
}

// promptSelection reads a candidate number. Enter, EOF, ^C, or an
// out-of-range answer leaves the word unchanged.
func (s *replSession) promptSelection(rl *readline.Instance, input string, candidates []spell.Candidate) {
	rl.SetPrompt(fmt.Sprintf("pick [1-%d]> ", len(candidates)))
	defer rl.SetPrompt(replPrompt)

	line, err := rl.Readline()
	if err != nil {
		return
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(candidates) {
		s.r.Muted("(unchanged)")
		return
	}

	c := candidates[choice-1]
	s.r.Printf("%s -> %s %s\n",
		input,
		s.r.Styles().Success.Render(c.Word),
		s.r.Styles().Muted.Render("("+formatScore(c.Score)+")"))
}

// handleDotCommand dispatches a dot-command and reports whether the
// session should end.
func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		s.printHelp()

	case ".auto":
		if len(parts) < 2 || (parts[1] != "on" && parts[1] != "off") {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .auto on|off")
			return false
		}
		s.auto = parts[1] == "on"
		s.r.Printf("auto-correction %s\n", onOff(s.auto))

	case ".add":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .add <word>")
			return false
		}
		if err := s.eng.AddWord(parts[1]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.r.Success(fmt.Sprintf("added %q to the personal dictionary", strings.ToLower(parts[1])))

	case ".ignore":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .ignore <word>")
			return false
		}
		s.eng.Ignore(parts[1])
		s.r.Printf("ignoring %q for this session\n", strings.ToLower(parts[1]))

	case ".words":
		words, err := s.eng.UserWords()
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		renderWords(s.r, words)

	case ".threshold":
		if len(parts) < 2 {
			s.r.Printf("threshold %.2f\n", s.eng.Options().Threshold)
			return false
		}
		v, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .threshold [value]")
			return false
		}
		if err := s.eng.SetThreshold(v); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.r.Printf("threshold %.2f\n", v)

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	return false
}

func (s *replSession) printHelp() {
	help := `
Commands:
  .help               Show this help message
  .auto on|off        Toggle automatic corrections
  .add <word>         Add a word to the personal dictionary
  .ignore <word>      Ignore a word for this session
  .words              List personal dictionary words
  .threshold [value]  Show or set the similarity threshold
  .clear              Clear the screen
  .quit / .exit       Exit the session

Tips:
  - Type a word to check it; exit or quit also ends the session
  - Pick a suggestion by number, or press Enter to keep the word
  - Use arrow keys to navigate history
`
	s.r.Println(help)
}

// newReplCompleter creates a readline completer for dot-commands.
func newReplCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".auto",
			readline.PcItem("on"),
			readline.PcItem("off"),
		),
		readline.PcItem(".add"),
		readline.PcItem(".ignore"),
		readline.PcItem(".words"),
		readline.PcItem(".threshold"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}
