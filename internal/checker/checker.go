// Package checker runs spell checking over whole documents. Unknown
// words are scored against the dictionary across a bounded number of
// goroutines; the similarity computation itself is read-only, so the
// dictionary and relation can be shared without locking.
package checker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// Corrector resolves single words against the dictionary.
type Corrector interface {
	Correct(word string) spell.Result
	Known(word string) bool
}

// Token is one word occurrence in the scanned text. Line and Col are
// 1-based; Col counts runes, not bytes.
type Token struct {
	Word string
	Line int
	Col  int
}

// Finding is a word the dictionary does not know, with its suggestions.
type Finding struct {
	Line   int          `json:"line"`
	Col    int          `json:"col"`
	Word   string       `json:"word"`
	Result spell.Result `json:"result"`
}

// Report summarizes one document check.
type Report struct {
	Source       string        `json:"source"`
	WordsScanned int           `json:"words_scanned"`
	Findings     []Finding     `json:"findings,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Elapsed      time.Duration `json:"-"`
}

// Confident counts findings that carry an auto-correction.
func (r *Report) Confident() int {
	n := 0
	for _, f := range r.Findings {
		if f.Result.Confident {
			n++
		}
	}
	return n
}

// Checker scores unknown words against the dictionary.
type Checker struct {
	corrector Corrector
	jobs      int
}

// New returns a Checker running up to jobs concurrent corrections. A
// non-positive jobs falls back to GOMAXPROCS.
func New(corrector Corrector, jobs int) *Checker {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &Checker{corrector: corrector, jobs: jobs}
}

// Check scans r line by line and scores every word the dictionary does
// not know. Findings keep document order regardless of the number of
// jobs.
func (c *Checker) Check(ctx context.Context, r io.Reader, source string) (*Report, error) {
	report := &Report{Source: source, StartedAt: time.Now().UTC()}

	tokens, err := Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}
	report.WordsScanned = len(tokens)

	var unknown []Token
	for _, tok := range tokens {
		if !c.corrector.Known(tok.Word) {
			unknown = append(unknown, tok)
		}
	}

	findings := make([]Finding, len(unknown))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)

	for i, tok := range unknown {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			findings[i] = Finding{
				Line:   tok.Line,
				Col:    tok.Col,
				Word:   tok.Word,
				Result: c.corrector.Correct(tok.Word),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Findings = findings
	report.Elapsed = time.Since(report.StartedAt)
	return report, nil
}

// Tokenize extracts word tokens from r. A word starts with a letter and
// continues through letters and apostrophes; trailing apostrophes are
// trimmed. Words are lowercased for dictionary lookup.
func Tokenize(r io.Reader) ([]Token, error) {
	var tokens []Token

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		tokens = append(tokens, tokenizeLine(scanner.Text(), line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

func tokenizeLine(text string, line int) []Token {
	var tokens []Token
	runes := []rune(text)

	i := 0
	for i < len(runes) {
		if !unicode.IsLetter(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isWordRune(runes[i]) {
			i++
		}
		word := strings.TrimRight(string(runes[start:i]), "'")
		tokens = append(tokens, Token{
			Word: strings.ToLower(word),
			Line: line,
			Col:  start + 1,
		})
	}

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\''
}
