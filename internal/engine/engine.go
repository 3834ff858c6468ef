// Package engine wires the dictionary, keymap, and personal dictionary
// into one correction session. The loaded state is swapped wholesale on
// reload, so readers always see a consistent snapshot without holding a
// lock during scoring.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/keyslip-labs/keyslip/internal/userdict"
	"github.com/keyslip-labs/keyslip/internal/wordlist"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// Config carries everything the engine needs at startup.
type Config struct {
	WordlistPath   string
	KeymapPath     string
	Layout         string
	Threshold      float64
	MaxSuggestions int
	DataDir        string
	Logger         *slog.Logger
}

// Engine is the correction session shared by the CLI, the REPL, the
// checker, and the HTTP server.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	users  *userdict.Store

	mu      sync.RWMutex
	base    []string
	dict    []string
	known   map[string]struct{}
	rel     spell.NeighborRelation
	opts    spell.Options
	ignored map[string]struct{}
}

// New loads the word list and keymap and opens the personal dictionary.
// A missing word list or an explicitly configured but missing keymap is
// fatal; a personal dictionary that cannot be opened only disables the
// add/remove surface.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.WordlistPath == "" {
		return nil, fmt.Errorf("no word list configured (set wordlist in keyslip.yaml or pass --wordlist)")
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		opts: spell.Options{
			Threshold:      cfg.Threshold,
			MaxSuggestions: cfg.MaxSuggestions,
		},
		ignored: make(map[string]struct{}),
	}

	if cfg.DataDir != "" {
		dir := filepath.Join(cfg.DataDir, "userdict")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			logger.Warn("personal dictionary disabled", slog.String("error", err.Error()))
		} else if users, err := userdict.Open(dir); err != nil {
			logger.Warn("personal dictionary disabled", slog.String("error", err.Error()))
		} else {
			e.users = users
		}
	}

	if err := e.Reload(); err != nil {
		_ = e.closeUsers()
		return nil, err
	}

	return e, nil
}

// Reload re-reads the word list and keymap from disk and rebuilds the
// merged dictionary. On error the previous state stays in place.
func (e *Engine) Reload() error {
	base, err := wordlist.Load(e.cfg.WordlistPath)
	if err != nil {
		return err
	}

	var rel spell.NeighborRelation
	if e.cfg.KeymapPath != "" {
		rel, err = keymap.Load(e.cfg.KeymapPath)
	} else {
		layout := e.cfg.Layout
		if layout == "" {
			layout = keymap.DefaultLayout
		}
		rel, err = keymap.Builtin(layout)
	}
	if err != nil {
		return err
	}

	dict, known, err := e.merge(base)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.base = base
	e.dict = dict
	e.known = known
	e.rel = rel
	e.mu.Unlock()

	e.logger.Info("dictionary loaded",
		slog.Int("words", len(dict)),
		slog.Int("relation_keys", len(rel)))
	return nil
}

// merge appends personal-dictionary words after the base list, skipping
// entries the base list already has. Base order is preserved because
// ranking ties break on it.
func (e *Engine) merge(base []string) ([]string, map[string]struct{}, error) {
	known := make(map[string]struct{}, len(base))
	for _, w := range base {
		known[w] = struct{}{}
	}

	dict := base
	if e.users != nil {
		extra, err := e.users.Words()
		if err != nil {
			return nil, nil, err
		}
		dict = make([]string, len(base), len(base)+len(extra))
		copy(dict, base)
		for _, w := range extra {
			if _, ok := known[w]; ok {
				continue
			}
			known[w] = struct{}{}
			dict = append(dict, w)
		}
	}

	return dict, known, nil
}

// Correct ranks word against the merged dictionary.
func (e *Engine) Correct(word string) spell.Result {
	e.mu.RLock()
	dict, rel, opts := e.dict, e.rel, e.opts
	e.mu.RUnlock()

	return spell.Correct(word, dict, rel, opts)
}

// Known reports whether word is in the merged dictionary or on the
// session ignore list.
func (e *Engine) Known(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))

	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.known[word]; ok {
		return true
	}
	_, ok := e.ignored[word]
	return ok
}

// Ignore suppresses word for the rest of the session. Never persisted.
func (e *Engine) Ignore(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}

	e.mu.Lock()
	e.ignored[word] = struct{}{}
	e.mu.Unlock()
}

// Ignored lists the session ignore set in sorted order.
func (e *Engine) Ignored() []string {
	e.mu.RLock()
	words := make([]string, 0, len(e.ignored))
	for w := range e.ignored {
		words = append(words, w)
	}
	e.mu.RUnlock()

	sort.Strings(words)
	return words
}

// AddWord stores word in the personal dictionary and rebuilds the merged
// dictionary.
func (e *Engine) AddWord(word string) error {
	if e.users == nil {
		return fmt.Errorf("personal dictionary unavailable (no data directory)")
	}
	if err := e.users.Add(word); err != nil {
		return err
	}
	return e.remerge()
}

// RemoveWord removes word from the personal dictionary and reports
// whether it was present.
func (e *Engine) RemoveWord(word string) (bool, error) {
	if e.users == nil {
		return false, fmt.Errorf("personal dictionary unavailable (no data directory)")
	}
	found, err := e.users.Remove(word)
	if err != nil {
		return false, err
	}
	if found {
		if err := e.remerge(); err != nil {
			return true, err
		}
	}
	return found, nil
}

// UserWords lists the personal dictionary.
func (e *Engine) UserWords() ([]string, error) {
	if e.users == nil {
		return nil, nil
	}
	return e.users.Words()
}

func (e *Engine) remerge() error {
	e.mu.RLock()
	base := e.base
	e.mu.RUnlock()

	dict, known, err := e.merge(base)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.dict = dict
	e.known = known
	e.mu.Unlock()
	return nil
}

// DictionarySize returns the merged dictionary length.
func (e *Engine) DictionarySize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.dict)
}

// Relation returns the active neighbor relation. Callers must treat it
// as read-only.
func (e *Engine) Relation() spell.NeighborRelation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rel
}

// Options returns the active ranking options.
func (e *Engine) Options() spell.Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// SetThreshold changes the session similarity threshold. Zero is
// rejected rather than treated as a reset, since the ranker reads a
// zero threshold as "use the default".
func (e *Engine) SetThreshold(v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("threshold must be greater than 0 and at most 1, got %g", v)
	}

	e.mu.Lock()
	e.opts.Threshold = v
	e.mu.Unlock()
	return nil
}

// Close releases the personal dictionary.
func (e *Engine) Close() error {
	return e.closeUsers()
}

func (e *Engine) closeUsers() error {
	if e.users == nil {
		return nil
	}
	err := e.users.Close()
	e.users = nil
	return err
}
