// Package server exposes the correction engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/keyslip-labs/keyslip/internal/checker"
	"github.com/keyslip-labs/keyslip/internal/engine"
	"github.com/keyslip-labs/keyslip/internal/state"
)

// Server serves the correction API.
type Server struct {
	engine *engine.Engine
	store  *state.Store
	addr   string
	watch  bool
	paths  []string
	logger *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Engine *engine.Engine
	Store  *state.Store
	Addr   string
	Watch  bool
	// WatchPaths are the wordlist/keymap files reloaded on change when
	// Watch is set.
	WatchPaths []string
	Logger     *slog.Logger
}

// New creates a new API server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		engine: cfg.Engine,
		store:  cfg.Store,
		addr:   cfg.Addr,
		watch:  cfg.Watch,
		paths:  cfg.WatchPaths,
		logger: logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", slog.String("addr", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the HTTP handler. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/correct", s.handleCorrect)
		r.Post("/check", s.handleCheck)
		r.Get("/words", s.handleListWords)
		r.Post("/words", s.handleAddWord)
		r.Delete("/words/{word}", s.handleRemoveWord)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"words":  s.engine.DictionarySize(),
	})
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "invalid request: word is required")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Correct(req.Word))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "invalid request: text is required")
		return
	}

	report, err := checker.New(s.engine, 0).Check(r.Context(), strings.NewReader(req.Text), "api")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil {
		rec := &state.CheckRecord{
			Source:       report.Source,
			WordsScanned: int64(report.WordsScanned),
			Flagged:      int64(len(report.Findings)),
			Confident:    int64(report.Confident()),
			DurationMS:   report.Elapsed.Milliseconds(),
			StartedAt:    report.StartedAt,
		}
		if err := s.store.RecordCheck(rec); err != nil {
			s.logger.Error("failed to record check", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":        report.Source,
		"words_scanned": report.WordsScanned,
		"findings":      report.Findings,
		"duration_ms":   report.Elapsed.Milliseconds(),
	})
}

func (s *Server) handleListWords(w http.ResponseWriter, _ *http.Request) {
	words, err := s.engine.UserWords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if words == nil {
		words = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "invalid request: word is required")
		return
	}

	if err := s.engine.AddWord(req.Word); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	found, err := s.engine.RemoveWord(word)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("word not found: %s", word))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// watchFiles reloads the engine when a watched file changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories: editors replace files on save, and the
	// new inode would escape a direct file watch.
	names := make(map[string]bool, len(s.paths))
	for _, p := range s.paths {
		if p == "" {
			continue
		}
		names[filepath.Base(p)] = true
		if err := watcher.Add(filepath.Dir(p)); err != nil {
			s.logger.Error("failed to watch", slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !names[filepath.Base(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("file changed, reloading", slog.String("file", event.Name))
				if err := s.engine.Reload(); err != nil {
					s.logger.Error("reload failed", slog.String("error", err.Error()))
				}
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
