package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyslip-labs/keyslip/internal/engine"
	"github.com/keyslip-labs/keyslip/internal/state"
	"github.com/keyslip-labs/keyslip/internal/testutil"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

type fixture struct {
	server   *Server
	engine   *engine.Engine
	store    *state.Store
	wordlist string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	wordlist := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordlist, []byte("hello\nworld\n"), 0o644))

	eng, err := engine.New(engine.Config{
		WordlistPath: wordlist,
		DataDir:      filepath.Join(dir, "data"),
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	store, err := state.Open(filepath.Join(dir, "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := New(Config{
		Engine:     eng,
		Store:      store,
		Addr:       "127.0.0.1:0",
		Watch:      true,
		WatchPaths: []string{wordlist},
		Logger:     testutil.NewTestLogger(t),
	})

	return &fixture{server: srv, engine: eng, store: store, wordlist: wordlist}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.Routes().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["words"])
}

func TestCorrectEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/correct", `{"word":"helo"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[spell.Result](t, rec)
	assert.Equal(t, "helo", res.Input)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "hello", res.Candidates[0].Word)
}

func TestCorrectEndpointBadRequest(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{"", "{not json", `{"word":""}`, `{"word":"  "}`} {
		rec := f.do(t, http.MethodPost, "/api/v1/correct", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestCheckEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/check", `{"text":"helo world"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, body["words_scanned"])
	findings, ok := body["findings"].([]any)
	require.True(t, ok)
	assert.Len(t, findings, 1)

	// Run metadata lands in the history store.
	records, err := f.store.ListChecks(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "api", records[0].Source)
	assert.Equal(t, int64(2), records[0].WordsScanned)
	assert.Equal(t, int64(1), records[0].Flagged)
}

func TestCheckEndpointBadRequest(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/check", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordsLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/words", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]string](t, rec)
	assert.Empty(t, body["words"])

	rec = f.do(t, http.MethodPost, "/api/v1/words", `{"word":"golang"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/words", "")
	body = decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"golang"}, body["words"])
	assert.True(t, f.engine.Known("golang"))

	rec = f.do(t, http.MethodDelete, "/api/v1/words/golang", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/words/golang", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- f.server.Serve(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestWatchReloadsEngine(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = f.server.watchFiles(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(f.wordlist, []byte("hello\nworld\ngopher\n"), 0o644))

	require.Eventually(t, func() bool {
		return f.engine.Known("gopher")
	}, 3*time.Second, 50*time.Millisecond)
}
