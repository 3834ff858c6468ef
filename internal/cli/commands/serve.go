package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string // Listen address; empty falls back to config
	Watch bool   // Reload the dictionary when watched files change
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the correction API over HTTP",
		Long: `Run an HTTP JSON API backed by the loaded dictionary.

Endpoints:
  GET    /healthz              liveness and dictionary size
  POST   /api/v1/correct       {"word": "..."} -> correction result
  POST   /api/v1/check         {"text": "..."} -> findings report
  GET    /api/v1/words         personal dictionary
  POST   /api/v1/words         add a personal word
  DELETE /api/v1/words/{word}  remove a personal word

With --watch, changes to the word list or keymap file reload the
dictionary without restarting. The server shuts down gracefully on
SIGINT and SIGTERM.`,
		Example: `  # Serve on the default address
  keyslip serve

  # Custom address with live reload
  keyslip serve --addr :9090 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config, :8484)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload the dictionary when watched files change")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	serverCfg := cfg.GetServerConfig()

	addr := serverCfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	watch := serverCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	// A broken history store degrades the API, it does not block it.
	store, err := openStateStore(cfg, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Logger.Warn("check history disabled", slog.String("error", err.Error()))
		store = nil
	} else {
		defer func() { _ = store.Close() }()
	}

	srv := server.New(server.Config{
		Engine:     cmdCtx.Engine,
		Store:      store,
		Addr:       addr,
		Watch:      watch,
		WatchPaths: []string{cfg.Wordlist, cfg.Keymap},
		Logger:     cmdCtx.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "keyslip API listening on %s\n", addr)
	if watch {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "watching the word list and keymap for changes")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return srv.Serve(cmd.Context())
}
