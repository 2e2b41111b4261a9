package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/page"
	"github.com/weft-dev/weft/pkg/persist"
	"github.com/weft-dev/weft/pkg/server"
	"github.com/weft-dev/weft/pkg/session"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		title      string
		statePath  string
		sessionTTL time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo counter application",
		Long: `Serve the demo counter application.

The demo is a single counter component with an increment button
and a reset button guarded by a modal confirmation dialog. It
exercises page snapshots, backtracking, call/answer delegation,
and the live-update channel.

Prometheus metrics are exposed on /metrics. With --state, session
continuity records are kept in a bbolt file so page id sequences
survive restarts.

Examples:
  weft serve
  weft serve --addr=:9000 --title="My Counter"
  weft serve --state=weft-state.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, title, statePath, sessionTTL, verbose)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVarP(&title, "title", "t", "Weft Counter", "Page title")
	cmd.Flags().StringVar(&statePath, "state", "", "Path to the continuity database (default in-memory)")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 30*time.Minute, "Idle time before a session is dropped")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runServe(addr, title, statePath string, sessionTTL time.Duration, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	states, err := openStateStore(statePath)
	if err != nil {
		return fmt.Errorf("open continuity store: %w", err)
	}
	defer states.Close()

	metrics := middleware.NewMetrics()

	factory := func(id string) (*session.Session, error) {
		return session.New(newCounterApp(title), page.NewMemoryStore(),
			session.WithID(id),
			session.WithLogger(logger),
			session.WithMiddleware(metrics.Middleware()),
		)
	}

	manager := server.NewManager(factory,
		server.WithSessionTTL(sessionTTL),
		server.WithStateStore(states),
		server.WithManagerLogger(logger),
		server.WithMetrics(metrics),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", server.Handler(manager, server.WithHandlerLogger(logger)))

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "title", title)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := manager.Close(shutdownCtx); err != nil {
		return fmt.Errorf("close session manager: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openStateStore picks the continuity backend: bbolt when a path is
// given, otherwise memory only.
func openStateStore(path string) (persist.Store, error) {
	if path == "" {
		return persist.NewMemoryStore(), nil
	}
	return persist.NewBoltStore(path)
}
