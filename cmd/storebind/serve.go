package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storebind/internal/config"
	"github.com/vango-dev/storebind/internal/errors"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo tree behind the devtools server",
		Long: `Run the demo tree and serve the devtools inspector for it.

Endpoints:
  /healthz         liveness
  /nodes           connected nodes
  /events          event history
  /events/stream   live events (websocket)
  /metrics         Prometheus metrics

Examples:
  storebind serve
  storebind serve --addr=:7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Devtools.Addr = addr
				cfg.Devtools.Enabled = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

// runServe owns the tree on the calling goroutine; HTTP handlers only read
// the inspector.
func runServe(ctx context.Context, cfg *config.Config) error {
	if !cfg.Devtools.Enabled {
		return errors.New("B040").
			WithDetail("devtools.enabled is false, so serve has nothing to serve.").
			WithSuggestion("Set devtools.enabled: true, or pass --addr")
	}

	logger := cfg.Logger(os.Stderr)
	interval, _ := cfg.Interval()
	if interval <= 0 {
		interval = config.DefaultInterval
	}

	reg := prometheus.NewRegistry()
	in := inspectorFor(cfg)
	app, err := newDemoApp(cfg, os.Stdout, logger, observers(cfg, reg, in)...)
	if err != nil {
		return err
	}
	defer app.close()

	srv, addr, err := startDevtools(cfg, in, reg, logger)
	if err != nil {
		return err
	}
	success("devtools listening on http://%s", addr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case <-ticker.C:
			if n >= cfg.Demo.Appends {
				continue
			}
			n++
			if err := app.step(n); err != nil {
				logger.Error("demo step failed", "step", n, "error", err)
			}
		}
	}
}
