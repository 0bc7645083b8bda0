package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storebind/internal/config"
)

func demoCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		appends  int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the demo tree and print every update",
		Long: `Run a small todo tree against an in-memory store.

Each step types a draft into the composer field and submits it. Every
node recompute that produced new props is printed.

Examples:
  storebind demo
  storebind demo --appends=3 --interval=0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("appends") {
				cfg.Demo.Appends = appends
			}
			if cmd.Flags().Changed("interval") {
				cfg.Demo.Interval = interval.String()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&appends, "appends", "n", 0, "Number of todos to add (default from config)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Delay between steps (default from config)")

	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)
	interval, _ := cfg.Interval()

	reg := prometheus.NewRegistry()
	in := inspectorFor(cfg)
	app, err := newDemoApp(cfg, os.Stdout, logger, observers(cfg, reg, in)...)
	if err != nil {
		return err
	}
	defer app.close()

	if in != nil {
		srv, addr, err := startDevtools(cfg, in, reg, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		info("devtools on http://%s", addr)
	}

	info("running %d steps", cfg.Demo.Appends)
	for n := 1; n <= cfg.Demo.Appends; n++ {
		if err := app.step(n); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			warn("interrupted after %d steps", n)
			return nil
		case <-time.After(interval):
		}
	}

	fmt.Println()
	if in != nil {
		success("%d nodes, %d notify passes", len(in.Nodes()), app.provider.Passes())
	} else {
		success("%d notify passes", app.provider.Passes())
	}
	return nil
}
