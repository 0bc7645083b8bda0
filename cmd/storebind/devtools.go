package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/storebind/internal/config"
	"github.com/vango-dev/storebind/pkg/devtools"
)

// inspectorFor returns the inspector to attach, or nil when devtools are
// disabled.
func inspectorFor(cfg *config.Config) *devtools.Inspector {
	if !cfg.Devtools.Enabled {
		return nil
	}
	return devtools.NewInspector()
}

// startDevtools listens on cfg.Devtools.Addr and serves in in the
// background. The returned address is the one actually bound.
func startDevtools(cfg *config.Config, in *devtools.Inspector, g prometheus.Gatherer, logger *slog.Logger) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", cfg.Devtools.Addr)
	if err != nil {
		return nil, "", err
	}
	srv := &http.Server{
		Handler:           devtools.NewServer(in, devtools.WithGatherer(g), devtools.WithLogger(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("devtools server failed", "error", err)
		}
	}()
	return srv, ln.Addr().String(), nil
}
