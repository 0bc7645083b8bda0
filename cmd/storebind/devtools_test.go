package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/storebind/internal/config"
	"github.com/vango-dev/storebind/internal/errors"
)

func TestInspectorFollowsConfig(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, inspectorFor(cfg))

	cfg.Devtools.Enabled = false
	assert.Nil(t, inspectorFor(cfg))
}

func TestStartDevtoolsServesInspector(t *testing.T) {
	cfg := config.Default()
	cfg.Devtools.Addr = "127.0.0.1:0"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, addr, err := startDevtools(cfg, inspectorFor(cfg), prometheus.NewRegistry(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServeRequiresDevtools(t *testing.T) {
	cfg := config.Default()
	cfg.Devtools.Enabled = false

	err := runServe(context.Background(), cfg)
	var be *errors.BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "B040", be.Code)
	assert.Contains(t, be.Detail, "devtools.enabled")
}

func TestDemoRunsWithoutDevtools(t *testing.T) {
	cfg := config.Default()
	cfg.Devtools.Enabled = false
	cfg.Metrics.Enabled = false
	cfg.Log.Level = "error"
	cfg.Demo.Appends = 2
	cfg.Demo.Interval = "0s"

	require.NoError(t, runDemo(context.Background(), cfg))
}
