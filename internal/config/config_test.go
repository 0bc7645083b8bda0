package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/storebind/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if !cfg.Devtools.Enabled {
		t.Error("Devtools.Enabled should default to true")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Scheduler.MaxPasses != DefaultMaxPasses {
		t.Errorf("Scheduler.MaxPasses = %d, want %d", cfg.Scheduler.MaxPasses, DefaultMaxPasses)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	if d, _ := cfg.Interval(); d != DefaultInterval {
		t.Errorf("Interval() = %s, want %s", d, DefaultInterval)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
	var be *errors.BindError
	if !stderrors.As(err, &be) || be.Code != "B041" {
		t.Errorf("Load() error = %v, want B041", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `
log:
  level: debug
  format: json
devtools:
  enabled: true
  addr: 0.0.0.0:9000
tracing:
  enabled: true
scheduler:
  maxPasses: 5
demo:
  interval: 10ms
  appends: 3
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", level)
	}
	if !cfg.Devtools.Enabled || cfg.Devtools.Addr != "0.0.0.0:9000" {
		t.Errorf("Devtools = %+v", cfg.Devtools)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should keep its default")
	}
	if cfg.Tracing.TracerName != DefaultNamespace {
		t.Errorf("Tracing.TracerName = %q, want %q", cfg.Tracing.TracerName, DefaultNamespace)
	}
	if cfg.Scheduler.MaxPasses != 5 {
		t.Errorf("Scheduler.MaxPasses = %d, want 5", cfg.Scheduler.MaxPasses)
	}
	if d, _ := cfg.Interval(); d != 10*time.Millisecond {
		t.Errorf("Interval() = %s, want 10ms", d)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONConfigFileName, `{"metrics": {"namespace": "app"}, "demo": {"appends": 2}}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metrics.Namespace != "app" {
		t.Errorf("Metrics.Namespace = %q, want app", cfg.Metrics.Namespace)
	}
	if cfg.Demo.Appends != 2 {
		t.Errorf("Demo.Appends = %d, want 2", cfg.Demo.Appends)
	}
}

func TestLoadDevtoolsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "devtools:\n  enabled: false\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Devtools.Enabled {
		t.Error("Devtools.Enabled = true, want false from file")
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want default", cfg.Devtools.Addr)
	}
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "metrics:\n  namespace: yaml\n")
	writeFile(t, dir, JSONConfigFileName, `{"metrics": {"namespace": "json"}}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metrics.Namespace != "yaml" {
		t.Errorf("Metrics.Namespace = %q, want yaml", cfg.Metrics.Namespace)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad yaml", "a.yaml", "log: [", "Failed to parse"},
		{"bad json", "b.json", "{", "Failed to parse"},
		{"bad level", "c.yaml", "log:\n  level: loud\n", "log.level"},
		{"bad format", "d.yaml", "log:\n  format: xml\n", "log.format"},
		{"bad interval", "e.yaml", "demo:\n  interval: soon\n", "demo.interval"},
		{"negative passes", "f.yaml", "scheduler:\n  maxPasses: -1\n", "maxPasses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadFile(path)
			var be *errors.BindError
			if !stderrors.As(err, &be) || be.Code != "B040" {
				t.Fatalf("LoadFile() error = %v, want B040", err)
			}
			if !strings.Contains(be.Detail, tt.want) {
				t.Errorf("Detail = %q, want it to mention %q", be.Detail, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
}
