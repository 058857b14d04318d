package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/client"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/localgraph"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != client.DefaultBaseURL {
		t.Errorf("Expected %s, got %s", client.DefaultBaseURL, cfg.Backend.URL)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "pathview.yaml", `
backend:
  url: http://analysis:9000
  timeout: 5s
log:
  level: debug
server:
  listen: 127.0.0.1:9999
view:
  focus_radius: 3
  animation_speed_ms: 500
  positions:
    NewHost: {x: 10, y: 20}
  edge_filters:
    edge_types: [AdminTo, DCSync]
    min_weight: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.URL != "http://analysis:9000" {
		t.Errorf("Expected backend url from file, got %s", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Log.ParsedLevel() != logging.DebugLevel {
		t.Errorf("Expected debug level, got %v", cfg.Log.ParsedLevel())
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Unset fields should keep defaults, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.View.EdgeFilters == nil || len(cfg.View.EdgeFilters.EdgeTypes) != 2 || cfg.View.EdgeFilters.MinWeight != 4 {
		t.Errorf("Unexpected edge filters %+v", cfg.View.EdgeFilters)
	}

	layout := cfg.View.Layout()
	if p, ok := layout.Centers["NewHost"]; !ok || p.X != 10 || p.Y != 20 {
		t.Errorf("Expected NewHost override, got %+v", p)
	}
	if _, ok := layout.Centers["DC01"]; !ok {
		t.Error("Overrides should extend the default table")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "pathview.yaml", "backend:\n  url: http://from-file:1\n")
	t.Setenv(EnvBackendURL, "http://from-env:2/")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "http://from-env:2" {
		t.Errorf("Expected env url, got %s", cfg.Backend.URL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected env log level, got %s", cfg.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "backend: [")); err == nil {
		t.Error("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad mode", func(c *Config) { c.Backend.Mode = "grpc" }, "backend.mode"},
		{"bad url", func(c *Config) { c.Backend.URL = "localhost:8000" }, "backend.url"},
		{"short timeout", func(c *Config) { c.Backend.Timeout = time.Millisecond }, "backend.timeout"},
		{"secret without subject", func(c *Config) { c.Backend.JWTSecret = "s"; c.Backend.JWTSubject = "" }, "backend.jwt_subject"},
		{"local without dataset", func(c *Config) { c.Backend.Mode = ModeLocal }, "dataset.uri"},
		{"bad s3 endpoint", func(c *Config) { c.Dataset.S3.Endpoint = "not a url" }, "dataset.s3"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"no listen", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
		{"tls without cert", func(c *Config) { c.Server.TLS.Enabled = true; c.Server.TLS.AutoGenerate = false }, "server.tls.cert_file"},
		{"radius", func(c *Config) { c.View.FocusRadius = 9 }, "view.focus_radius"},
		{"speed", func(c *Config) { c.View.AnimationSpeedMs = 300 }, "view.animation_speed_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error mentioning %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Backend.Mode = "grpc"
	cfg.Log.Level = "loud"
	cfg.View.FocusRadius = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, field := range []string{"backend.mode", "log.level", "view.focus_radius"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Expected %s in %v", field, err)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Backend.JWTSecret = "secret"
	b, err := cfg.OpenBackend(ctx, nil)
	if err != nil {
		t.Fatalf("OpenBackend(http) failed: %v", err)
	}
	if c, ok := b.(*client.Client); !ok || c.BaseURL() != client.DefaultBaseURL {
		t.Errorf("Expected HTTP client, got %T", b)
	}

	cfg = Default()
	cfg.Backend.Mode = ModeLocal
	cfg.Dataset.URI = writeFile(t, "lab.json", `{"nodes":[{"id":"1","name":"DC01","type":"Server"}],"edges":[]}`)
	b, err = cfg.OpenBackend(ctx, nil)
	if err != nil {
		t.Fatalf("OpenBackend(local) failed: %v", err)
	}
	if _, ok := b.(*localgraph.Service); !ok {
		t.Errorf("Expected local service, got %T", b)
	}

	cfg.Dataset.URI = filepath.Join(t.TempDir(), "missing.json")
	if b, err := cfg.OpenBackend(ctx, nil); err == nil || b != nil {
		t.Errorf("Expected error and nil backend, got %v, %v", b, err)
	}
}

func TestControllerOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.ControllerOptions(nil)
	if opts.Layout == nil || len(opts.Layout.Centers) == 0 {
		t.Error("Expected default layout")
	}
	if opts.NodeFilters != nil || opts.EdgeFilters != nil {
		t.Error("Unset filters should stay nil so the controller uses its defaults")
	}
}

func TestApplyView(t *testing.T) {
	cfg := Default()
	cfg.View.FocusRadius = 3
	cfg.View.AnimationSpeedMs = 500

	ctrl := controller.New(client.New(client.Options{}), cfg.ControllerOptions(nil))
	defer ctrl.Close()

	if err := cfg.ApplyView(context.Background(), ctrl); err != nil {
		t.Fatalf("ApplyView failed: %v", err)
	}
	st := ctrl.Snapshot()
	if st.Focus.Radius != 3 {
		t.Errorf("Expected radius 3, got %d", st.Focus.Radius)
	}
	if st.Animation.SpeedMS != 500 {
		t.Errorf("Expected speed 500, got %d", st.Animation.SpeedMS)
	}

	cfg.View.AnimationSpeedMs = 333
	if err := cfg.ApplyView(context.Background(), ctrl); err == nil {
		t.Error("Expected error for unsupported speed")
	}
}
