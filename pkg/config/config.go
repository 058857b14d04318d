// Package config loads pathview settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/animation"
	"github.com/dd0wney/cluso-pathview/pkg/client"
	"github.com/dd0wney/cluso-pathview/pkg/filter"
	"github.com/dd0wney/cluso-pathview/pkg/focus"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/source"
	tlsconf "github.com/dd0wney/cluso-pathview/pkg/tls"
	"github.com/dd0wney/cluso-pathview/pkg/validation"
	"github.com/dd0wney/cluso-pathview/pkg/viewmodel"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load. They win over the file.
const (
	EnvBackendURL = "PATHVIEW_BACKEND_URL"
	EnvDataset    = "PATHVIEW_DATASET"
	EnvLogLevel   = "PATHVIEW_LOG_LEVEL"
	EnvJWTSecret  = "PATHVIEW_JWT_SECRET"
)

// Backend modes
const (
	ModeHTTP  = "http"
	ModeLocal = "local"
)

// Config holds pathview configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Dataset DatasetConfig `yaml:"dataset"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	View    ViewConfig    `yaml:"view"`
}

// BackendConfig selects and addresses the analysis backend.
type BackendConfig struct {
	Mode       string        `yaml:"mode"` // "http" or "local"
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	JWTSecret  string        `yaml:"jwt_secret"`
	JWTSubject string        `yaml:"jwt_subject"`
}

// DatasetConfig locates the dataset served in local mode.
type DatasetConfig struct {
	URI string         `yaml:"uri"`
	S3  source.Options `yaml:"s3"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig controls the view API server.
type ServerConfig struct {
	Listen          string         `yaml:"listen"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	TLS             tlsconf.Config `yaml:"tls"`
}

// ViewConfig seeds the dashboard state.
type ViewConfig struct {
	Positions        map[string]viewmodel.Position `yaml:"positions"`
	NodeFilters      *filter.NodeFilters           `yaml:"node_filters"`
	EdgeFilters      *filter.EdgeFilters           `yaml:"edge_filters"`
	FocusRadius      int                           `yaml:"focus_radius"`
	AnimationSpeedMs int                           `yaml:"animation_speed_ms"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Mode:       ModeHTTP,
			URL:        client.DefaultBaseURL,
			Timeout:    client.DefaultTimeout,
			JWTSubject: "pathview",
		},
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Listen:          ":8090",
			ShutdownTimeout: 10 * time.Second,
			TLS:             tlsconf.DefaultConfig(),
		},
		View: ViewConfig{
			FocusRadius:      focus.DefaultRadius,
			AnimationSpeedMs: animation.DefaultSpeed.Millis(),
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBackendURL); ok && v != "" {
		c.Backend.URL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.Dataset.URI = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvJWTSecret); ok {
		c.Backend.JWTSecret = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	backend := validation.NewConfigValidator("backend").
		OneOf("mode", c.Backend.Mode, []string{ModeHTTP, ModeLocal}).
		When(c.Backend.Mode == ModeHTTP, func(v *validation.ConfigValidator) {
			v.URL("url", c.Backend.URL).
				MinDuration("timeout", c.Backend.Timeout, time.Second)
		}).
		When(c.Backend.JWTSecret != "", func(v *validation.ConfigValidator) {
			v.Required("jwt_subject", c.Backend.JWTSubject)
		})

	ds := validation.NewConfigValidator("dataset").
		When(c.Backend.Mode == ModeLocal, func(v *validation.ConfigValidator) {
			v.Required("uri", c.Dataset.URI)
		}).
		Custom("s3", func() error { return validation.Struct(c.Dataset.S3) })

	lg := validation.NewConfigValidator("log").
		Custom("level", func() error {
			_, err := logging.ParseLevel(c.Log.Level)
			return err
		})

	srv := validation.NewConfigValidator("server").
		Required("listen", c.Server.Listen).
		MinDuration("shutdown_timeout", c.Server.ShutdownTimeout, 0).
		When(c.Server.TLS.Enabled && !c.Server.TLS.AutoGenerate, func(v *validation.ConfigValidator) {
			v.Required("tls.cert_file", c.Server.TLS.CertFile).
				Required("tls.key_file", c.Server.TLS.KeyFile)
		})

	view := validation.NewConfigValidator("view").
		RangeInt("focus_radius", c.View.FocusRadius, focus.MinRadius, focus.MaxRadius).
		Custom("animation_speed_ms", func() error {
			_, err := animation.ParseSpeedMillis(c.View.AnimationSpeedMs)
			return err
		}).
		When(c.View.EdgeFilters != nil, func(v *validation.ConfigValidator) {
			v.NonNegativeFloat("edge_filters.min_weight", c.View.EdgeFilters.MinWeight)
		})

	return errors.Join(backend.Validate(), ds.Validate(), lg.Validate(), srv.Validate(), view.Validate())
}

// ParsedLevel returns the log level. Validate has already rejected bad names.
func (l LogConfig) ParsedLevel() logging.Level {
	lvl, _ := logging.ParseLevel(l.Level)
	return lvl
}

// Layout returns the default placement table extended by the configured positions.
func (v ViewConfig) Layout() viewmodel.Layout {
	return viewmodel.DefaultLayout().WithOverrides(v.Positions)
}
