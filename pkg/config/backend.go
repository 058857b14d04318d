package config

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/client"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/localgraph"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
)

// OpenBackend builds the backend selected by Backend.Mode
func (c *Config) OpenBackend(ctx context.Context, logger logging.Logger) (controller.Backend, error) {
	switch c.Backend.Mode {
	case ModeLocal:
		svc, err := localgraph.Open(ctx, c.Dataset.URI, c.Dataset.S3, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil

	case ModeHTTP, "":
		var signer *client.TokenSigner
		if c.Backend.JWTSecret != "" {
			s, err := client.NewTokenSigner(c.Backend.JWTSecret, c.Backend.JWTSubject, 0)
			if err != nil {
				return nil, err
			}
			signer = s
		}
		return client.New(client.Options{
			BaseURL: c.Backend.URL,
			Timeout: c.Backend.Timeout,
			Signer:  signer,
			Logger:  logger,
		}), nil
	}
	return nil, fmt.Errorf("unknown backend mode %q", c.Backend.Mode)
}

// ControllerOptions maps the view settings onto controller options
func (c *Config) ControllerOptions(logger logging.Logger) controller.Options {
	layout := c.View.Layout()
	return controller.Options{
		Logger:      logger,
		Layout:      &layout,
		NodeFilters: c.View.NodeFilters,
		EdgeFilters: c.View.EdgeFilters,
	}
}

// ApplyView seeds the focus radius and animation speed on a new controller
func (c *Config) ApplyView(ctx context.Context, ctrl *controller.Controller) error {
	if err := ctrl.SetFocusRadius(ctx, c.View.FocusRadius); err != nil {
		return fmt.Errorf("focus_radius: %w", err)
	}
	if err := ctrl.SetAnimationSpeed(c.View.AnimationSpeedMs); err != nil {
		return fmt.Errorf("animation_speed_ms: %w", err)
	}
	return nil
}
