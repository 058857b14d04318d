package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/config"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
	tlsconf "github.com/dd0wney/cluso-pathview/pkg/tls"
	"github.com/dd0wney/cluso-pathview/pkg/viewapi"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	compLogger := logging.NewStderrLogger(cfg.Log.ParsedLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("pathview server starting",
		"backend_mode", cfg.Backend.Mode,
		"listen", cfg.Server.Listen,
	)

	backend, err := cfg.OpenBackend(ctx, compLogger)
	if err != nil {
		logger.Error("failed to open backend", "error", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()
	opts := cfg.ControllerOptions(compLogger)
	opts.Metrics = reg
	ctrl := controller.New(backend, opts)
	defer ctrl.Close()

	if err := cfg.ApplyView(ctx, ctrl); err != nil {
		logger.Warn("view defaults rejected", "error", err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := ctrl.LoadGraph(loadCtx); err != nil {
		// The dashboard still serves; the banner shows the failure.
		logger.Warn("initial graph load failed", "error", err)
	} else {
		st := ctrl.Snapshot()
		logger.Info("graph loaded",
			"dataset_version", st.DatasetVersion,
			"start_options", len(st.StartOptions),
		)
	}
	cancel()

	srv, err := viewapi.New(ctrl, viewapi.Options{Logger: compLogger, Metrics: reg})
	if err != nil {
		logger.Error("failed to create view API", "error", err)
		os.Exit(1)
	}

	gs := viewapi.NewGracefulServer(cfg.Server.Listen, srv.Handler(), cfg.Server.ShutdownTimeout, compLogger)
	tlsConfig, err := tlsconf.LoadTLSConfig(cfg.Server.TLS)
	if err != nil {
		logger.Error("failed to load TLS config", "error", err)
		os.Exit(1)
	}
	if tlsConfig != nil {
		gs.SetTLSConfig(tlsConfig)
		if cfg.Server.TLS.CertFile != "" {
			if info, err := tlsconf.GetCertificateInfo(cfg.Server.TLS.CertFile); err == nil {
				logger.Info("TLS enabled", "subject", info.Subject, "expires_in", info.ExpiresIn().Round(time.Hour).String())
			}
		}
	}
	gs.OnShutdown(srv.Close)
	gs.SetReloadFunc(func(ctx context.Context) error {
		return ctrl.LoadGraph(ctx)
	})

	if err := gs.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
