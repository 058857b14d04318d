package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dd0wney/cluso-pathview/pkg/config"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	logFile := flag.String("log", "", "Write component logs to this file (default: discard)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	var logger logging.Logger = logging.NopLogger{}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = logging.NewJSONLogger(f, cfg.Log.ParsedLevel())
	}

	ctx := context.Background()
	backend, err := cfg.OpenBackend(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening backend: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.ControllerOptions(logger)
	opts.Metrics = metrics.NewRegistry()
	ctrl := controller.New(backend, opts)
	defer ctrl.Close()

	if err := cfg.ApplyView(ctx, ctrl); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying view settings: %v\n", err)
		os.Exit(1)
	}

	m, err := initialModel(ctx, ctrl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error subscribing to changes: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
