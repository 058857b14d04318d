package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/config"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
)

var errUsage = errors.New("usage")

const usage = `Usage: pathview [flags] <command> [args]

Commands:
  view                     Print the render model as JSON
  state                    Print the dashboard state as JSON
  analyze                  Run the attack path analysis and list paths
  scenario <id>            Run a built-in what-if scenario
  explain <pathId>         Print the narrative for a path
  neighbors <node> [r]     Print the focus neighborhood of a node
  presets                  List the built-in scenarios
  info                     Show the loaded dataset
  upload <file>            Replace the backend dataset
  reset                    Restore the reference dataset

Flags:
`

// CLI runs one command against a controller
type CLI struct {
	ctrl *controller.Controller
	out  io.Writer
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall command timeout")
	verbose := flag.Bool("v", false, "Log to stderr")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger logging.Logger = logging.NopLogger{}
	if *verbose {
		logger = logging.NewStderrLogger(cfg.Log.ParsedLevel())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend, err := cfg.OpenBackend(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to open backend: %v\n", err)
		os.Exit(1)
	}
	ctrl := controller.New(backend, cfg.ControllerOptions(logger))
	defer ctrl.Close()

	if err := cfg.ApplyView(ctx, ctrl); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cli := &CLI{ctrl: ctrl, out: os.Stdout}
	if err := cli.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "❌ %v\n\n", err)
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// Run dispatches a command. Commands that read the graph load it first.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "presets":
		return cli.presets()
	case "info":
		return cli.info(ctx)
	case "upload":
		if len(rest) != 1 {
			return fmt.Errorf("%w: upload <file>", errUsage)
		}
		return cli.upload(ctx, rest[0])
	case "reset":
		if err := cli.ctrl.ResetDataset(ctx); err != nil {
			return err
		}
		return cli.info(ctx)
	}

	if err := cli.ctrl.LoadGraph(ctx); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	switch cmd {
	case "view":
		return cli.printJSON(cli.ctrl.View())
	case "state":
		return cli.printJSON(cli.ctrl.Snapshot())
	case "analyze":
		return cli.analyze(ctx)
	case "scenario":
		if len(rest) != 1 {
			return fmt.Errorf("%w: scenario <id>", errUsage)
		}
		return cli.scenario(ctx, rest[0])
	case "explain":
		if len(rest) != 1 {
			return fmt.Errorf("%w: explain <pathId>", errUsage)
		}
		return cli.explain(ctx, rest[0])
	case "neighbors":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("%w: neighbors <node> [radius]", errUsage)
		}
		return cli.neighbors(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (cli *CLI) printJSON(v any) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *CLI) presets() error {
	for _, p := range scenario.Presets() {
		fmt.Fprintf(cli.out, "%s  %-9s  %s\n", p.ID, p.Category, p.Label)
		fmt.Fprintf(cli.out, "   %s\n", p.Desc)
	}
	return nil
}

func (cli *CLI) info(ctx context.Context) error {
	if err := cli.ctrl.RefreshDatasetInfo(ctx); err != nil {
		return err
	}
	info := cli.ctrl.Snapshot().DatasetInfo
	if info == nil {
		return errors.New("backend returned no dataset info")
	}
	fmt.Fprintf(cli.out, "Nodes:     %d\n", info.Nodes)
	fmt.Fprintf(cli.out, "Edges:     %d\n", info.Edges)
	fmt.Fprintf(cli.out, "Subnets:   %d\n", info.Subnets)
	fmt.Fprintf(cli.out, "Scenarios: %d\n", info.Scenarios)
	fmt.Fprintf(cli.out, "Start:     %s\n", strings.Join(info.StartOptions, ", "))
	return nil
}

func (cli *CLI) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := cli.ctrl.UploadDataset(ctx, filepath.Base(path), f); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "✅ Uploaded %s\n", filepath.Base(path))
	return cli.info(ctx)
}

func (cli *CLI) analyze(ctx context.Context) error {
	if err := cli.ctrl.RunAnalysis(ctx, nil, ""); err != nil {
		return err
	}
	a := cli.ctrl.Snapshot().Analysis
	fmt.Fprintf(cli.out, "Paths: %d  Global risk: %.1f  Shortest: %d hops\n\n", a.TotalPaths, a.GlobalRisk, a.ShortestHops)
	for _, p := range a.Paths {
		fmt.Fprintf(cli.out, "%-6s risk %-5.1f hops %d  %s\n", p.PathID, p.Risk, p.Hops, strings.Join(p.Nodes, " → "))
	}
	if len(a.CriticalEdges) > 0 {
		fmt.Fprintln(cli.out, "\nCritical edges:")
		for _, e := range a.CriticalEdges {
			fmt.Fprintf(cli.out, "  %s  %s -[%s]-> %s  (%.0f%% of paths)\n", e.EdgeID, e.Source, e.Relation, e.Target, e.PercentOfPaths)
		}
	}
	return nil
}

func (cli *CLI) scenario(ctx context.Context, id string) error {
	if err := cli.ctrl.RunPreset(ctx, id); err != nil {
		return err
	}
	st := cli.ctrl.Snapshot()
	sim := st.Scenario
	fmt.Fprintf(cli.out, "%s\n", st.ScenarioLabel)
	fmt.Fprintf(cli.out, "Paths: %d → %d (%s)\n", sim.Before.TotalPaths, sim.After.TotalPaths,
		scenario.DeltaLabel(sim.Before.TotalPaths, sim.After.TotalPaths))
	fmt.Fprintf(cli.out, "Risk:  %.1f → %.1f (%s)\n", sim.Before.GlobalRisk, sim.After.GlobalRisk,
		scenario.Trend(sim.Before.GlobalRisk, sim.After.GlobalRisk))
	if hl := st.ScenarioHighlight; hl != nil {
		fmt.Fprintf(cli.out, "Highlighted edges: %s\n", strings.Join(hl.EdgeIDs, ", "))
		if len(hl.RemovedEdgeIDs) > 0 {
			fmt.Fprintf(cli.out, "Removed edges:     %s\n", strings.Join(hl.RemovedEdgeIDs, ", "))
		}
	}
	return nil
}

func (cli *CLI) explain(ctx context.Context, pathID string) error {
	if err := cli.ctrl.RunAnalysis(ctx, nil, ""); err != nil {
		return err
	}
	if err := cli.ctrl.LoadExplanation(ctx, pathID); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.ctrl.Snapshot().Explanation)
	return nil
}

func (cli *CLI) neighbors(ctx context.Context, args []string) error {
	if len(args) == 2 {
		r, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: radius must be a number", errUsage)
		}
		if err := cli.ctrl.SetFocusRadius(ctx, r); err != nil {
			return err
		}
	}
	cli.ctrl.SetFocusNode(ctx, args[0])

	f := cli.ctrl.Snapshot().Focus
	if !f.Resolved || f.Nodes == 0 {
		return fmt.Errorf("no neighborhood for %q", args[0])
	}
	fmt.Fprintf(cli.out, "%s: %d nodes, %d edges within %d hops\n", f.Node, f.Nodes, f.Edges, f.Radius)
	for _, n := range cli.ctrl.View().Nodes {
		fmt.Fprintf(cli.out, "  %-20s %s\n", n.ID, n.Type)
	}
	return nil
}
