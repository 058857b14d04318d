package controller

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"golang.org/x/sync/errgroup"
)

type graphBundle struct {
	data         dataset.GraphData
	subnets      []dataset.Subnet
	startOptions []string
}

// fetchGraph loads graph, subnets and start options concurrently
func (c *Controller) fetchGraph(ctx context.Context) (graphBundle, error) {
	var b graphBundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := c.backend.Load(gctx)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		b.data = data
		return nil
	})
	g.Go(func() error {
		subnets, err := c.backend.Subnets(gctx)
		if err != nil {
			return fmt.Errorf("load subnets: %w", err)
		}
		b.subnets = subnets
		return nil
	})
	g.Go(func() error {
		opts, err := c.backend.StartOptions(gctx)
		if err != nil {
			return fmt.Errorf("load start options: %w", err)
		}
		b.startOptions = opts
		return nil
	})
	if err := g.Wait(); err != nil {
		return graphBundle{}, err
	}
	return b, nil
}

// applyGraphLocked swaps in a freshly loaded graph. Results, selection and any
// in-flight analysis refer to the old graph and are dropped.
func (c *Controller) applyGraphLocked(b graphBundle) *dataset.Snapshot {
	snap := c.store.ReplaceGraph(b.data, b.subnets, b.startOptions)
	c.supersedeLocked(slotAnalysis)
	c.supersedeLocked(slotScenario)
	c.selectedPathID = ""
	c.scenarioLabel = ""
	c.expanded = make(map[string]bool)
	if c.metrics != nil {
		c.metrics.RecordDataset(len(snap.Nodes), len(snap.Edges), snap.Version)
	}
	return snap
}

// resetFocus drops a neighborhood computed against the previous graph
func (c *Controller) resetFocus() {
	if c.focus.State().Active() {
		c.focus.Reset()
	}
}

// LoadGraph fetches the dataset. On failure the error banner is set and the
// previous dataset is kept.
func (c *Controller) LoadGraph(ctx context.Context) error {
	c.mu.Lock()
	seq := c.beginLocked(slotGraph)
	c.mu.Unlock()
	finish := c.request(slotGraph)

	b, err := c.fetchGraph(ctx)

	c.mu.Lock()
	if !c.settleLocked(slotGraph, seq) {
		c.mu.Unlock()
		c.stale(slotGraph, seq, finish)
		return nil
	}
	if err != nil {
		return c.failUnlock(slotGraph, err, finish)
	}
	snap := c.applyGraphLocked(b)
	c.mu.Unlock()
	finish(metrics.StatusOK)

	c.anim.Stop()
	c.resetFocus()
	c.logger.Info("graph loaded",
		logging.Int("nodes", len(snap.Nodes)),
		logging.Int("edges", len(snap.Edges)),
		logging.Uint64("version", snap.Version))
	c.publish(ReasonGraph)
	return nil
}

// RunAnalysis runs an analysis from startNodes to target. Empty startNodes use
// the first start options; an empty target uses the default. The previous
// result stays visible until the new one arrives and is kept on failure.
func (c *Controller) RunAnalysis(ctx context.Context, startNodes []string, target string) error {
	c.mu.Lock()
	if len(startNodes) == 0 {
		startNodes = c.startNodesLocked()
	}
	params := dataset.DefaultAnalysisParams(startNodes)
	if target != "" {
		params.TargetNode = target
	}
	seq := c.beginLocked(slotAnalysis)
	c.supersedeLocked(slotScenario)
	c.errMsg = ""
	c.mu.Unlock()

	c.anim.Stop()
	c.publish(ReasonLoading)
	finish := c.request(slotAnalysis)
	start := time.Now()

	result, err := c.backend.Run(ctx, params)

	c.mu.Lock()
	if !c.settleLocked(slotAnalysis, seq) {
		c.mu.Unlock()
		c.stale(slotAnalysis, seq, finish)
		return nil
	}
	if err != nil {
		return c.failUnlock(slotAnalysis, err, finish)
	}
	c.store.SetScenario(result, nil, nil)
	c.selectedPathID = ""
	c.scenarioLabel = ""
	c.mu.Unlock()
	finish(metrics.StatusOK)

	c.logger.Info("analysis complete",
		logging.Count(len(result.Paths)),
		logging.Float64("global_risk", result.GlobalRisk),
		logging.Latency(time.Since(start)))
	c.publish(ReasonAnalysis)
	return nil
}

// SelectPath selects a path for inspection, clearing any scenario highlight.
// An empty id clears the selection.
func (c *Controller) SelectPath(pathID string) {
	c.mu.Lock()
	c.selectedPathID = pathID
	c.store.ClearHighlight()
	c.mu.Unlock()
	c.publish(ReasonSelection)
}

// RunScenario evaluates a what-if scenario: a baseline analysis, the
// simulation, and for offensive scenarios a re-run whose top path is
// highlighted. Any failure leaves the previous results in place.
func (c *Controller) RunScenario(ctx context.Context, id, label string, mutations []scenario.Mutation) error {
	c.mu.Lock()
	params := dataset.DefaultAnalysisParams(c.startNodesLocked())
	seq := c.beginLocked(slotScenario)
	c.supersedeLocked(slotAnalysis)
	c.errMsg = ""
	c.selectedPathID = ""
	c.mu.Unlock()

	c.anim.Stop()
	c.publish(ReasonLoading)
	finish := c.request(slotScenario)
	log := c.logger.With(logging.ScenarioID(id), logging.Seq(seq))

	before, sim, after, err := c.evaluate(ctx, id, mutations, params)

	c.mu.Lock()
	if !c.settleLocked(slotScenario, seq) {
		c.mu.Unlock()
		c.stale(slotScenario, seq, finish)
		return nil
	}
	if err != nil {
		return c.failUnlock(slotScenario, err, finish)
	}
	hl := scenario.DeriveHighlight(id, mutations, before, after, sim)
	c.store.SetScenario(before, sim, hl)
	c.scenarioLabel = label
	c.mu.Unlock()
	finish(metrics.StatusOK)

	log.Info("scenario complete",
		logging.Int("paths_before", sim.Before.TotalPaths),
		logging.Int("paths_after", sim.After.TotalPaths),
		logging.Float64("risk_reduction_pct", sim.Delta.RiskReductionPercent))
	c.publish(ReasonScenario)
	return nil
}

// RunPreset runs a built-in scenario by id
func (c *Controller) RunPreset(ctx context.Context, id string) error {
	p, err := scenario.Find(scenario.Presets(), id)
	if err != nil {
		return err
	}
	return c.RunScenario(ctx, p.ID, p.Label, p.Mutations)
}

// evaluate issues the scenario's backend calls in sequence
func (c *Controller) evaluate(ctx context.Context, id string, mutations []scenario.Mutation, params dataset.AnalysisParams) (before *dataset.AnalysisResult, sim *dataset.SimulateResult, after *dataset.AnalysisResult, err error) {
	before, err = c.backend.Run(ctx, params)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("baseline analysis: %w", err)
	}
	sim, err = c.backend.Simulate(ctx, id, mutations, params)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("simulate %s: %w", id, err)
	}
	if sim == nil {
		sim = &dataset.SimulateResult{}
	}
	if scenario.IsOffensive(mutations) {
		after, err = c.backend.Run(ctx, params)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("post-scenario analysis: %w", err)
		}
	}
	return before, sim, after, nil
}

// LoadExplanation fetches the narrative for a path and opens the modal. On
// failure the banner is set and the modal stays closed.
func (c *Controller) LoadExplanation(ctx context.Context, pathID string) error {
	c.mu.Lock()
	seq := c.beginLocked(slotExplanation)
	c.mu.Unlock()
	finish := c.request(slotExplanation)

	text, err := c.backend.Explain(ctx, pathID)

	c.mu.Lock()
	if !c.settleLocked(slotExplanation, seq) {
		c.mu.Unlock()
		c.stale(slotExplanation, seq, finish)
		return nil
	}
	if err != nil {
		c.explanation = ""
		c.showExplanation = false
		return c.failUnlock(slotExplanation, err, finish)
	}
	c.explanation = text
	c.showExplanation = true
	c.mu.Unlock()
	finish(metrics.StatusOK)

	c.publish(ReasonExplanation)
	return nil
}

// CloseExplanation closes the modal and drops any explanation still in flight
func (c *Controller) CloseExplanation() {
	c.mu.Lock()
	c.explanation = ""
	c.showExplanation = false
	c.supersedeLocked(slotExplanation)
	c.mu.Unlock()
	c.publish(ReasonExplanation)
}

// UploadDataset replaces the backend dataset with the contents of r and
// reloads the graph
func (c *Controller) UploadDataset(ctx context.Context, filename string, r io.Reader) error {
	return c.replaceDataset(ctx, func(ctx context.Context) (dataset.DatasetInfo, error) {
		return c.backend.Upload(ctx, filename, r)
	})
}

// ResetDataset restores the backend's bundled dataset and reloads the graph
func (c *Controller) ResetDataset(ctx context.Context) error {
	return c.replaceDataset(ctx, c.backend.Reset)
}

func (c *Controller) replaceDataset(ctx context.Context, call func(context.Context) (dataset.DatasetInfo, error)) error {
	c.mu.Lock()
	seq := c.beginLocked(slotDataset)
	c.supersedeLocked(slotGraph)
	c.supersedeLocked(slotAnalysis)
	c.supersedeLocked(slotScenario)
	c.errMsg = ""
	c.selectedPathID = ""
	c.scenarioLabel = ""
	c.store.ClearResults()
	c.mu.Unlock()

	c.anim.Stop()
	c.publish(ReasonDataset)
	finish := c.request(slotDataset)

	info, err := call(ctx)
	var b graphBundle
	if err == nil {
		b, err = c.fetchGraph(ctx)
	}

	c.mu.Lock()
	if !c.settleLocked(slotDataset, seq) {
		c.mu.Unlock()
		c.stale(slotDataset, seq, finish)
		return nil
	}
	if err != nil {
		return c.failUnlock(slotDataset, err, finish)
	}
	c.supersedeLocked(slotGraph)
	snap := c.applyGraphLocked(b)
	c.datasetInfo = &info
	c.mu.Unlock()
	finish(metrics.StatusOK)

	c.resetFocus()
	c.logger.Info("dataset replaced",
		logging.String("status", info.Status),
		logging.Int("nodes", len(snap.Nodes)),
		logging.Int("edges", len(snap.Edges)))
	c.publish(ReasonDataset)
	return nil
}

// RefreshDatasetInfo fetches the backend's description of the loaded dataset
func (c *Controller) RefreshDatasetInfo(ctx context.Context) error {
	info, err := c.backend.Info(ctx)
	c.mu.Lock()
	if err != nil {
		return c.failUnlock(slotDataset, err, func(string) {})
	}
	c.datasetInfo = &info
	c.mu.Unlock()
	c.publish(ReasonDataset)
	return nil
}
