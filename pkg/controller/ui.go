package controller

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/animation"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// ToggleClusterView flips cluster view and collapses every subnet
func (c *Controller) ToggleClusterView() {
	c.mu.Lock()
	c.clusterView = !c.clusterView
	c.expanded = make(map[string]bool)
	c.mu.Unlock()
	c.publish(ReasonCluster)
}

// ToggleSubnet expands a collapsed subnet or collapses an expanded one
func (c *Controller) ToggleSubnet(subnetID string) {
	c.mu.Lock()
	if c.expanded[subnetID] {
		delete(c.expanded, subnetID)
	} else {
		c.expanded[subnetID] = true
	}
	c.mu.Unlock()
	c.publish(ReasonCluster)
}

// SetNodeFilters merges a partial update into the node filters
func (c *Controller) SetNodeFilters(p NodeFilterPatch) {
	c.mu.Lock()
	c.nodeFilters = p.apply(c.nodeFilters)
	c.mu.Unlock()
	c.publish(ReasonFilters)
}

// SetEdgeFilters merges a partial update into the edge filters
func (c *Controller) SetEdgeFilters(p EdgeFilterPatch) error {
	if p.MinWeight != nil && *p.MinWeight < 0 {
		return fmt.Errorf("min weight %v: must not be negative", *p.MinWeight)
	}
	c.mu.Lock()
	c.edgeFilters = p.apply(c.edgeFilters)
	c.mu.Unlock()
	c.publish(ReasonFilters)
	return nil
}

// ToggleEdgeType adds or removes one relation from the edge whitelist
func (c *Controller) ToggleEdgeType(relation string) {
	c.mu.Lock()
	c.edgeFilters = c.edgeFilters.Toggle(relation)
	c.mu.Unlock()
	c.publish(ReasonFilters)
}

// ResetFilters restores the configured default node and edge filters
func (c *Controller) ResetFilters() {
	c.mu.Lock()
	c.nodeFilters = c.defaultNodeFilters
	c.edgeFilters = c.defaultEdgeFilters
	c.mu.Unlock()
	c.publish(ReasonFilters)
}

// SetFocusNode focuses the view on a node's neighborhood, blocking until the
// neighbor query settles. An empty name clears focus. Query failures are silent.
func (c *Controller) SetFocusNode(ctx context.Context, name string) {
	c.focus.SetFocus(ctx, name)
}

// SetFocusRadius changes the neighborhood radius and re-queries the focus node
func (c *Controller) SetFocusRadius(ctx context.Context, radius int) error {
	return c.focus.SetRadius(ctx, radius)
}

// StartAnimation plays a path of the live analysis from its first node
func (c *Controller) StartAnimation(pathID string) error {
	p, ok := c.store.Current().Analysis.FindPath(pathID)
	if !ok {
		return dataset.OpError("animate", "path", pathID, dataset.ErrPathNotFound)
	}
	return c.anim.Start(pathID, len(p.Nodes))
}

// StopAnimation ends playback and clears the animated path
func (c *Controller) StopAnimation() {
	c.anim.Stop()
}

// PauseAnimation halts playback on the current step
func (c *Controller) PauseAnimation() {
	c.anim.Pause()
}

// ResumeAnimation continues playback
func (c *Controller) ResumeAnimation() error {
	return c.anim.Resume()
}

// ReplayAnimation restarts the animated path from the first node
func (c *Controller) ReplayAnimation() error {
	return c.anim.Replay()
}

// SetAnimationStep jumps to a step, clamped to the path
func (c *Controller) SetAnimationStep(step int) error {
	return c.anim.SetStep(step)
}

// SetAnimationSpeed sets the per-step delay in milliseconds (2000, 1000, 500 or 250)
func (c *Controller) SetAnimationSpeed(ms int) error {
	sp, err := animation.ParseSpeedMillis(ms)
	if err != nil {
		return err
	}
	return c.anim.SetSpeed(sp)
}

// ClearError dismisses the error banner
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
	c.publish(ReasonError)
}
