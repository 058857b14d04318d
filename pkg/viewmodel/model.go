package viewmodel

import (
	"github.com/dd0wney/cluso-pathview/pkg/cluster"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/filter"
	"github.com/dd0wney/cluso-pathview/pkg/highlight"
)

// RenderNode is one node ready to draw
type RenderNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	HighValue   bool     `json:"highValue"`
	Highlighted bool     `json:"highlighted"`
	AnimActive  bool     `json:"animActive"`
	Dimmed      bool     `json:"dimmed"`
	IsCluster   bool     `json:"isCluster"`
	SubnetID    string   `json:"subnetId,omitempty"`
	MemberCount int      `json:"memberCount,omitempty"`
	Color       string   `json:"color,omitempty"`
	Position    Position `json:"position"`
}

// RenderEdge is one edge ready to draw
type RenderEdge struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Target      string    `json:"target"`
	Label       string    `json:"label"`
	Weight      float64   `json:"weight"`
	Highlighted bool      `json:"highlighted"`
	Removed     bool      `json:"removed"`
	AnimActive  bool      `json:"animActive"`
	Dimmed      bool      `json:"dimmed"`
	Style       EdgeStyle `json:"style"`
}

// Stats summarises a model for status bars
type Stats struct {
	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
	Highlighted int `json:"highlighted"`
	Clusters    int `json:"clusters"`
}

// Model is the complete render output of one pipeline run
type Model struct {
	Nodes     []RenderNode     `json:"nodes"`
	Edges     []RenderEdge     `json:"edges"`
	Highlight highlight.Source `json:"highlightSource"`
	Stats     Stats            `json:"stats"`
}

// Input is everything the pipeline reads. Focus, when non-nil and non-empty,
// replaces the full dataset as the filter input.
type Input struct {
	Nodes    []dataset.Node
	Edges    []dataset.Edge
	Subnets  []dataset.Subnet
	Focus    *dataset.GraphData
	Analysis *dataset.AnalysisResult

	NodeFilters filter.NodeFilters
	EdgeFilters filter.EdgeFilters

	ClusterView     bool
	ExpandedSubnets map[string]bool

	SelectedPathID  string
	AnimatingPathID string
	AnimationStep   int
	Scenario        *dataset.ScenarioHighlight

	Layout Layout
}

// Build runs focus selection, filtering, clustering and highlight resolution,
// then assembles render records. It is pure and always returns a model.
func Build(in Input) *Model {
	nodes, edges := in.Nodes, in.Edges
	if in.Focus != nil && len(in.Focus.Nodes) > 0 {
		nodes, edges = in.Focus.Nodes, in.Focus.Edges
	}

	filtered := filter.Evaluate(nodes, edges, in.NodeFilters, in.EdgeFilters, in.Analysis)

	var shaped cluster.Result
	if in.ClusterView {
		shaped = cluster.Aggregate(filtered.Nodes, filtered.Edges, in.Subnets, in.ExpandedSubnets)
	} else {
		shaped = cluster.Passthrough(filtered.Nodes, filtered.Edges)
	}

	hl := highlight.Resolve(highlight.Sources{
		SelectedPathID:  in.SelectedPathID,
		AnimatingPathID: in.AnimatingPathID,
		AnimationStep:   in.AnimationStep,
		Scenario:        in.Scenario,
		Analysis:        in.Analysis,
	})

	return Assemble(shaped, hl, in.Layout)
}

// Assemble turns shaped items and a resolved highlight into render records
func Assemble(shaped cluster.Result, hl highlight.Result, layout Layout) *Model {
	active := hl.Any()
	m := &Model{
		Nodes:     make([]RenderNode, 0, len(shaped.Items)),
		Edges:     make([]RenderEdge, 0, len(shaped.Links)),
		Highlight: hl.Source,
	}

	for _, it := range shaped.Items {
		rn := RenderNode{
			ID:          it.ID,
			Label:       it.Label,
			Type:        it.Type,
			HighValue:   it.HighValue,
			IsCluster:   it.IsCluster,
			SubnetID:    it.SubnetID,
			MemberCount: it.MemberCount,
		}
		if it.IsCluster {
			rn.Color = SubnetColor(it.SubnetID)
		} else {
			rn.Highlighted = active && hl.Nodes.Has(it.Name)
			rn.AnimActive = hl.ActiveNode != "" && it.Name == hl.ActiveNode
		}
		rn.Dimmed = active && !rn.Highlighted && !rn.AnimActive
		rn.Position, _ = layout.Place(it.ID)

		if rn.Highlighted {
			m.Stats.Highlighted++
		}
		if rn.IsCluster {
			m.Stats.Clusters++
		}
		m.Nodes = append(m.Nodes, rn)
	}

	for _, l := range shaped.Links {
		f := edgeFlags{
			highlighted: hl.Edges.Has(l.ID),
			removed:     hl.Removed.Has(l.ID),
			animating:   hl.ActiveEdge != "" && l.ID == hl.ActiveEdge,
			anyActive:   active,
		}
		m.Edges = append(m.Edges, RenderEdge{
			ID:          l.ID,
			Source:      l.Source,
			Target:      l.Target,
			Label:       l.Relation,
			Weight:      l.Weight,
			Highlighted: f.highlighted,
			Removed:     f.removed,
			AnimActive:  f.animating,
			Dimmed:      active && !f.highlighted && !f.removed,
			Style:       resolveEdgeStyle(l.Relation, f),
		})
	}

	m.Stats.Nodes = len(m.Nodes)
	m.Stats.Edges = len(m.Edges)
	return m
}

// Node returns the render node with the given id
func (m *Model) Node(id string) (RenderNode, bool) {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return RenderNode{}, false
}

// Edge returns the render edge with the given id
func (m *Model) Edge(id string) (RenderEdge, bool) {
	for _, e := range m.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return RenderEdge{}, false
}
