package viewmodel

import (
	"testing"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/filter"
	"github.com/dd0wney/cluso-pathview/pkg/highlight"
)

func baseInput() Input {
	return Input{
		Nodes: []dataset.Node{
			{Name: "A", Type: dataset.TypeUser, Subnet: "s1"},
			{Name: "B", Type: dataset.TypeGroup, Subnet: "s1"},
			{Name: "C", Type: dataset.TypeServer, HighValue: true},
		},
		Edges: []dataset.Edge{
			{ID: "e1", Source: "A", Target: "B", Relation: "MemberOf", Weight: 1},
			{ID: "e2", Source: "B", Target: "C", Relation: "AdminTo", Weight: 5},
		},
		Subnets:     []dataset.Subnet{{ID: "s1", Label: "Corp"}},
		NodeFilters: filter.DefaultNodeFilters(),
		EdgeFilters: filter.DefaultEdgeFilters(),
		Analysis: &dataset.AnalysisResult{Paths: []dataset.PathInfo{{
			PathID: "P1",
			Nodes:  []string{"A", "B", "C"},
			Edges:  []dataset.PathEdge{{EdgeID: "e1"}, {EdgeID: "e2"}},
		}}},
		AnimationStep: -1,
		Layout:        DefaultLayout(),
	}
}

func TestBuild_NoHighlight(t *testing.T) {
	m := Build(baseInput())

	if m.Stats.Nodes != 3 || m.Stats.Edges != 2 {
		t.Fatalf("Expected 3 nodes 2 edges, got %+v", m.Stats)
	}
	if m.Highlight != highlight.SourceNone {
		t.Errorf("Expected no highlight, got %s", m.Highlight)
	}
	for _, n := range m.Nodes {
		if n.Highlighted || n.Dimmed || n.AnimActive {
			t.Errorf("Node %s should be plain, got %+v", n.ID, n)
		}
	}
	e, _ := m.Edge("e2")
	if e.Style.Stroke != "#ef4444" || e.Style.Opacity != 1 || e.Style.StrokeWidth != 2.5 {
		t.Errorf("Expected default AdminTo style, got %+v", e.Style)
	}
}

func TestBuild_ClusterScenario(t *testing.T) {
	in := baseInput()
	in.Edges = []dataset.Edge{
		{ID: "e1", Source: "A", Target: "B", Relation: "MemberOf", Weight: 1},
		{ID: "e2", Source: "A", Target: "C", Relation: "AdminTo", Weight: 5},
	}
	in.Analysis = nil
	in.ClusterView = true

	m := Build(in)
	if len(m.Nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %+v", m.Nodes)
	}
	c, ok := m.Node("cluster-s1")
	if !ok {
		t.Fatal("Expected cluster-s1 in model")
	}
	if c.Label != "Corp (2)" || c.Type != dataset.TypeSubnet || !c.IsCluster {
		t.Errorf("Unexpected cluster node %+v", c)
	}
	if c.Position != in.Layout.Fallback {
		t.Errorf("Cluster node should use fallback position, got %+v", c.Position)
	}
	if len(m.Edges) != 1 || m.Edges[0].Source != "cluster-s1" || m.Edges[0].Target != "C" || m.Edges[0].Label != "AdminTo" {
		t.Errorf("Expected single cluster-s1 -> C AdminTo edge, got %+v", m.Edges)
	}
	if m.Stats.Clusters != 1 {
		t.Errorf("Expected 1 cluster, got %d", m.Stats.Clusters)
	}
}

func TestBuild_AnimationEmphasis(t *testing.T) {
	in := baseInput()
	in.AnimatingPathID = "P1"
	in.AnimationStep = 1

	m := Build(in)
	if m.Highlight != highlight.SourceAnimation {
		t.Fatalf("Expected animation source, got %s", m.Highlight)
	}

	b, _ := m.Node("B")
	if !b.Highlighted || !b.AnimActive || b.Dimmed {
		t.Errorf("B should be the active highlighted node, got %+v", b)
	}
	c, _ := m.Node("C")
	if c.Highlighted || !c.Dimmed {
		t.Errorf("C should be dimmed, got %+v", c)
	}

	e1, _ := m.Edge("e1")
	if !e1.AnimActive || e1.Style.Stroke != ColorAnimating || e1.Style.StrokeWidth != 5 || !e1.Style.Animated {
		t.Errorf("e1 should be animating, got %+v", e1)
	}
	e2, _ := m.Edge("e2")
	if e2.Style.Opacity != DimmedOpacity || !e2.Dimmed {
		t.Errorf("e2 should be dimmed, got %+v", e2)
	}
	if m.Stats.Highlighted != 2 {
		t.Errorf("Expected 2 highlighted nodes, got %d", m.Stats.Highlighted)
	}
}

func TestBuild_ScenarioRemovedEdge(t *testing.T) {
	in := baseInput()
	in.Scenario = &dataset.ScenarioHighlight{ScenarioID: "D", RemovedEdgeIDs: []string{"e2"}}
	in.AnimatingPathID = "P1"
	in.AnimationStep = 2

	m := Build(in)
	if m.Highlight != highlight.SourceScenario {
		t.Fatalf("Expected scenario source, got %s", m.Highlight)
	}
	e2, _ := m.Edge("e2")
	if !e2.Removed || e2.Style.Stroke != ColorRemoved || e2.Style.Dashed != RemovedDash || e2.Style.Opacity != 1 {
		t.Errorf("e2 should be styled removed, got %+v", e2)
	}
	for _, n := range m.Nodes {
		if n.AnimActive {
			t.Errorf("Scenario must suppress animation emphasis, %s is active", n.ID)
		}
	}
}

func TestBuild_FocusReplacesInput(t *testing.T) {
	in := baseInput()
	in.Focus = &dataset.GraphData{
		Nodes: []dataset.Node{{Name: "B"}, {Name: "C"}},
		Edges: []dataset.Edge{{ID: "e2", Source: "B", Target: "C", Relation: "AdminTo", Weight: 5}},
	}

	m := Build(in)
	if len(m.Nodes) != 2 || len(m.Edges) != 1 {
		t.Errorf("Expected focus set of 2 nodes 1 edge, got %d/%d", len(m.Nodes), len(m.Edges))
	}

	in.Focus = &dataset.GraphData{}
	m = Build(in)
	if len(m.Nodes) != 3 {
		t.Errorf("Empty focus result should fall back to the full dataset, got %d nodes", len(m.Nodes))
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	m := Build(Input{AnimationStep: -1})
	if m == nil || len(m.Nodes) != 0 || len(m.Edges) != 0 {
		t.Errorf("Expected empty model, got %+v", m)
	}
}

func TestResolveEdgeStyle_Priority(t *testing.T) {
	tests := []struct {
		name    string
		flags   edgeFlags
		stroke  string
		width   float64
		opacity float64
		marker  string
	}{
		{"plain", edgeFlags{}, "#10b981", 2.5, 1, "#10b981"},
		{"dimmed", edgeFlags{anyActive: true}, "#10b981", 2.5, DimmedOpacity, "#10b981"},
		{"highlighted", edgeFlags{highlighted: true, anyActive: true}, ColorHighlighted, 4, 1, ColorHighlighted},
		{"animating", edgeFlags{animating: true, highlighted: true, anyActive: true}, ColorAnimating, 5, 1, ColorHighlighted},
		{"removed", edgeFlags{removed: true, anyActive: true}, ColorRemoved, 3, 1, ColorRemoved},
		{"removed beats animating", edgeFlags{removed: true, animating: true, anyActive: true}, ColorRemoved, 5, 1, ColorRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveEdgeStyle("MemberOf", tt.flags)
			if s.Stroke != tt.stroke {
				t.Errorf("Expected stroke %s, got %s", tt.stroke, s.Stroke)
			}
			if s.StrokeWidth != tt.width {
				t.Errorf("Expected width %v, got %v", tt.width, s.StrokeWidth)
			}
			if s.Opacity != tt.opacity {
				t.Errorf("Expected opacity %v, got %v", tt.opacity, s.Opacity)
			}
			if s.MarkerColor != tt.marker {
				t.Errorf("Expected marker %s, got %s", tt.marker, s.MarkerColor)
			}
		})
	}
}

func TestEdgeColor(t *testing.T) {
	if EdgeColor("WriteDacl") != EdgeColor("WriteDACL") {
		t.Error("WriteDacl spellings should share a colour")
	}
	if EdgeColor("Unknown") != ColorDefaultEdge {
		t.Errorf("Expected default colour, got %s", EdgeColor("Unknown"))
	}
	if SubnetColor("subnet-2") != "#059669" {
		t.Errorf("Unexpected subnet-2 colour %s", SubnetColor("subnet-2"))
	}
}

func TestLayout_Place(t *testing.T) {
	l := DefaultLayout()

	p, ok := l.Place("DC01")
	if !ok {
		t.Fatal("DC01 should be in the table")
	}
	if p.X != 750-95 || p.Y != 80-39 {
		t.Errorf("Expected centre minus half extents, got %+v", p)
	}

	p, ok = l.Place("cluster-subnet-1")
	if ok || p != (Position{X: 1300, Y: 500}) {
		t.Errorf("Expected fallback for cluster id, got %+v", p)
	}

	for name := range l.Centers {
		if p, _ := l.Place(name); p == l.Fallback {
			t.Errorf("%s collides with the fallback position", name)
		}
	}
}

func TestLayout_WithOverrides(t *testing.T) {
	base := DefaultLayout()
	l := base.WithOverrides(map[string]Position{"NewHost": {X: 100, Y: 100}, "DC01": {X: 0, Y: 0}})

	if _, ok := l.Place("NewHost"); !ok {
		t.Error("Override should add NewHost")
	}
	if p, _ := l.Place("DC01"); p.X != -95 {
		t.Errorf("Override should replace DC01, got %+v", p)
	}
	if p, _ := base.Place("DC01"); p.X != 655 {
		t.Errorf("Base layout must be untouched, got %+v", p)
	}
}
