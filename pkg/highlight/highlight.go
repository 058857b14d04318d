package highlight

import (
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// Source names which input produced the highlight
type Source string

const (
	SourceNone      Source = "none"
	SourceScenario  Source = "scenario"
	SourceAnimation Source = "animation"
	SourceSelection Source = "selection"
)

// Set is a string set
type Set map[string]struct{}

// NewSet builds a set from items
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports membership. Safe on a nil set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sources are the competing inputs, checked in precedence order by Resolve
type Sources struct {
	SelectedPathID  string
	AnimatingPathID string
	AnimationStep   int
	Scenario        *dataset.ScenarioHighlight
	Analysis        *dataset.AnalysisResult
}

// Result holds the resolved emphasis sets. ActiveNode and ActiveEdge are empty
// unless the animation source won.
type Result struct {
	Source     Source
	Nodes      Set
	Edges      Set
	Removed    Set
	ActiveNode string
	ActiveEdge string
}

// Any reports whether any emphasis set is non-empty, which switches the
// renderer into dim-everything-else mode.
func (r Result) Any() bool {
	return len(r.Nodes) > 0 || len(r.Edges) > 0 || len(r.Removed) > 0
}

func none() Result {
	return Result{Source: SourceNone, Nodes: Set{}, Edges: Set{}, Removed: Set{}}
}

// Resolve picks exactly one highlight source: scenario, then animation, then
// selection. A missing analysis or unknown path id degrades to no highlight.
func Resolve(src Sources) Result {
	if sh := src.Scenario; sh != nil {
		return Result{
			Source:  SourceScenario,
			Nodes:   NewSet(sh.NodeNames...),
			Edges:   NewSet(sh.EdgeIDs...),
			Removed: NewSet(sh.RemovedEdgeIDs...),
		}
	}

	if src.AnimatingPathID != "" && src.AnimationStep >= 0 {
		if p, ok := src.Analysis.FindPath(src.AnimatingPathID); ok {
			return animated(p, src.AnimationStep)
		}
	}

	if p, ok := src.Analysis.FindPath(src.SelectedPathID); ok {
		res := none()
		res.Source = SourceSelection
		res.Nodes = NewSet(p.Nodes...)
		res.Edges = NewSet(p.EdgeIDs()...)
		return res
	}

	return none()
}

func animated(p *dataset.PathInfo, step int) Result {
	res := none()
	res.Source = SourceAnimation
	for i := 0; i <= step && i < len(p.Nodes); i++ {
		res.Nodes[p.Nodes[i]] = struct{}{}
	}
	for i := 0; i < step && i < len(p.Edges); i++ {
		res.Edges[p.Edges[i].EdgeID] = struct{}{}
	}
	if step < len(p.Nodes) {
		res.ActiveNode = p.Nodes[step]
	}
	if step > 0 && step-1 < len(p.Edges) {
		res.ActiveEdge = p.Edges[step-1].EdgeID
	}
	return res
}
