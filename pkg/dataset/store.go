package dataset

import (
	"sync/atomic"
)

// Snapshot is an immutable view of the loaded dataset and the live analysis results.
// Callers must not mutate the slices it holds; replace the snapshot instead.
type Snapshot struct {
	Version      uint64
	Nodes        []Node
	Edges        []Edge
	Subnets      []Subnet
	StartOptions []string

	Analysis  *AnalysisResult
	Scenario  *SimulateResult
	Highlight *ScenarioHighlight
}

// Loaded reports whether a graph has been loaded
func (s *Snapshot) Loaded() bool {
	return s != nil && len(s.Nodes) > 0
}

// NodeByName returns the node with the given name
func (s *Snapshot) NodeByName(name string) (Node, error) {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n, nil
		}
	}
	return Node{}, OpError("lookup", "node", name, ErrNodeNotFound)
}

// Store holds the current Snapshot. Replacement is wholesale and atomic;
// readers always see either the old or the new snapshot, never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Current returns the live snapshot
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// ReplaceGraph swaps in a new graph. Analysis and scenario results refer to the
// old graph and are dropped along with it.
func (s *Store) ReplaceGraph(data GraphData, subnets []Subnet, startOptions []string) *Snapshot {
	return s.update(func(next *Snapshot) {
		next.Nodes = data.Nodes
		next.Edges = data.Edges
		next.Subnets = subnets
		next.StartOptions = startOptions
		next.Analysis = nil
		next.Scenario = nil
		next.Highlight = nil
	})
}

// SetAnalysis replaces the live analysis result and clears the scenario highlight
func (s *Store) SetAnalysis(result *AnalysisResult) *Snapshot {
	return s.update(func(next *Snapshot) {
		next.Analysis = result
		next.Highlight = nil
	})
}

// SetScenario replaces analysis, simulation diff and scenario highlight together
func (s *Store) SetScenario(before *AnalysisResult, sim *SimulateResult, highlight *ScenarioHighlight) *Snapshot {
	return s.update(func(next *Snapshot) {
		next.Analysis = before
		next.Scenario = sim
		next.Highlight = highlight
	})
}

// ClearResults drops analysis, scenario and highlight
func (s *Store) ClearResults() *Snapshot {
	return s.update(func(next *Snapshot) {
		next.Analysis = nil
		next.Scenario = nil
		next.Highlight = nil
	})
}

// ClearHighlight drops only the scenario highlight
func (s *Store) ClearHighlight() *Snapshot {
	return s.update(func(next *Snapshot) {
		next.Highlight = nil
	})
}

func (s *Store) update(fn func(next *Snapshot)) *Snapshot {
	for {
		prev := s.current.Load()
		next := *prev
		next.Version = prev.Version + 1
		fn(&next)
		if s.current.CompareAndSwap(prev, &next) {
			return &next
		}
	}
}
