package controller

import (
	"sort"

	"github.com/dd0wney/cluso-pathview/pkg/animation"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/filter"
	"github.com/dd0wney/cluso-pathview/pkg/focus"
)

// Reason names the action behind a Change
type Reason string

const (
	ReasonGraph       Reason = "graph"
	ReasonAnalysis    Reason = "analysis"
	ReasonSelection   Reason = "selection"
	ReasonScenario    Reason = "scenario"
	ReasonExplanation Reason = "explanation"
	ReasonDataset     Reason = "dataset"
	ReasonCluster     Reason = "cluster"
	ReasonFilters     Reason = "filters"
	ReasonFocus       Reason = "focus"
	ReasonAnimation   Reason = "animation"
	ReasonLoading     Reason = "loading"
	ReasonError       Reason = "error"
)

// Change is published after every applied state change
type Change struct {
	Seq    uint64 `json:"seq"`
	ID     string `json:"id"`
	Reason Reason `json:"reason"`
}

// State is a read-only copy of everything the dashboard shows. Slices and maps
// are owned by the copy; dataset slices are shared with the immutable snapshot.
type State struct {
	Dataset *dataset.Snapshot `json:"-"`

	DatasetVersion uint64   `json:"datasetVersion"`
	StartOptions   []string `json:"startOptions"`

	Analysis       *dataset.AnalysisResult `json:"analysis,omitempty"`
	SelectedPathID string                  `json:"selectedPathId,omitempty"`

	Scenario          *dataset.SimulateResult    `json:"scenario,omitempty"`
	ScenarioLabel     string                     `json:"scenarioLabel,omitempty"`
	ScenarioHighlight *dataset.ScenarioHighlight `json:"scenarioHighlight,omitempty"`

	Explanation     string `json:"explanation,omitempty"`
	ShowExplanation bool   `json:"showExplanation"`

	Loading          bool                 `json:"loading"`
	DatasetUploading bool                 `json:"datasetUploading"`
	DatasetInfo      *dataset.DatasetInfo `json:"datasetInfo,omitempty"`
	Error            string               `json:"error,omitempty"`

	ClusterView     bool            `json:"clusterView"`
	ExpandedSubnets map[string]bool `json:"-"`

	NodeFilters filter.NodeFilters `json:"nodeFilters"`
	EdgeFilters filter.EdgeFilters `json:"edgeFilters"`

	Focus     focus.State        `json:"focus"`
	Animation animation.Snapshot `json:"animation"`
}

// Expanded returns the expanded subnet ids in sorted order
func (s State) Expanded() []string {
	ids := make([]string, 0, len(s.ExpandedSubnets))
	for id, ok := range s.ExpandedSubnets {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// NodeFilterPatch is a partial update to NodeFilters; nil fields are left alone
type NodeFilterPatch struct {
	ShowUsers     *bool `json:"showUsers,omitempty"`
	ShowGroups    *bool `json:"showGroups,omitempty"`
	ShowServers   *bool `json:"showServers,omitempty"`
	ShowComputers *bool `json:"showComputers,omitempty"`
	HighValueOnly *bool `json:"highValueOnly,omitempty"`
	PathNodesOnly *bool `json:"pathNodesOnly,omitempty"`
}

func (p NodeFilterPatch) apply(f filter.NodeFilters) filter.NodeFilters {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.ShowUsers, p.ShowUsers)
	set(&f.ShowGroups, p.ShowGroups)
	set(&f.ShowServers, p.ShowServers)
	set(&f.ShowComputers, p.ShowComputers)
	set(&f.HighValueOnly, p.HighValueOnly)
	set(&f.PathNodesOnly, p.PathNodesOnly)
	return f
}

// EdgeFilterPatch is a partial update to EdgeFilters; nil fields are left alone
type EdgeFilterPatch struct {
	EdgeTypes    []string `json:"edgeTypes,omitempty"`
	HideAllEdges *bool    `json:"hideAllEdges,omitempty"`
	MinWeight    *float64 `json:"minWeight,omitempty" validate:"omitempty,gte=0"`
}

func (p EdgeFilterPatch) apply(f filter.EdgeFilters) filter.EdgeFilters {
	if p.EdgeTypes != nil {
		f.EdgeTypes = append([]string(nil), p.EdgeTypes...)
	}
	if p.HideAllEdges != nil {
		f.HideAllEdges = *p.HideAllEdges
	}
	if p.MinWeight != nil {
		f.MinWeight = *p.MinWeight
	}
	return f
}

// Bool returns a pointer to b, for building patches
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f, for building patches
func Float(f float64) *float64 { return &f }
