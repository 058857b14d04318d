package filter

import (
	"slices"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// AllEdgeTypes lists every relation the dashboard knows about, in panel order
var AllEdgeTypes = []string{
	"MemberOf",
	"AdminTo",
	"HasSession",
	"CanRDP",
	"GenericAll",
	"WriteDACL",
	"Owns",
	"ForceChangePassword",
	"ReadLAPSPassword",
	"AllExtendedRights",
	"DCSync",
}

// NodeFilters are independent boolean gates. Each gate only ever removes nodes.
type NodeFilters struct {
	ShowUsers     bool `json:"showUsers" yaml:"show_users"`
	ShowGroups    bool `json:"showGroups" yaml:"show_groups"`
	ShowServers   bool `json:"showServers" yaml:"show_servers"`
	ShowComputers bool `json:"showComputers" yaml:"show_computers"`
	HighValueOnly bool `json:"highValueOnly" yaml:"high_value_only"`
	PathNodesOnly bool `json:"pathNodesOnly" yaml:"path_nodes_only"`
}

// EdgeFilters select edges by relation whitelist and weight
type EdgeFilters struct {
	EdgeTypes    []string `json:"edgeTypes" yaml:"edge_types"`
	HideAllEdges bool     `json:"hideAllEdges" yaml:"hide_all_edges"`
	MinWeight    float64  `json:"minWeight" yaml:"min_weight" validate:"gte=0"`
}

// DefaultNodeFilters shows every node type with no restriction
func DefaultNodeFilters() NodeFilters {
	return NodeFilters{
		ShowUsers:     true,
		ShowGroups:    true,
		ShowServers:   true,
		ShowComputers: true,
	}
}

// DefaultEdgeFilters whitelists every known relation
func DefaultEdgeFilters() EdgeFilters {
	return EdgeFilters{
		EdgeTypes: slices.Clone(AllEdgeTypes),
	}
}

// Toggle returns a copy with relation added to or removed from the whitelist
func (f EdgeFilters) Toggle(relation string) EdgeFilters {
	out := f
	if i := slices.Index(f.EdgeTypes, relation); i >= 0 {
		out.EdgeTypes = slices.Delete(slices.Clone(f.EdgeTypes), i, i+1)
		return out
	}
	out.EdgeTypes = append(slices.Clone(f.EdgeTypes), relation)
	return out
}

// Allows reports whether relation is whitelisted
func (f EdgeFilters) Allows(relation string) bool {
	return slices.Contains(f.EdgeTypes, relation)
}

// Result is the filtered node and edge set, in input order
type Result struct {
	Nodes []dataset.Node
	Edges []dataset.Edge
}

// NodeNames returns the set of surviving node names
func (r Result) NodeNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Nodes))
	for _, n := range r.Nodes {
		names[n.Name] = struct{}{}
	}
	return names
}

// Evaluate applies node gates and then edge gates. Edge filtering depends on the
// filtered node set, so every surviving edge has both endpoints present.
// analysis may be nil, in which case PathNodesOnly has no effect.
func Evaluate(nodes []dataset.Node, edges []dataset.Edge, nf NodeFilters, ef EdgeFilters, analysis *dataset.AnalysisResult) Result {
	var pathNodes map[string]struct{}
	if nf.PathNodesOnly && analysis != nil {
		pathNodes = analysis.PathNodeSet()
	}

	res := Result{
		Nodes: make([]dataset.Node, 0, len(nodes)),
		Edges: make([]dataset.Edge, 0, len(edges)),
	}
	kept := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if !nf.admits(n) {
			continue
		}
		if pathNodes != nil {
			if _, ok := pathNodes[n.Name]; !ok {
				continue
			}
		}
		res.Nodes = append(res.Nodes, n)
		kept[n.Name] = struct{}{}
	}

	if ef.HideAllEdges {
		return res
	}

	allowed := make(map[string]struct{}, len(ef.EdgeTypes))
	for _, t := range ef.EdgeTypes {
		allowed[t] = struct{}{}
	}
	for _, e := range edges {
		if _, ok := kept[e.Source]; !ok {
			continue
		}
		if _, ok := kept[e.Target]; !ok {
			continue
		}
		if _, ok := allowed[e.Relation]; !ok {
			continue
		}
		if e.Weight < ef.MinWeight {
			continue
		}
		res.Edges = append(res.Edges, e)
	}
	return res
}

func (nf NodeFilters) admits(n dataset.Node) bool {
	if nf.HighValueOnly && !n.HighValue {
		return false
	}
	switch n.Type {
	case dataset.TypeUser:
		return nf.ShowUsers
	case dataset.TypeGroup:
		return nf.ShowGroups
	case dataset.TypeServer:
		return nf.ShowServers
	case dataset.TypeComputer:
		return nf.ShowComputers
	}
	return true
}
