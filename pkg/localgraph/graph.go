package localgraph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// DefaultWeights is applied to edges that carry no weight of their own
var DefaultWeights = map[string]float64{
	"MemberOf":            3,
	"CanRDP":              5,
	"HasSession":          6,
	"AdminTo":             7,
	"WriteDACL":           8,
	"GenericAll":          9,
	"Owns":                8,
	"ForceChangePassword": 7,
	"ReadLAPSPassword":    8,
	"AllExtendedRights":   9,
	"DCSync":              10,
}

// fallbackWeight is used when neither the edge nor the weight table has one
const fallbackWeight = 5

type fileEdge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation string   `json:"relation"`
	Weight   *float64 `json:"weight"`
}

// file is the dataset document as stored on disk
type file struct {
	Nodes           []dataset.Node             `json:"nodes"`
	Edges           []fileEdge                 `json:"edges"`
	Subnets         []dataset.Subnet           `json:"subnets"`
	StartOptions    []string                   `json:"startOptions"`
	Weights         map[string]float64         `json:"weights"`
	CriticalEdgeID  string                     `json:"criticalEdgeId"`
	ScenarioPresets map[string]json.RawMessage `json:"scenarioPresets"`
	Analysis        *dataset.AnalysisResult    `json:"analysis"`
}

// Graph is a decoded dataset with adjacency indexes for neighborhood queries
type Graph struct {
	Nodes          []dataset.Node
	Edges          []dataset.Edge
	Subnets        []dataset.Subnet
	StartOptions   []string
	CriticalEdgeID string
	Scenarios      int

	// Analysis is a precomputed result shipped with the dataset, if any
	Analysis *dataset.AnalysisResult

	out map[string][]string
	in  map[string][]string
}

// Decode reads a dataset document. Structure is not validated beyond what JSON
// decoding enforces; that is the analysis backend's job.
func Decode(r io.Reader) (*Graph, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	weights := f.Weights
	if weights == nil {
		weights = DefaultWeights
	}

	g := &Graph{
		Nodes:          f.Nodes,
		Subnets:        f.Subnets,
		StartOptions:   f.StartOptions,
		CriticalEdgeID: f.CriticalEdgeID,
		Scenarios:      len(f.ScenarioPresets),
		Analysis:       f.Analysis,
		Edges:          make([]dataset.Edge, 0, len(f.Edges)),
	}
	for _, e := range f.Edges {
		w, ok := weights[e.Relation]
		if !ok {
			w = fallbackWeight
		}
		if e.Weight != nil {
			w = *e.Weight
		}
		g.Edges = append(g.Edges, dataset.Edge{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Relation: e.Relation,
			Weight:   w,
		})
	}
	g.index()
	return g, nil
}

func (g *Graph) index() {
	g.out = make(map[string][]string, len(g.Nodes))
	g.in = make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		g.out[e.Source] = append(g.out[e.Source], e.Target)
		g.in[e.Target] = append(g.in[e.Target], e.Source)
	}
}

func (g *Graph) hasNode(name string) bool {
	for _, n := range g.Nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}

// Neighbors returns every node within radius hops of name, following edges in
// both directions, and every edge whose endpoints were both reached. Output
// keeps dataset order. An unknown node yields an empty result.
func (g *Graph) Neighbors(name string, radius int) dataset.GraphData {
	if !g.hasNode(name) {
		return dataset.GraphData{Nodes: []dataset.Node{}, Edges: []dataset.Edge{}}
	}

	visited := map[string]bool{name: true}
	frontier := []string{name}
	for hop := 0; hop < radius && len(frontier) > 0; hop++ {
		var next []string
		for _, n := range frontier {
			for _, m := range g.out[n] {
				if !visited[m] {
					visited[m] = true
					next = append(next, m)
				}
			}
			for _, m := range g.in[n] {
				if !visited[m] {
					visited[m] = true
					next = append(next, m)
				}
			}
		}
		frontier = next
	}

	out := dataset.GraphData{Nodes: []dataset.Node{}, Edges: []dataset.Edge{}}
	for _, n := range g.Nodes {
		if visited[n.Name] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if visited[e.Source] && visited[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// Info summarises the graph
func (g *Graph) Info() dataset.DatasetInfo {
	return dataset.DatasetInfo{
		Nodes:        len(g.Nodes),
		Edges:        len(g.Edges),
		Subnets:      len(g.Subnets),
		Scenarios:    g.Scenarios,
		StartOptions: g.StartOptions,
	}
}
