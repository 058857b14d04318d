package cluster

import (
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// IDPrefix is prepended to a subnet id to form its pseudo-node id
const IDPrefix = "cluster-"

// Item is a node as it will be rendered: either a real node or a collapsed subnet
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	HighValue   bool   `json:"highValue"`
	IsCluster   bool   `json:"isCluster"`
	SubnetID    string `json:"subnetId,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
}

// Link is an edge whose endpoints are render ids
type Link struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// Result is the render-level node and edge set
type Result struct {
	Items []Item
	Links []Link
}

// Clusters counts the collapsed pseudo-nodes in the result
func (r Result) Clusters() int {
	n := 0
	for _, it := range r.Items {
		if it.IsCluster {
			n++
		}
	}
	return n
}

// ClusterID returns the pseudo-node id for a subnet
func ClusterID(subnetID string) string {
	return IDPrefix + subnetID
}

func itemFor(n dataset.Node) Item {
	return Item{
		ID:        n.Name,
		Name:      n.Name,
		Label:     n.Name,
		Type:      n.Type,
		HighValue: n.HighValue,
		SubnetID:  n.Subnet,
	}
}

func linkFor(e dataset.Edge) Link {
	return Link{
		ID:       e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Relation: e.Relation,
		Weight:   e.Weight,
	}
}

// Passthrough converts filtered nodes and edges one-to-one
func Passthrough(nodes []dataset.Node, edges []dataset.Edge) Result {
	res := Result{
		Items: make([]Item, len(nodes)),
		Links: make([]Link, len(edges)),
	}
	for i, n := range nodes {
		res.Items[i] = itemFor(n)
	}
	for i, e := range edges {
		res.Links[i] = linkFor(e)
	}
	return res
}

// Aggregate collapses every subnet not in expanded into one pseudo-node.
// Subnets are emitted in definition order followed by nodes with no known subnet.
// Edges are remapped to render ids; intra-cluster self-loops are dropped and
// duplicates on (source, target, relation) keep the first occurrence.
func Aggregate(nodes []dataset.Node, edges []dataset.Edge, subnets []dataset.Subnet, expanded map[string]bool) Result {
	known := make(map[string]bool, len(subnets))
	for _, s := range subnets {
		known[s.ID] = true
	}

	members := make(map[string][]dataset.Node, len(subnets))
	var loose []dataset.Node
	for _, n := range nodes {
		if n.Subnet != "" && known[n.Subnet] {
			members[n.Subnet] = append(members[n.Subnet], n)
			continue
		}
		loose = append(loose, n)
	}

	var res Result
	renderID := make(map[string]string, len(nodes))
	for _, s := range subnets {
		group := members[s.ID]
		if expanded[s.ID] {
			for _, n := range group {
				res.Items = append(res.Items, itemFor(n))
				renderID[n.Name] = n.Name
			}
			continue
		}

		cid := ClusterID(s.ID)
		item := Item{
			ID:          cid,
			Name:        cid,
			Label:       fmt.Sprintf("%s (%d)", s.Label, len(group)),
			Type:        dataset.TypeSubnet,
			IsCluster:   true,
			SubnetID:    s.ID,
			MemberCount: len(group),
		}
		for _, n := range group {
			renderID[n.Name] = cid
		}
		res.Items = append(res.Items, item)
	}
	for _, n := range loose {
		res.Items = append(res.Items, itemFor(n))
		renderID[n.Name] = n.Name
	}

	type linkKey struct{ source, target, relation string }
	seen := make(map[linkKey]bool, len(edges))
	for _, e := range edges {
		src, ok := renderID[e.Source]
		if !ok {
			continue
		}
		tgt, ok := renderID[e.Target]
		if !ok || src == tgt {
			continue
		}
		k := linkKey{src, tgt, e.Relation}
		if seen[k] {
			continue
		}
		seen[k] = true

		// The raw edge id is kept so highlight sets still match remapped links.
		l := linkFor(e)
		l.Source, l.Target = src, tgt
		res.Links = append(res.Links, l)
	}
	return res
}
