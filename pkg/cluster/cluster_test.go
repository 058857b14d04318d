package cluster

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAggregate_CollapsedSubnet(t *testing.T) {
	nodes := []dataset.Node{
		{Name: "A", Type: dataset.TypeUser, Subnet: "s1"},
		{Name: "B", Type: dataset.TypeGroup, Subnet: "s1"},
		{Name: "C", Type: dataset.TypeServer},
	}
	edges := []dataset.Edge{
		{ID: "e1", Source: "A", Target: "B", Relation: "MemberOf", Weight: 1},
		{ID: "e2", Source: "A", Target: "C", Relation: "AdminTo", Weight: 5},
	}
	subnets := []dataset.Subnet{{ID: "s1", Label: "Corp"}}

	res := Aggregate(nodes, edges, subnets, map[string]bool{})

	if len(res.Items) != 2 {
		t.Fatalf("Expected 2 render nodes, got %d: %+v", len(res.Items), res.Items)
	}
	c := res.Items[0]
	if c.ID != "cluster-s1" || c.Label != "Corp (2)" || c.Type != dataset.TypeSubnet || !c.IsCluster {
		t.Errorf("Unexpected cluster node %+v", c)
	}
	if c.MemberCount != 2 || c.SubnetID != "s1" {
		t.Errorf("Expected 2 members of s1, got %d of %s", c.MemberCount, c.SubnetID)
	}
	if res.Items[1].ID != "C" {
		t.Errorf("Expected C after clusters, got %s", res.Items[1].ID)
	}

	if len(res.Links) != 1 {
		t.Fatalf("Expected 1 render edge, got %d: %+v", len(res.Links), res.Links)
	}
	l := res.Links[0]
	if l.Source != "cluster-s1" || l.Target != "C" || l.Relation != "AdminTo" {
		t.Errorf("Unexpected link %+v", l)
	}
	if res.Clusters() != 1 {
		t.Errorf("Expected 1 cluster, got %d", res.Clusters())
	}
}

func TestAggregate_EmptySubnetStillEmitted(t *testing.T) {
	subnets := []dataset.Subnet{{ID: "s1", Label: "Corp"}, {ID: "s2", Label: "DMZ"}}
	nodes := []dataset.Node{{Name: "A", Subnet: "s1"}}

	res := Aggregate(nodes, nil, subnets, nil)
	if len(res.Items) != 2 {
		t.Fatalf("Expected 2 cluster nodes, got %d", len(res.Items))
	}
	if res.Items[1].Label != "DMZ (0)" {
		t.Errorf("Expected empty cluster label 'DMZ (0)', got %q", res.Items[1].Label)
	}
}

func TestAggregate_UnknownSubnetPassesThrough(t *testing.T) {
	nodes := []dataset.Node{{Name: "A", Subnet: "ghost"}, {Name: "B", Subnet: "s1"}}
	edges := []dataset.Edge{{ID: "e1", Source: "A", Target: "B", Relation: "CanRDP"}}
	subnets := []dataset.Subnet{{ID: "s1", Label: "Corp"}}

	res := Aggregate(nodes, edges, subnets, nil)
	if len(res.Items) != 2 || res.Items[1].ID != "A" {
		t.Fatalf("Expected [cluster-s1 A], got %+v", res.Items)
	}
	if len(res.Links) != 1 || res.Links[0].Source != "A" || res.Links[0].Target != "cluster-s1" {
		t.Errorf("Unexpected links %+v", res.Links)
	}
}

func TestAggregate_Dedup(t *testing.T) {
	nodes := []dataset.Node{
		{Name: "A", Subnet: "s1"},
		{Name: "B", Subnet: "s1"},
		{Name: "C"},
	}
	edges := []dataset.Edge{
		{ID: "e1", Source: "A", Target: "C", Relation: "AdminTo", Weight: 2},
		{ID: "e2", Source: "B", Target: "C", Relation: "AdminTo", Weight: 7},
		{ID: "e3", Source: "B", Target: "C", Relation: "CanRDP", Weight: 1},
	}
	subnets := []dataset.Subnet{{ID: "s1", Label: "Corp"}}

	res := Aggregate(nodes, edges, subnets, nil)
	if len(res.Links) != 2 {
		t.Fatalf("Expected 2 links after dedup, got %d: %+v", len(res.Links), res.Links)
	}
	if res.Links[0].ID != "e1" || res.Links[0].Weight != 2 {
		t.Errorf("First occurrence should win, got %+v", res.Links[0])
	}
	if res.Links[1].ID != "e3" {
		t.Errorf("Different relation must survive, got %+v", res.Links[1])
	}
}

func TestAggregate_DanglingEdgeDropped(t *testing.T) {
	nodes := []dataset.Node{{Name: "A"}}
	edges := []dataset.Edge{{ID: "e1", Source: "A", Target: "gone", Relation: "Owns"}}

	res := Aggregate(nodes, edges, nil, nil)
	if len(res.Links) != 0 {
		t.Errorf("Expected dangling edge to be dropped, got %+v", res.Links)
	}
}

func TestPassthrough(t *testing.T) {
	nodes := []dataset.Node{{Name: "A", Type: dataset.TypeUser, HighValue: true}, {Name: "B"}}
	edges := []dataset.Edge{{ID: "e1", Source: "A", Target: "B", Relation: "Owns", Weight: 4}}

	res := Passthrough(nodes, edges)
	if len(res.Items) != 2 || res.Items[0].ID != "A" || !res.Items[0].HighValue {
		t.Errorf("Unexpected items %+v", res.Items)
	}
	if len(res.Links) != 1 || res.Links[0].ID != "e1" {
		t.Errorf("Unexpected links %+v", res.Links)
	}
	if res.Clusters() != 0 {
		t.Error("Passthrough must not produce clusters")
	}
}

func randomClusterGraph(seed int64) ([]dataset.Node, []dataset.Edge, []dataset.Subnet) {
	r := rand.New(rand.NewSource(seed))
	subnets := make([]dataset.Subnet, 1+r.Intn(4))
	for i := range subnets {
		subnets[i] = dataset.Subnet{ID: fmt.Sprintf("s%d", i), Label: fmt.Sprintf("Net %d", i)}
	}
	nodes := make([]dataset.Node, 1+r.Intn(15))
	for i := range nodes {
		nodes[i] = dataset.Node{Name: fmt.Sprintf("N%d", i)}
		if k := r.Intn(len(subnets) + 1); k < len(subnets) {
			nodes[i].Subnet = subnets[k].ID
		}
	}
	relations := []string{"MemberOf", "AdminTo", "HasSession"}
	edges := make([]dataset.Edge, r.Intn(30))
	for i := range edges {
		edges[i] = dataset.Edge{
			ID:       fmt.Sprintf("E%d", i),
			Source:   nodes[r.Intn(len(nodes))].Name,
			Target:   nodes[r.Intn(len(nodes))].Name,
			Relation: relations[r.Intn(len(relations))],
		}
	}
	return nodes, edges, subnets
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	sort.Strings(ids)
	return ids
}

func TestAggregate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("fully expanded view matches passthrough nodes", prop.ForAll(
		func(seed int64) bool {
			nodes, edges, subnets := randomClusterGraph(seed)
			expanded := make(map[string]bool)
			for _, s := range subnets {
				expanded[s.ID] = true
			}
			agg := Aggregate(nodes, edges, subnets, expanded)
			pass := Passthrough(nodes, edges)

			a, b := itemIDs(agg.Items), itemIDs(pass.Items)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("fully expanded links are passthrough links minus self-loops and duplicates", prop.ForAll(
		func(seed int64) bool {
			nodes, edges, subnets := randomClusterGraph(seed)
			expanded := make(map[string]bool)
			for _, s := range subnets {
				expanded[s.ID] = true
			}
			agg := Aggregate(nodes, edges, subnets, expanded)

			type key struct{ s, t, r string }
			seen := make(map[key]bool)
			var want []string
			for _, e := range edges {
				k := key{e.Source, e.Target, e.Relation}
				if e.Source == e.Target || seen[k] {
					continue
				}
				seen[k] = true
				want = append(want, e.ID)
			}
			if len(want) != len(agg.Links) {
				return false
			}
			for i, l := range agg.Links {
				if l.ID != want[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("links never loop and never repeat", prop.ForAll(
		func(seed int64) bool {
			nodes, edges, subnets := randomClusterGraph(seed)
			agg := Aggregate(nodes, edges, subnets, nil)

			type key struct{ s, t, r string }
			seen := make(map[key]bool)
			ids := make(map[string]bool)
			for _, it := range agg.Items {
				ids[it.ID] = true
			}
			for _, l := range agg.Links {
				k := key{l.Source, l.Target, l.Relation}
				if l.Source == l.Target || seen[k] || !ids[l.Source] || !ids[l.Target] {
					return false
				}
				seen[k] = true
			}
			return true
		},
		gen.Int64(),
	))

	properties.Property("collapsed member counts add up", prop.ForAll(
		func(seed int64) bool {
			nodes, edges, subnets := randomClusterGraph(seed)
			agg := Aggregate(nodes, edges, subnets, nil)

			total := 0
			for _, it := range agg.Items {
				if it.IsCluster {
					total += it.MemberCount
				} else {
					total++
				}
			}
			return total == len(nodes)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
