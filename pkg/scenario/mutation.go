package scenario

// MutationType tags a Mutation
type MutationType string

const (
	AddEdge    MutationType = "addEdge"
	RemoveEdge MutationType = "removeEdge"
	RemoveNode MutationType = "removeNode"
)

// Mutation describes one hypothetical graph change. Only the fields relevant to
// Type are set; the record is forwarded to the simulator unvalidated.
type Mutation struct {
	Type     MutationType `json:"type"`
	EdgeID   string       `json:"edgeId,omitempty"`
	NodeID   string       `json:"nodeId,omitempty"`
	Source   string       `json:"source,omitempty"`
	Target   string       `json:"target,omitempty"`
	Relation string       `json:"relation,omitempty"`
	Weight   float64      `json:"weight,omitempty"`
}

// NewAddEdge describes an edge an attacker could gain
func NewAddEdge(source, relation, target string, weight float64) Mutation {
	return Mutation{Type: AddEdge, Source: source, Relation: relation, Target: target, Weight: weight}
}

// NewRemoveEdge describes revoking an edge
func NewRemoveEdge(edgeID string) Mutation {
	return Mutation{Type: RemoveEdge, EdgeID: edgeID}
}

// NewRemoveNode describes disabling a node and all its edges
func NewRemoveNode(nodeID string) Mutation {
	return Mutation{Type: RemoveNode, NodeID: nodeID}
}

// IsOffensive reports whether any mutation adds an edge
func IsOffensive(ms []Mutation) bool {
	for _, m := range ms {
		if m.Type == AddEdge {
			return true
		}
	}
	return false
}

// RemovedEdgeIDs returns the ids of edges removed by removeEdge mutations, in order
func RemovedEdgeIDs(ms []Mutation) []string {
	var ids []string
	for _, m := range ms {
		if m.Type == RemoveEdge && m.EdgeID != "" {
			ids = append(ids, m.EdgeID)
		}
	}
	return ids
}
