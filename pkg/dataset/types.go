package dataset

// Node types recognised by the type-visibility gates
const (
	TypeUser     = "User"
	TypeGroup    = "Group"
	TypeServer   = "Server"
	TypeComputer = "Computer"

	// TypeSubnet is the semantic type carried by cluster pseudo-nodes
	TypeSubnet = "Subnet"
)

// Node represents a vertex of the visualised network. Name is the unique key.
type Node struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	PrivilegeLevel string `json:"privilegeLevel"`
	HighValue      bool   `json:"highValue"`
	Subnet         string `json:"subnet"`
}

// Edge represents a directed relationship between two nodes, referenced by name
type Edge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// Subnet groups nodes for cluster view
type Subnet struct {
	ID    string `json:"id"`
	CIDR  string `json:"cidr"`
	Label string `json:"label"`
}

// GraphData is a node/edge set as returned by the graph and neighbor endpoints
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// PathEdge is one traversed edge of an attack path
type PathEdge struct {
	EdgeID   string  `json:"edgeId"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// PathInfo is a ranked attack path produced by an analysis run.
// len(Edges) == len(Nodes)-1 for well-formed paths.
type PathInfo struct {
	PathID              string     `json:"pathId"`
	Nodes               []string   `json:"nodes"`
	Edges               []PathEdge `json:"edges"`
	Hops                int        `json:"hops"`
	EdgeTypes           []string   `json:"edgeTypes"`
	SumWeights          float64    `json:"sumWeights"`
	Risk                float64    `json:"risk"`
	NormalizedScore     float64    `json:"normalizedScore"`
	ImpactEstimation    string     `json:"impactEstimation"`
	ThroughCritical     bool       `json:"throughCritical"`
	CriticalEdgesInPath []string   `json:"criticalEdgesInPath"`
}

// EdgeIDs returns the ids of the traversed edges in order
func (p *PathInfo) EdgeIDs() []string {
	ids := make([]string, len(p.Edges))
	for i, e := range p.Edges {
		ids[i] = e.EdgeID
	}
	return ids
}

// CriticalEdge records how often an edge appears across the discovered paths
type CriticalEdge struct {
	EdgeID         string  `json:"edgeId"`
	Source         string  `json:"source"`
	Relation       string  `json:"relation"`
	Target         string  `json:"target"`
	TraversalCount int     `json:"traversalCount"`
	PercentOfPaths float64 `json:"percentOfPaths"`
}

// AnalysisResult is the output of one analysis run
type AnalysisResult struct {
	TotalPaths    int            `json:"totalPaths"`
	Paths         []PathInfo     `json:"paths"`
	Top5          []PathInfo     `json:"top5"`
	ShortestHops  int            `json:"shortestHops"`
	CriticalEdges []CriticalEdge `json:"criticalEdges"`
	GlobalRisk    float64        `json:"globalRisk"`
}

// FindPath looks a path up by id. Safe on a nil receiver.
func (a *AnalysisResult) FindPath(pathID string) (*PathInfo, bool) {
	if a == nil || pathID == "" {
		return nil, false
	}
	for i := range a.Paths {
		if a.Paths[i].PathID == pathID {
			return &a.Paths[i], true
		}
	}
	return nil, false
}

// PathNodeSet returns every node name that appears in any path
func (a *AnalysisResult) PathNodeSet() map[string]struct{} {
	set := make(map[string]struct{})
	if a == nil {
		return set
	}
	for _, p := range a.Paths {
		for _, n := range p.Nodes {
			set[n] = struct{}{}
		}
	}
	return set
}

// AnalysisParams are the inputs to AnalysisService.Run
type AnalysisParams struct {
	StartNodes []string `json:"startNodes" validate:"required,min=1,dive,required"`
	TargetNode string   `json:"targetNode" validate:"required"`
	MinDepth   int      `json:"minDepth" validate:"min=1"`
	MaxDepth   int      `json:"maxDepth" validate:"gtefield=MinDepth"`
	K          int      `json:"k" validate:"min=1"`
}

// DefaultAnalysisParams mirrors the dashboard's fixed analysis settings
func DefaultAnalysisParams(startNodes []string) AnalysisParams {
	return AnalysisParams{
		StartNodes: startNodes,
		TargetNode: "DC01",
		MinDepth:   1,
		MaxDepth:   7,
		K:          50,
	}
}

// AnalysisSummary is the condensed form of an analysis used in simulation diffs
type AnalysisSummary struct {
	TotalPaths                int      `json:"totalPaths"`
	GlobalRisk                float64  `json:"globalRisk"`
	ShortestHops              int      `json:"shortestHops"`
	HighValueTargetsReachable int      `json:"highValueTargetsReachable"`
	PathIDs                   []string `json:"pathIds"`
}

// Delta summarises the change between two analysis runs
type Delta struct {
	PathReduction        int     `json:"pathReduction"`
	RiskReductionPercent float64 `json:"riskReductionPercent"`
	EliminatedPaths      int     `json:"eliminatedPaths"`
}

// SimulateResult is the before/after comparison of a scenario
type SimulateResult struct {
	Before AnalysisSummary `json:"before"`
	After  AnalysisSummary `json:"after"`
	Delta  Delta           `json:"delta"`
}

// ScenarioHighlight is the path (and removed edges) a scenario wants emphasised
type ScenarioHighlight struct {
	ScenarioID     string   `json:"scenarioId"`
	EdgeIDs        []string `json:"edgeIds"`
	NodeNames      []string `json:"nodeNames"`
	RemovedEdgeIDs []string `json:"removedEdgeIds"`
}

// DatasetInfo describes the dataset currently loaded by the backend
type DatasetInfo struct {
	Status       string   `json:"status,omitempty"`
	Message      string   `json:"message,omitempty"`
	Nodes        int      `json:"nodes"`
	Edges        int      `json:"edges"`
	Subnets      int      `json:"subnets"`
	Scenarios    int      `json:"scenarios"`
	StartOptions []string `json:"startOptions"`
}
