package controller

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
)

var errBackend = errors.New("backend unavailable")

type runCall struct {
	params dataset.AnalysisParams
	reply  chan runReply
}

type runReply struct {
	result *dataset.AnalysisResult
	err    error
}

// fakeBackend answers from fixed data. Run results are served from runs in
// order, repeating the last. When calls is set, Run hands each call to the
// test and blocks until it is answered.
type fakeBackend struct {
	mu sync.Mutex

	graph        dataset.GraphData
	subnets      []dataset.Subnet
	startOptions []string
	neighbors    dataset.GraphData

	runs       []*dataset.AnalysisResult
	runErr     error
	runCalls   int
	lastParams dataset.AnalysisParams
	calls      chan runCall

	sim      *dataset.SimulateResult
	simErr   error
	simCalls int

	explanation string
	explainErr  error

	info      dataset.DatasetInfo
	uploadErr error
	uploaded  string
	loadErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		graph: dataset.GraphData{
			Nodes: []dataset.Node{
				{ID: "n1", Name: "Mudrek", Type: dataset.TypeUser, Subnet: "corp"},
				{ID: "n2", Name: "ServerAdmins", Type: dataset.TypeGroup, Subnet: "corp"},
				{ID: "n3", Name: "DC01", Type: dataset.TypeServer, HighValue: true, Subnet: "dc"},
			},
			Edges: []dataset.Edge{
				{ID: "E1", Source: "Mudrek", Target: "ServerAdmins", Relation: "MemberOf", Weight: 3},
				{ID: "E2", Source: "ServerAdmins", Target: "DC01", Relation: "AdminTo", Weight: 5},
			},
		},
		subnets: []dataset.Subnet{
			{ID: "corp", Label: "Corp", CIDR: "10.0.1.0/24"},
			{ID: "dc", Label: "DC", CIDR: "10.0.0.0/24"},
		},
		startOptions: []string{"Mudrek", "Arselan", "Sultan", "HelpDesk", "Workstation01"},
		info:         dataset.DatasetInfo{Status: "ok", Nodes: 3, Edges: 2},
		explanation:  "Mudrek reaches DC01 through ServerAdmins.",
	}
}

func analysisOf(paths ...dataset.PathInfo) *dataset.AnalysisResult {
	return &dataset.AnalysisResult{TotalPaths: len(paths), Paths: paths}
}

func pathOf(id string, nodes []string, edgeIDs ...string) dataset.PathInfo {
	p := dataset.PathInfo{PathID: id, Nodes: nodes, Hops: len(edgeIDs)}
	for i, e := range edgeIDs {
		p.Edges = append(p.Edges, dataset.PathEdge{EdgeID: e, Source: nodes[i], Target: nodes[i+1]})
	}
	return p
}

func (f *fakeBackend) Load(context.Context) (dataset.GraphData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.graph, f.loadErr
}

func (f *fakeBackend) Subnets(context.Context) ([]dataset.Subnet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subnets, nil
}

func (f *fakeBackend) StartOptions(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startOptions, nil
}

func (f *fakeBackend) Neighbors(_ context.Context, name string, _ int) (dataset.GraphData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.neighbors, nil
}

func (f *fakeBackend) Run(ctx context.Context, params dataset.AnalysisParams) (*dataset.AnalysisResult, error) {
	f.mu.Lock()
	calls := f.calls
	f.mu.Unlock()
	if calls != nil {
		c := runCall{params: params, reply: make(chan runReply, 1)}
		calls <- c
		select {
		case r := <-c.reply:
			return r.result, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = params
	i := min(f.runCalls, len(f.runs)-1)
	f.runCalls++
	if f.runErr != nil {
		return nil, f.runErr
	}
	if i < 0 {
		return analysisOf(), nil
	}
	return f.runs[i], nil
}

func (f *fakeBackend) Simulate(context.Context, string, []scenario.Mutation, dataset.AnalysisParams) (*dataset.SimulateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simCalls++
	return f.sim, f.simErr
}

func (f *fakeBackend) Explain(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.explanation, f.explainErr
}

func (f *fakeBackend) Upload(_ context.Context, filename string, r io.Reader) (dataset.DatasetInfo, error) {
	if _, err := io.ReadAll(r); err != nil {
		return dataset.DatasetInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = filename
	return f.info, f.uploadErr
}

func (f *fakeBackend) Reset(context.Context) (dataset.DatasetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, nil
}

func (f *fakeBackend) Info(context.Context) (dataset.DatasetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, nil
}
