package localgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/dd0wney/cluso-pathview/pkg/source"
)

// ErrUnsupported is returned for operations that need the analysis backend
var ErrUnsupported = errors.New("not available in offline mode")

// Service serves a dataset in-process. It answers graph and neighborhood
// queries itself; path analysis is limited to a precomputed result shipped
// with the dataset.
type Service struct {
	mu       sync.RWMutex
	graph    *Graph
	baseline *Graph
	logger   logging.Logger
}

// New serves g. Reset restores g after an upload.
func New(g *Graph, logger logging.Logger) *Service {
	return &Service{
		graph:    g,
		baseline: g,
		logger:   logging.OrNop(logger).With(logging.Component("localgraph")),
	}
}

// Open loads a dataset through source.OpenWith and serves it
func Open(ctx context.Context, uri string, opts source.Options, logger logging.Logger) (*Service, error) {
	rc, err := source.OpenWith(ctx, uri, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	g, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return New(g, logger), nil
}

func (s *Service) current() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Load returns the full graph
func (s *Service) Load(context.Context) (dataset.GraphData, error) {
	g := s.current()
	return dataset.GraphData{Nodes: g.Nodes, Edges: g.Edges}, nil
}

// Subnets returns the subnet definitions
func (s *Service) Subnets(context.Context) ([]dataset.Subnet, error) {
	return s.current().Subnets, nil
}

// StartOptions returns the suggested analysis start nodes
func (s *Service) StartOptions(context.Context) ([]string, error) {
	return s.current().StartOptions, nil
}

// Neighbors returns the k-hop neighborhood of nodeName
func (s *Service) Neighbors(_ context.Context, nodeName string, radius int) (dataset.GraphData, error) {
	if radius < 1 {
		return dataset.GraphData{}, fmt.Errorf("radius %d: must be at least 1", radius)
	}
	return s.current().Neighbors(nodeName, radius), nil
}

// Run returns the dataset's precomputed analysis
func (s *Service) Run(_ context.Context, params dataset.AnalysisParams) (*dataset.AnalysisResult, error) {
	g := s.current()
	if g.Analysis == nil {
		return nil, dataset.OpError("analyze", "", "", ErrUnsupported)
	}
	s.logger.Debug("serving precomputed analysis",
		logging.String("target", params.TargetNode),
		logging.Count(len(g.Analysis.Paths)))
	return g.Analysis, nil
}

// Simulate needs the analysis backend
func (s *Service) Simulate(_ context.Context, scenarioID string, _ []scenario.Mutation, _ dataset.AnalysisParams) (*dataset.SimulateResult, error) {
	return nil, dataset.OpError("simulate", "scenario", scenarioID, ErrUnsupported)
}

// Explain needs the analysis backend
func (s *Service) Explain(_ context.Context, pathID string) (string, error) {
	return "", dataset.OpError("explain", "path", pathID, ErrUnsupported)
}

// Upload replaces the served dataset with the document read from r
func (s *Service) Upload(_ context.Context, filename string, r io.Reader) (dataset.DatasetInfo, error) {
	g, err := Decode(r)
	if err != nil {
		return dataset.DatasetInfo{}, fmt.Errorf("%s: %w", filename, err)
	}
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	info := g.Info()
	info.Status = "ok"
	info.Message = fmt.Sprintf("Loaded %s", filename)
	s.logger.Info("dataset replaced", logging.String("file", filename), logging.Int("nodes", info.Nodes))
	return info, nil
}

// Reset restores the dataset the service was created with
func (s *Service) Reset(context.Context) (dataset.DatasetInfo, error) {
	s.mu.Lock()
	s.graph = s.baseline
	s.mu.Unlock()

	info := s.baseline.Info()
	info.Status = "ok"
	info.Message = "Reset to default dataset"
	return info, nil
}

// Info describes the served dataset
func (s *Service) Info(context.Context) (dataset.DatasetInfo, error) {
	return s.current().Info(), nil
}
