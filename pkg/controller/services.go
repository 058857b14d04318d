package controller

import (
	"context"
	"io"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
)

// GraphService serves the dataset and neighborhood queries
type GraphService interface {
	Load(ctx context.Context) (dataset.GraphData, error)
	Subnets(ctx context.Context) ([]dataset.Subnet, error)
	StartOptions(ctx context.Context) ([]string, error)
	Neighbors(ctx context.Context, nodeName string, radius int) (dataset.GraphData, error)
}

// AnalysisService computes attack paths, scenario diffs and explanations
type AnalysisService interface {
	Run(ctx context.Context, params dataset.AnalysisParams) (*dataset.AnalysisResult, error)
	Simulate(ctx context.Context, scenarioID string, mutations []scenario.Mutation, params dataset.AnalysisParams) (*dataset.SimulateResult, error)
	Explain(ctx context.Context, pathID string) (string, error)
}

// DatasetService replaces the backend's dataset
type DatasetService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (dataset.DatasetInfo, error)
	Reset(ctx context.Context) (dataset.DatasetInfo, error)
	Info(ctx context.Context) (dataset.DatasetInfo, error)
}

// Backend bundles every service the controller talks to
type Backend interface {
	GraphService
	AnalysisService
	DatasetService
}
