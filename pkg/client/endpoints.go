package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/dd0wney/cluso-pathview/pkg/validation"
)

// Load fetches the full graph
func (c *Client) Load(ctx context.Context) (dataset.GraphData, error) {
	var g dataset.GraphData
	if err := c.getJSON(ctx, "/graph", &g); err != nil {
		return dataset.GraphData{}, dataset.OpError("load", "graph", "", err)
	}
	return g, nil
}

// Subnets fetches the subnet definitions
func (c *Client) Subnets(ctx context.Context) ([]dataset.Subnet, error) {
	var s []dataset.Subnet
	if err := c.getJSON(ctx, "/subnets", &s); err != nil {
		return nil, dataset.OpError("load", "subnets", "", err)
	}
	return s, nil
}

// StartOptions fetches the node names offered as analysis start points
func (c *Client) StartOptions(ctx context.Context) ([]string, error) {
	var s []string
	if err := c.getJSON(ctx, "/start-options", &s); err != nil {
		return nil, dataset.OpError("load", "start options", "", err)
	}
	return s, nil
}

type neighborsRequest struct {
	NodeName string `json:"nodeName" validate:"required"`
	Radius   int    `json:"radius" validate:"min=1"`
}

// Neighbors fetches the k-hop neighborhood of a node
func (c *Client) Neighbors(ctx context.Context, nodeName string, radius int) (dataset.GraphData, error) {
	req := neighborsRequest{NodeName: nodeName, Radius: radius}
	if err := validation.Struct(req); err != nil {
		return dataset.GraphData{}, dataset.OpError("neighbors", "node", nodeName, err)
	}
	var g dataset.GraphData
	if err := c.postJSON(ctx, "/neighbors", req, &g); err != nil {
		return dataset.GraphData{}, dataset.OpError("neighbors", "node", nodeName, err)
	}
	return g, nil
}

// Run starts an analysis. Params are validated before anything is sent.
func (c *Client) Run(ctx context.Context, params dataset.AnalysisParams) (*dataset.AnalysisResult, error) {
	if err := validation.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	var res dataset.AnalysisResult
	if err := c.postJSON(ctx, "/analyze", params, &res); err != nil {
		return nil, dataset.OpError("analyze", "", "", err)
	}
	return &res, nil
}

type simulateRequest struct {
	ScenarioID string                 `json:"scenarioId"`
	Mutations  []scenario.Mutation    `json:"mutations"`
	Analysis   dataset.AnalysisParams `json:"analysis"`
}

// Simulate applies mutations to a copy of the graph on the backend and returns
// the before/after comparison. Mutations are forwarded unvalidated.
func (c *Client) Simulate(ctx context.Context, scenarioID string, mutations []scenario.Mutation, params dataset.AnalysisParams) (*dataset.SimulateResult, error) {
	if err := validation.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	req := simulateRequest{ScenarioID: scenarioID, Mutations: mutations, Analysis: params}
	var res dataset.SimulateResult
	if err := c.postJSON(ctx, "/simulate", req, &res); err != nil {
		return nil, dataset.OpError("simulate", "scenario", scenarioID, err)
	}
	return &res, nil
}

type explainResponse struct {
	PathID      string `json:"pathId"`
	Explanation string `json:"explanation"`
}

// Explain fetches the narrative explanation of a path
func (c *Client) Explain(ctx context.Context, pathID string) (string, error) {
	var res explainResponse
	if err := c.getJSON(ctx, "/explain?pathId="+url.QueryEscape(pathID), &res); err != nil {
		return "", dataset.OpError("explain", "path", pathID, err)
	}
	return res.Explanation, nil
}

// Upload sends a dataset file as the multipart field "file"
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (dataset.DatasetInfo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return dataset.DatasetInfo{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return dataset.DatasetInfo{}, fmt.Errorf("read dataset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return dataset.DatasetInfo{}, fmt.Errorf("close multipart body: %w", err)
	}

	var info dataset.DatasetInfo
	if err := c.do(ctx, http.MethodPost, "/upload-dataset", mw.FormDataContentType(), &buf, &info); err != nil {
		return dataset.DatasetInfo{}, err
	}
	return info, nil
}

// Reset restores the backend's bundled dataset
func (c *Client) Reset(ctx context.Context) (dataset.DatasetInfo, error) {
	var info dataset.DatasetInfo
	if err := c.postJSON(ctx, "/reset-dataset", nil, &info); err != nil {
		return dataset.DatasetInfo{}, dataset.OpError("reset", "dataset", "", err)
	}
	return info, nil
}

// Info describes the loaded dataset
func (c *Client) Info(ctx context.Context) (dataset.DatasetInfo, error) {
	var info dataset.DatasetInfo
	if err := c.getJSON(ctx, "/dataset-info", &info); err != nil {
		return dataset.DatasetInfo{}, dataset.OpError("info", "dataset", "", err)
	}
	return info, nil
}
