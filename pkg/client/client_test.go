package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ controller.Backend = (*Client)(nil)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Load(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/graph" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if _, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err != nil {
			t.Errorf("Expected uuid request id, got %q", r.Header.Get(RequestIDHeader))
		}
		writeJSON(w, dataset.GraphData{
			Nodes: []dataset.Node{{ID: "1", Name: "DC01", Type: "Server", HighValue: true}},
			Edges: []dataset.Edge{{ID: "E1", Source: "A", Target: "DC01", Relation: "AdminTo", Weight: 5}},
		})
	})

	g, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(g.Nodes) != 1 || !g.Nodes[0].HighValue {
		t.Errorf("Unexpected nodes %+v", g.Nodes)
	}
	if len(g.Edges) != 1 || g.Edges[0].Weight != 5 {
		t.Errorf("Unexpected edges %+v", g.Edges)
	}
}

func TestClient_SubnetsAndStartOptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/subnets":
			writeJSON(w, []dataset.Subnet{{ID: "s1", CIDR: "10.0.0.0/24", Label: "Servers"}})
		case "/start-options":
			writeJSON(w, []string{"Mudrek", "Arselan"})
		default:
			http.NotFound(w, r)
		}
	})

	subnets, err := c.Subnets(context.Background())
	if err != nil || len(subnets) != 1 || subnets[0].Label != "Servers" {
		t.Errorf("Unexpected subnets %+v, err %v", subnets, err)
	}
	opts, err := c.StartOptions(context.Background())
	if err != nil || len(opts) != 2 {
		t.Errorf("Unexpected start options %v, err %v", opts, err)
	}
}

func TestClient_Neighbors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req neighborsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad body: %v", err)
		}
		if req.NodeName != "Mutaz" || req.Radius != 2 {
			t.Errorf("Unexpected request %+v", req)
		}
		writeJSON(w, dataset.GraphData{Nodes: []dataset.Node{{Name: "Mutaz"}}})
	})

	g, err := c.Neighbors(context.Background(), "Mutaz", 2)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(g.Nodes) != 1 {
		t.Errorf("Expected 1 node, got %d", len(g.Nodes))
	}

	if _, err := c.Neighbors(context.Background(), "", 2); err == nil {
		t.Error("Expected validation error for empty node name")
	}
}

func TestClient_RunValidatesParams(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		writeJSON(w, dataset.AnalysisResult{})
	})

	bad := dataset.DefaultAnalysisParams(nil)
	if _, err := c.Run(context.Background(), bad); err == nil {
		t.Error("Expected error for empty start nodes")
	}
	bad = dataset.DefaultAnalysisParams([]string{"A"})
	bad.MaxDepth = 0
	if _, err := c.Run(context.Background(), bad); err == nil {
		t.Error("Expected error for max depth below min depth")
	}
	if called {
		t.Error("Invalid params must not reach the backend")
	}
}

func TestClient_Run(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var p dataset.AnalysisParams
		_ = json.NewDecoder(r.Body).Decode(&p)
		if p.TargetNode != "DC01" || p.K != 50 || len(p.StartNodes) != 1 {
			t.Errorf("Unexpected params %+v", p)
		}
		writeJSON(w, dataset.AnalysisResult{
			TotalPaths: 1,
			Paths: []dataset.PathInfo{{
				PathID: "P1",
				Nodes:  []string{"A", "DC01"},
				Edges:  []dataset.PathEdge{{EdgeID: "E1", Source: "A", Target: "DC01", Relation: "AdminTo"}},
			}},
			GlobalRisk: 7.5,
		})
	})

	res, err := c.Run(context.Background(), dataset.DefaultAnalysisParams([]string{"A"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p, ok := res.FindPath("P1"); !ok || p.Edges[0].EdgeID != "E1" {
		t.Errorf("Unexpected result %+v", res)
	}
}

func TestClient_Simulate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, k := range []string{"scenarioId", "mutations", "analysis"} {
			if _, ok := body[k]; !ok {
				t.Errorf("Missing %s in simulate body", k)
			}
		}
		var ms []scenario.Mutation
		_ = json.Unmarshal(body["mutations"], &ms)
		if len(ms) != 1 || ms[0].Type != scenario.RemoveEdge || ms[0].EdgeID != "E13" {
			t.Errorf("Unexpected mutations %+v", ms)
		}
		writeJSON(w, dataset.SimulateResult{
			Before: dataset.AnalysisSummary{TotalPaths: 10, PathIDs: []string{"P1", "P2"}},
			After:  dataset.AnalysisSummary{TotalPaths: 4, PathIDs: []string{"P2"}},
			Delta:  dataset.Delta{PathReduction: 6, RiskReductionPercent: 61.5},
		})
	})

	res, err := c.Simulate(context.Background(), "D", []scenario.Mutation{scenario.NewRemoveEdge("E13")},
		dataset.DefaultAnalysisParams([]string{"A"}))
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if res.Delta.RiskReductionPercent != 61.5 || len(res.After.PathIDs) != 1 {
		t.Errorf("Unexpected result %+v", res)
	}
}

func TestClient_Explain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("pathId")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"detail": "Explanation not found"})
			return
		}
		writeJSON(w, explainResponse{PathID: id, Explanation: "path " + id})
	})

	text, err := c.Explain(context.Background(), "P 1")
	if err != nil || text != "path P 1" {
		t.Errorf("Expected escaped id round trip, got %q, %v", text, err)
	}

	_, err = c.Explain(context.Background(), "missing")
	if !dataset.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("Expected 404 status error, got %v", err)
	}
}

func TestClient_Upload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		if hdr.Filename != "lab.json" || string(b) != `{"nodes":[]}` {
			t.Errorf("Unexpected upload %s %s", hdr.Filename, b)
		}
		writeJSON(w, dataset.DatasetInfo{Status: "ok", Message: "loaded", Nodes: 12})
	})

	info, err := c.Upload(context.Background(), "lab.json", strings.NewReader(`{"nodes":[]}`))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if info.Status != "ok" || info.Nodes != 12 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestClient_UploadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"validation", `{"validationErrors":["edge E3: unknown source","node 7: missing name"]}`,
			"Validation errors:\nedge E3: unknown source\nnode 7: missing name"},
		{"detail", `{"detail":"File too large"}`, "File too large"},
		{"structured detail", `{"detail":{"field":"nodes"}}`, `{"field":"nodes"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Upload(context.Background(), "bad.json", strings.NewReader("{}"))
			if err == nil || err.Error() != tt.want {
				t.Errorf("Expected %q, got %v", tt.want, err)
			}
			if !errors.Is(err, dataset.ErrRequestFailed) {
				t.Errorf("Expected ErrRequestFailed in chain, got %v", err)
			}
		})
	}
}

func TestClient_ResetAndInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/reset-dataset":
			writeJSON(w, dataset.DatasetInfo{Status: "reset", Nodes: 10})
		case r.Method == http.MethodGet && r.URL.Path == "/dataset-info":
			writeJSON(w, dataset.DatasetInfo{Nodes: 10, StartOptions: []string{"A"}})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	info, err := c.Reset(context.Background())
	if err != nil || info.Status != "reset" {
		t.Errorf("Unexpected reset %+v, %v", info, err)
	}
	info, err = c.Info(context.Background())
	if err != nil || len(info.StartOptions) != 1 {
		t.Errorf("Unexpected info %+v, %v", info, err)
	}
}

func TestClient_ServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestClient_BearerToken(t *testing.T) {
	signer, err := NewTokenSigner("s3cret", "pathview", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenSigner failed: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil },
			jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !tok.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if sub, _ := tok.Claims.GetSubject(); sub != "pathview" {
			t.Errorf("Expected subject pathview, got %q", sub)
		}
		writeJSON(w, []string{})
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Signer: signer})
	if _, err := c.StartOptions(context.Background()); err != nil {
		t.Errorf("Signed request rejected: %v", err)
	}

	if _, err := NewTokenSigner("", "x", 0); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("Expected ErrEmptySecret, got %v", err)
	}
}

func TestClient_ContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Load(ctx); err == nil {
		t.Error("Expected error on cancelled context")
	}
}
