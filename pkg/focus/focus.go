package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
)

const (
	MinRadius     = 1
	MaxRadius     = 4
	DefaultRadius = 2

	slot = "focus"
)

// ErrInvalidRadius is returned for a radius outside [MinRadius, MaxRadius]
var ErrInvalidRadius = errors.New("focus radius out of range")

// NeighborQuerier answers k-hop neighborhood queries
type NeighborQuerier interface {
	Neighbors(ctx context.Context, nodeName string, radius int) (dataset.GraphData, error)
}

// State is a snapshot of the resolver
type State struct {
	Node     string `json:"node,omitempty"`
	Radius   int    `json:"radius"`
	Resolved bool   `json:"resolved"`
	Pending  bool   `json:"pending"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

// Active reports whether a focus node is set
func (s State) Active() bool {
	return s.Node != ""
}

// Resolver owns the focus node, the radius and the latest neighbor result.
// Every query is tagged with a sequence number; a response is applied only if
// no newer query was issued since. Query failures are logged and swallowed.
type Resolver struct {
	mu       sync.Mutex
	querier  NeighborQuerier
	node     string
	radius   int
	result   *dataset.GraphData
	issued   uint64
	settled  uint64
	onChange func(State)
	logger   logging.Logger
	metrics  *metrics.Registry
}

// NewResolver creates a resolver with the default radius. logger and reg may be nil.
func NewResolver(q NeighborQuerier, logger logging.Logger, reg *metrics.Registry) *Resolver {
	return &Resolver{
		querier: q,
		radius:  DefaultRadius,
		logger:  logging.OrNop(logger).With(logging.Component("focus")),
		metrics: reg,
	}
}

// OnChange registers a callback fired after every applied change, outside the lock
func (r *Resolver) OnChange(fn func(State)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// SetFocus focuses on name and queries its neighborhood, blocking until the
// response is applied or discarded. An empty name clears the focus immediately
// and invalidates any in-flight query. The previous neighbor result stays
// visible while the query is outstanding.
func (r *Resolver) SetFocus(ctx context.Context, name string) {
	r.mu.Lock()
	r.issued++
	if name == "" {
		r.node = ""
		r.result = nil
		r.settled = r.issued
		r.notifyUnlock()
		return
	}
	r.node = name
	seq, radius := r.issued, r.radius
	r.notifyUnlock()

	r.query(ctx, seq, name, radius)
}

// SetRadius changes the radius and re-queries the current focus node, if any
func (r *Resolver) SetRadius(ctx context.Context, radius int) error {
	if radius < MinRadius || radius > MaxRadius {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidRadius, radius, MinRadius, MaxRadius)
	}

	r.mu.Lock()
	r.radius = radius
	if r.node == "" {
		r.notifyUnlock()
		return nil
	}
	r.issued++
	seq, name := r.issued, r.node
	r.notifyUnlock()

	r.query(ctx, seq, name, radius)
	return nil
}

// Reset clears focus and the cached result, keeping the radius
func (r *Resolver) Reset() {
	r.SetFocus(context.Background(), "")
}

// Current returns the neighbor result to use as pipeline input, or nil when the
// full dataset should be used (no focus, nothing resolved yet, or empty result).
func (r *Resolver) Current() *dataset.GraphData {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.node == "" || r.result == nil || len(r.result.Nodes) == 0 {
		return nil
	}
	return r.result
}

// Active returns the node and edge set that should feed the filter
func (r *Resolver) Active(nodes []dataset.Node, edges []dataset.Edge) ([]dataset.Node, []dataset.Edge) {
	if cur := r.Current(); cur != nil {
		return cur.Nodes, cur.Edges
	}
	return nodes, edges
}

// State returns a snapshot
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Resolver) stateLocked() State {
	s := State{
		Node:    r.node,
		Radius:  r.radius,
		Pending: r.node != "" && r.settled < r.issued,
	}
	if r.node != "" && r.result != nil {
		s.Resolved = true
		s.Nodes = len(r.result.Nodes)
		s.Edges = len(r.result.Edges)
	}
	return s
}

func (r *Resolver) query(ctx context.Context, seq uint64, name string, radius int) {
	var done func(string)
	if r.metrics != nil {
		done = r.metrics.StartRequest(slot)
	}
	finish := func(status string) {
		if done != nil {
			done(status)
		}
	}

	data, err := r.querier.Neighbors(ctx, name, radius)

	r.mu.Lock()
	if seq != r.issued {
		r.mu.Unlock()
		finish(metrics.StatusStale)
		r.logger.Debug("discarding stale neighbor response",
			logging.NodeName(name), logging.Seq(seq), logging.Slot(slot))
		return
	}
	r.settled = seq
	if err != nil {
		r.notifyUnlock()
		finish(metrics.StatusError)
		r.logger.Debug("neighbor query failed",
			logging.NodeName(name), logging.Int("radius", radius), logging.Error(err))
		return
	}
	r.result = &data
	r.notifyUnlock()
	finish(metrics.StatusOK)
}

func (r *Resolver) notifyUnlock() {
	st := r.stateLocked()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
