package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/animation"
	"github.com/dd0wney/cluso-pathview/pkg/dataset"
	"github.com/dd0wney/cluso-pathview/pkg/filter"
	"github.com/dd0wney/cluso-pathview/pkg/focus"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
	"github.com/dd0wney/cluso-pathview/pkg/pubsub"
	"github.com/dd0wney/cluso-pathview/pkg/viewmodel"
	"github.com/google/uuid"
)

// Request slots. A response is applied only if it answers the latest request
// issued for its slot.
const (
	slotGraph       = "graph"
	slotAnalysis    = "analysis"
	slotScenario    = "scenario"
	slotExplanation = "explanation"
	slotDataset     = "dataset"
)

// defaultStartCount is how many start options seed an analysis when none are given
const defaultStartCount = 4

// Options configures a Controller. Zero values get defaults.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Clock   animation.Clock
	Layout  *viewmodel.Layout
	Broker  *pubsub.Broker[Change]

	// NodeFilters and EdgeFilters replace the package defaults, both at
	// start and on ResetFilters
	NodeFilters *filter.NodeFilters
	EdgeFilters *filter.EdgeFilters
}

// Controller is the single owner of dashboard state. UI code calls its methods
// and re-renders on published Changes; it never mutates state directly.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	store   *dataset.Store
	focus   *focus.Resolver
	anim    *animation.Scheduler
	broker  *pubsub.Broker[Change]
	logger  logging.Logger
	metrics *metrics.Registry
	layout  viewmodel.Layout

	changeSeq atomic.Uint64
	issued    map[string]uint64
	settled   map[string]uint64

	selectedPathID  string
	scenarioLabel   string
	explanation     string
	showExplanation bool
	datasetInfo     *dataset.DatasetInfo
	errMsg          string
	clusterView     bool
	expanded        map[string]bool
	nodeFilters     filter.NodeFilters
	edgeFilters     filter.EdgeFilters

	defaultNodeFilters filter.NodeFilters
	defaultEdgeFilters filter.EdgeFilters
}

// New creates a controller over backend with default filters and an empty dataset
func New(backend Backend, opts Options) *Controller {
	logger := logging.OrNop(opts.Logger).With(logging.Component("controller"))
	layout := viewmodel.DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	broker := opts.Broker
	if broker == nil {
		broker = pubsub.NewBroker[Change](pubsub.DefaultBuffer)
	}
	nf, ef := filter.DefaultNodeFilters(), filter.DefaultEdgeFilters()
	if opts.NodeFilters != nil {
		nf = *opts.NodeFilters
	}
	if opts.EdgeFilters != nil {
		ef = *opts.EdgeFilters
	}

	c := &Controller{
		backend:     backend,
		store:       dataset.NewStore(),
		focus:       focus.NewResolver(backend, opts.Logger, opts.Metrics),
		anim:        animation.NewScheduler(opts.Clock),
		broker:      broker,
		logger:      logger,
		metrics:     opts.Metrics,
		layout:      layout,
		issued:      make(map[string]uint64),
		settled:     make(map[string]uint64),
		expanded:    make(map[string]bool),
		nodeFilters: nf,
		edgeFilters: ef,

		defaultNodeFilters: nf,
		defaultEdgeFilters: ef,
	}

	c.focus.OnChange(func(focus.State) { c.publish(ReasonFocus) })
	c.anim.OnChange(func(s animation.Snapshot, ev animation.Event) {
		if c.metrics != nil {
			c.metrics.RecordAnimation(string(ev), s.Step)
		}
		c.publish(ReasonAnimation)
	})
	return c
}

// Subscribe registers for change notifications on topic
func (c *Controller) Subscribe(ctx context.Context, topic pubsub.Topic) (*pubsub.Subscription[Change], error) {
	return c.broker.Subscribe(ctx, topic)
}

// Close stops animation and closes every subscription
func (c *Controller) Close() {
	c.anim.Stop()
	c.broker.Shutdown()
}

// Ping checks that the backend answers, without touching dashboard state
func (c *Controller) Ping(ctx context.Context) error {
	_, err := c.backend.Info(ctx)
	return err
}

// DroppedChanges counts notifications lost to slow subscribers
func (c *Controller) DroppedChanges() uint64 {
	return c.broker.Dropped()
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	// Focus and animation own their locks; read them outside ours.
	fs := c.focus.State()
	as := c.anim.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.store.Current()
	expanded := make(map[string]bool, len(c.expanded))
	for k, v := range c.expanded {
		expanded[k] = v
	}
	return State{
		Dataset:           snap,
		DatasetVersion:    snap.Version,
		StartOptions:      snap.StartOptions,
		Analysis:          snap.Analysis,
		SelectedPathID:    c.selectedPathID,
		Scenario:          snap.Scenario,
		ScenarioLabel:     c.scenarioLabel,
		ScenarioHighlight: snap.Highlight,
		Explanation:       c.explanation,
		ShowExplanation:   c.showExplanation,
		Loading:           c.pendingLocked(slotAnalysis) || c.pendingLocked(slotScenario),
		DatasetUploading:  c.pendingLocked(slotDataset),
		DatasetInfo:       c.datasetInfo,
		Error:             c.errMsg,
		ClusterView:       c.clusterView,
		ExpandedSubnets:   expanded,
		NodeFilters:       c.nodeFilters,
		EdgeFilters:       c.edgeFilters,
		Focus:             fs,
		Animation:         as,
	}
}

// View runs the derivation pipeline over the current state
func (c *Controller) View() *viewmodel.Model {
	st := c.Snapshot()
	return c.build(st)
}

func (c *Controller) build(st State) *viewmodel.Model {
	start := time.Now()
	m := viewmodel.Build(viewmodel.Input{
		Nodes:           st.Dataset.Nodes,
		Edges:           st.Dataset.Edges,
		Subnets:         st.Dataset.Subnets,
		Focus:           c.focus.Current(),
		Analysis:        st.Analysis,
		NodeFilters:     st.NodeFilters,
		EdgeFilters:     st.EdgeFilters,
		ClusterView:     st.ClusterView,
		ExpandedSubnets: st.ExpandedSubnets,
		SelectedPathID:  st.SelectedPathID,
		AnimatingPathID: st.Animation.PathID,
		AnimationStep:   st.Animation.Step,
		Scenario:        st.ScenarioHighlight,
		Layout:          c.layout,
	})
	if c.metrics != nil {
		c.metrics.RecordViewBuild(string(m.Highlight), m.Stats.Nodes, m.Stats.Edges, m.Stats.Clusters, time.Since(start))
	}
	return m
}

// publish announces an applied change. It must not be called with c.mu held
// by code that the focus or animation callbacks can re-enter.
func (c *Controller) publish(reason Reason) {
	ch := Change{
		Seq:    c.changeSeq.Add(1),
		ID:     uuid.NewString(),
		Reason: reason,
	}
	if c.metrics != nil {
		c.metrics.RecordStateChange(string(reason))
	}
	topic := pubsub.TopicState
	switch reason {
	case ReasonAnimation:
		topic = pubsub.TopicAnimation
	case ReasonError:
		c.broker.Publish(pubsub.TopicError, ch)
	}
	c.broker.Publish(topic, ch)
}

func (c *Controller) beginLocked(slot string) uint64 {
	c.issued[slot]++
	return c.issued[slot]
}

// supersedeLocked invalidates any in-flight request for slot
func (c *Controller) supersedeLocked(slot string) {
	c.issued[slot]++
	c.settled[slot] = c.issued[slot]
}

// settleLocked marks seq answered. It reports false for a stale response.
func (c *Controller) settleLocked(slot string, seq uint64) bool {
	if seq != c.issued[slot] {
		return false
	}
	c.settled[slot] = seq
	return true
}

func (c *Controller) pendingLocked(slot string) bool {
	return c.settled[slot] < c.issued[slot]
}

// request starts metrics for a backend call
func (c *Controller) request(slot string) func(string) {
	if c.metrics == nil {
		return func(string) {}
	}
	return c.metrics.StartRequest(slot)
}

// stale logs and records a dropped response. Call with c.mu released.
func (c *Controller) stale(slot string, seq uint64, finish func(string)) {
	finish(metrics.StatusStale)
	c.logger.Debug("discarding stale response", logging.Slot(slot), logging.Seq(seq))
}

// failUnlock records a failed request that is still current, and releases c.mu
func (c *Controller) failUnlock(slot string, err error, finish func(string)) error {
	c.errMsg = err.Error()
	c.mu.Unlock()
	finish(metrics.StatusError)
	c.logger.Warn("backend request failed", logging.Slot(slot), logging.Error(err))
	c.publish(ReasonError)
	return err
}

func (c *Controller) startNodesLocked() []string {
	opts := c.store.Current().StartOptions
	n := min(defaultStartCount, len(opts))
	return append([]string(nil), opts[:n]...)
}
