package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// View pipeline
	ViewBuildsTotal   *prometheus.CounterVec
	ViewBuildDuration prometheus.Histogram
	RenderNodes       prometheus.Gauge
	RenderEdges       prometheus.Gauge
	RenderClusters    prometheus.Gauge
	DatasetNodes      prometheus.Gauge
	DatasetEdges      prometheus.Gauge
	DatasetVersion    prometheus.Gauge
	StateChangesTotal *prometheus.CounterVec

	// Backend requests, per logical slot
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RequestsInFlight    *prometheus.GaugeVec
	StaleResponsesTotal *prometheus.CounterVec

	// Animation
	AnimationEventsTotal *prometheus.CounterVec
	AnimationStep        prometheus.Gauge

	// View API
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	UIEventsTotal        *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPipelineMetrics()
	r.initRequestMetrics()
	r.initAnimationMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
