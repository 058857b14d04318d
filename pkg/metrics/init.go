package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pathview"

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)

	r.ViewBuildsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_builds_total",
			Help:      "Render models built, by winning highlight source",
		},
		[]string{"highlight"},
	)

	r.ViewBuildDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_build_duration_seconds",
			Help:      "Time to run the filter, cluster, highlight and assembly pipeline",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
		},
	)

	r.RenderNodes = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "render_nodes",
		Help:      "Nodes in the last built render model",
	})
	r.RenderEdges = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "render_edges",
		Help:      "Edges in the last built render model",
	})
	r.RenderClusters = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "render_clusters",
		Help:      "Collapsed subnet pseudo-nodes in the last built render model",
	})

	r.DatasetNodes = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_nodes",
		Help:      "Nodes in the loaded dataset",
	})
	r.DatasetEdges = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_edges",
		Help:      "Edges in the loaded dataset",
	})
	r.DatasetVersion = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_snapshot_version",
		Help:      "Version of the live dataset snapshot",
	})

	r.StateChangesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "Applied controller state changes, by reason",
		},
		[]string{"reason"},
	)
}

func (r *Registry) initRequestMetrics() {
	f := promauto.With(r.registry)

	r.RequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend requests by slot and outcome",
		},
		[]string{"slot", "status"},
	)

	r.RequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Backend request latency by slot",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"slot"},
	)

	r.RequestsInFlight = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_requests_in_flight",
			Help:      "Outstanding backend requests by slot",
		},
		[]string{"slot"},
	)

	r.StaleResponsesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request for the same slot was issued",
		},
		[]string{"slot"},
	)
}

func (r *Registry) initAnimationMetrics() {
	f := promauto.With(r.registry)

	r.AnimationEventsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animation_events_total",
			Help:      "Animation state machine events",
		},
		[]string{"event"},
	)

	r.AnimationStep = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "animation_step",
		Help:      "Current animation step, -1 when idle",
	})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "View API requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "View API latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "View API requests being served",
	})

	r.UIEventsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ui_events_total",
			Help:      "UI events received, by type and outcome",
		},
		[]string{"type", "status"},
	)
}
