package metrics

import (
	"time"
)

// Request outcomes
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusStale = "stale"
)

// RecordViewBuild records one pipeline run and the size of its output
func (r *Registry) RecordViewBuild(highlight string, nodes, edges, clusters int, duration time.Duration) {
	r.ViewBuildsTotal.WithLabelValues(highlight).Inc()
	r.ViewBuildDuration.Observe(duration.Seconds())
	r.RenderNodes.Set(float64(nodes))
	r.RenderEdges.Set(float64(edges))
	r.RenderClusters.Set(float64(clusters))
}

// RecordDataset records the size and version of the live snapshot
func (r *Registry) RecordDataset(nodes, edges int, version uint64) {
	r.DatasetNodes.Set(float64(nodes))
	r.DatasetEdges.Set(float64(edges))
	r.DatasetVersion.Set(float64(version))
}

// RecordStateChange counts an applied controller change
func (r *Registry) RecordStateChange(reason string) {
	r.StateChangesTotal.WithLabelValues(reason).Inc()
}

// StartRequest marks a backend request in flight and returns a func that
// records its outcome
func (r *Registry) StartRequest(slot string) func(status string) {
	start := time.Now()
	r.RequestsInFlight.WithLabelValues(slot).Inc()

	return func(status string) {
		r.RequestsInFlight.WithLabelValues(slot).Dec()
		r.RequestsTotal.WithLabelValues(slot, status).Inc()
		r.RequestDuration.WithLabelValues(slot).Observe(time.Since(start).Seconds())
		if status == StatusStale {
			r.StaleResponsesTotal.WithLabelValues(slot).Inc()
		}
	}
}

// RecordAnimation records a scheduler event and the resulting step
func (r *Registry) RecordAnimation(event string, step int) {
	r.AnimationEventsTotal.WithLabelValues(event).Inc()
	r.AnimationStep.Set(float64(step))
}

// RecordHTTPRequest records a view API request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUIEvent counts an incoming UI event
func (r *Registry) RecordUIEvent(eventType, status string) {
	r.UIEventsTotal.WithLabelValues(eventType, status).Inc()
}
