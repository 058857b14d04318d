// Package viewapi exposes the dashboard controller over HTTP: the render
// model, the state snapshot, UI events, a GraphQL endpoint, a change stream
// and Prometheus metrics.
package viewapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/logging"
	"github.com/dd0wney/cluso-pathview/pkg/metrics"
	"github.com/dd0wney/cluso-pathview/pkg/pubsub"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxUploadBytes caps a dataset upload
const MaxUploadBytes = 64 << 20

// Options configures a Server. Zero values get defaults.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Server routes view API requests to a controller
type Server struct {
	ctrl    *controller.Controller
	logger  logging.Logger
	metrics *metrics.Registry
	handler http.Handler

	done      chan struct{}
	closeOnce sync.Once
}

// New builds the routes and the GraphQL schema
func New(ctrl *controller.Controller, opts Options) (*Server, error) {
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	s := &Server{
		ctrl:    ctrl,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("viewapi")),
		metrics: reg,
		done:    make(chan struct{}),
	}

	schema, err := NewSchema(ctrl)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	hc := newHealthChecker(ctrl)
	mux.HandleFunc("GET /health", hc.HTTPHandler())
	mux.HandleFunc("GET /health/ready", hc.ReadinessHandler())
	mux.HandleFunc("GET /health/live", hc.LivenessHandler())
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /presets", s.handlePresets)
	mux.HandleFunc("POST /events", s.handleEvent)
	mux.HandleFunc("POST /dataset", s.handleUpload)
	mux.HandleFunc("GET /subscribe", s.handleSubscribe)
	mux.Handle("/graphql", NewGraphQLHandler(schema))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	s.handler = s.loggingMiddleware(s.metricsMiddleware(mux))
	return s, nil
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close ends every open change stream
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scenario.Presets())
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.metrics.RecordUIEvent("invalid", metrics.StatusError)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := Dispatch(detach(r.Context()), s.ctrl, ev); err != nil {
		s.metrics.RecordUIEvent(ev.Type, metrics.StatusError)
		status := http.StatusUnprocessableEntity
		if ev.Type == "" || errors.Is(err, ErrUnknownEvent) {
			status = http.StatusBadRequest
		}
		s.logger.Debug("event rejected", logging.String("type", ev.Type), logging.Error(err))
		writeError(w, status, err)
		return
	}

	s.metrics.RecordUIEvent(ev.Type, metrics.StatusOK)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing dataset file: %w", err))
		return
	}
	defer file.Close()

	if err := s.ctrl.UploadDataset(detach(r.Context()), header.Filename, file); err != nil {
		s.metrics.RecordUIEvent("uploadDataset", metrics.StatusError)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.metrics.RecordUIEvent("uploadDataset", metrics.StatusOK)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleSubscribe streams controller changes as server-sent events
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	topic := pubsub.Topic(r.URL.Query().Get("topic"))
	switch topic {
	case "":
		topic = pubsub.TopicState
	case pubsub.TopicState, pubsub.TopicAnimation, pubsub.TopicError:
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown topic %q", topic))
		return
	}

	sub, err := s.ctrl.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case ch, ok := <-sub.Channel():
			if !ok {
				return
			}
			data, err := json.Marshal(ch)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ch.Reason, data)
			flusher.Flush()
		}
	}
}

// detach keeps request values but not cancellation, so a client that hangs up
// mid-request does not turn into an error banner
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
