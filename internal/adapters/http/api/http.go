// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/cutoffs/internal/adapters/http/swagger"
	service "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/domain/reference"
	"github.com/okian/cutoffs/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Forecast(ctx context.Context, cohortSize int, popularity []float64) (service.Forecast, error)
	Tracks() []reference.Track
	TargetYear() int
	Stats() service.Stats
}

// Server wires HTTP routes for the forecasting API.
type Server struct {
	healthHandler  *HealthHandler
	tracksHandler  *TracksHandler
	predictHandler *PredictHandler
	docs           []swagger.Option
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithDocsScript serves the API docs page with the ReDoc bundle at src.
func WithDocsScript(src string) ServerOption {
	return func(s *Server) {
		s.docs = append(s.docs, swagger.WithRedocScript(src))
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(deps),
		tracksHandler:  NewTracksHandler(deps),
		predictHandler: NewPredictHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns a router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/tracks", MetricsMiddleware(s.tracksHandler.HandleTracks, "tracks"))
	r.Post("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	// Use our custom metrics registry to serve metrics
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(r, s.docs...)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
