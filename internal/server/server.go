// Package server exposes the measurement queries and the CO2 calculator over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/carbon"
	"github.com/rshade/llm-energy-api/internal/dataset"
	"github.com/rshade/llm-energy-api/internal/energy"
)

// maxBodyBytes caps request bodies of the POST endpoints.
const maxBodyBytes = 1 << 20

// Predictor is the remote energy prediction used by the CO2 calculator.
type Predictor interface {
	Predict(ctx context.Context, promptText, model, platform string) energy.Prediction
}

// Options configure a Server.
type Options struct {
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string

	// Registerer receives the HTTP metrics; Gatherer backs /metrics.
	// Both nil disables metrics collection and the /metrics route.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server holds the dependencies of every HTTP handler.
type Server struct {
	data      *dataset.Dataset
	predictor Predictor
	estimator carbon.CarbonEstimator
	logger    zerolog.Logger
	opts      Options
	metrics   *httpMetrics
}

// New creates a Server. A nil data set is served as empty.
func New(data *dataset.Dataset, predictor Predictor, estimator carbon.CarbonEstimator, opts Options, logger zerolog.Logger) (*Server, error) {
	if data == nil {
		data = dataset.New(nil, nil)
	}
	metrics, err := newHTTPMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	return &Server{
		data:      data,
		predictor: predictor,
		estimator: estimator,
		logger:    logger.With().Str("component", "server").Logger(),
		opts:      opts,
		metrics:   metrics,
	}, nil
}

// Handler returns the complete HTTP handler: routes, CORS, trace ids and access logs.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	s.route(api, "/health", s.Health, http.MethodGet)
	s.route(api, "/energy-by-model", s.EnergyByModel, http.MethodGet)
	s.route(api, "/energy-timeline", s.EnergyTimeline, http.MethodGet)
	s.route(api, "/energy-efficiency", s.EnergyEfficiency, http.MethodGet)
	s.route(api, "/gpu-cpu-distribution", s.GPUCPUDistribution, http.MethodGet)
	s.route(api, "/calculate-co2", s.CalculateCO2, http.MethodPost)
	s.route(api, "/analyze-prompt", s.AnalyzePrompt, http.MethodPost)
	s.route(api, "/models", s.Models, http.MethodGet)
	s.route(api, "/platforms/{model}", s.Platforms, http.MethodGet)
	s.route(api, "/energy-sources", s.EnergySources, http.MethodGet)

	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// A subrouter resolves its own mismatches, so both routers need the handlers.
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFoundHandler, api.NotFoundHandler = notFound, notFound
	r.MethodNotAllowedHandler, api.MethodNotAllowedHandler = methodNotAllowed, methodNotAllowed

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)

	return s.traceMiddleware(s.accessLog(cors(r)))
}

// route registers h for path and methods, instrumented with the route
// template as metrics label. OPTIONS is answered by the CORS handler before
// routing.
func (s *Server) route(r *mux.Router, path string, h http.HandlerFunc, methods ...string) {
	r.Handle(path, s.metrics.instrument("/api"+path, h)).Methods(methods...)
}
