package server

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/carbon"
	"github.com/rshade/llm-energy-api/internal/prompt"
)

const (
	msgNoData        = "No data available"
	msgMissingParams = "Missing required parameters"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string   `json:"status"`
	TotalRows int      `json:"total_rows"`
	Models    []string `json:"models"`
	Platforms []string `json:"platforms"`
}

// CalculateRequest is the body of POST /api/calculate-co2.
type CalculateRequest struct {
	Model        string `json:"model"`
	Platform     string `json:"platform"`
	EnergySource string `json:"energy_source"`
	Prompt       string `json:"prompt"`
}

// AnalyzeRequest is the body of POST /api/analyze-prompt.
type AnalyzeRequest struct {
	Prompt string `json:"prompt"`
}

// Health handles GET /api/health
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	summary := s.data.Summary()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		TotalRows: summary.TotalRows,
		Models:    summary.Models,
		Platforms: summary.Platforms,
	})
}

// EnergyByModel handles GET /api/energy-by-model
func (s *Server) EnergyByModel(w http.ResponseWriter, r *http.Request) {
	if s.data.Empty() {
		writeError(w, http.StatusInternalServerError, msgNoData)
		return
	}
	rows, err := s.data.EnergyByModel()
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Energy by model failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// EnergyTimeline handles GET /api/energy-timeline
func (s *Server) EnergyTimeline(w http.ResponseWriter, _ *http.Request) {
	if s.data.Empty() {
		writeError(w, http.StatusInternalServerError, msgNoData)
		return
	}
	writeJSON(w, http.StatusOK, s.data.Timeline())
}

// EnergyEfficiency handles GET /api/energy-efficiency
func (s *Server) EnergyEfficiency(w http.ResponseWriter, _ *http.Request) {
	if s.data.Empty() {
		writeError(w, http.StatusInternalServerError, msgNoData)
		return
	}
	writeJSON(w, http.StatusOK, s.data.Efficiency())
}

// GPUCPUDistribution handles GET /api/gpu-cpu-distribution
func (s *Server) GPUCPUDistribution(w http.ResponseWriter, _ *http.Request) {
	if s.data.Empty() {
		writeError(w, http.StatusInternalServerError, msgNoData)
		return
	}
	writeJSON(w, http.StatusOK, s.data.GPUCPUDistribution())
}

// CalculateCO2 handles POST /api/calculate-co2
//
// Energy comes from the remote prediction when it succeeds and from the
// historical average for (model, platform) otherwise.
func (s *Server) CalculateCO2(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req CalculateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid calculate-co2 body")
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	if req.Model == "" || req.Platform == "" || req.EnergySource == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	var kwh float64
	method := carbon.MethodRemotePrediction
	prediction := s.predictor.Predict(r.Context(), req.Prompt, req.Model, req.Platform)
	if prediction.OK {
		kwh = prediction.KWh
	} else {
		kwh = s.data.AverageEnergy(req.Model, req.Platform)
		method = carbon.MethodStatisticalFallback
		logger.Warn().
			Err(prediction.Err()).
			Str("model", req.Model).
			Str("platform", req.Platform).
			Float64("energy_kwh", kwh).
			Msg("Falling back to historical average")
	}

	estimate := s.estimator.Estimate(kwh, req.EnergySource, method)
	logger.Info().
		Str("model", req.Model).
		Str("platform", req.Platform).
		Str("energy_source", req.EnergySource).
		Str("method", string(method)).
		Float64("co2_grams", estimate.CO2Grams).
		Msg("CO2 calculated")
	writeJSON(w, http.StatusOK, estimate)
}

// AnalyzePrompt handles POST /api/analyze-prompt
func (s *Server) AnalyzePrompt(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	writeJSON(w, http.StatusOK, prompt.Analyze(req.Prompt))
}

// Models handles GET /api/models
func (s *Server) Models(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Models())
}

// Platforms handles GET /api/platforms/{model}
func (s *Server) Platforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Platforms(mux.Vars(r)["model"]))
}

// EnergySources handles GET /api/energy-sources
func (s *Server) EnergySources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, carbon.EnergySources())
}
