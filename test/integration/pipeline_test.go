// Package integration exercises the CO2 pipeline end to end: measurement
// files on disk, the HTTP API, the real scoring client and a fake scoring
// deployment.
//
// Run with: go test ./test/integration/... -v
package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/carbon"
	"github.com/rshade/llm-energy-api/internal/dataset"
	"github.com/rshade/llm-energy-api/internal/energy"
	"github.com/rshade/llm-energy-api/internal/scoring"
	"github.com/rshade/llm-energy-api/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "prompt,word_count,energy_consumption_llm_total,energy_consumption_llm_cpu,energy_consumption_llm_gpu,total_duration\n"

// fakeDeployment answers IAM token and prediction requests like a scoring
// deployment. A zero prediction status means 200.
type fakeDeployment struct {
	prediction float64
	status     atomic.Int32
	scores     atomic.Int32
}

func (f *fakeDeployment) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/ml/v4/deployments/dep/predictions", func(w http.ResponseWriter, r *http.Request) {
		f.scores.Add(1)
		if code := f.status.Load(); code != 0 {
			w.WriteHeader(int(code))
			return
		}
		var body struct {
			InputData []struct {
				Fields []string `json:"fields"`
				Values [][]any  `json:"values"`
			} `json:"input_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.InputData) != 1 ||
			len(body.InputData[0].Fields) != scoring.VectorWidth || len(body.InputData[0].Values[0]) != scoring.VectorWidth {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]any{{"fields": []string{"prediction"}, "values": [][]float64{{f.prediction}}}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeMeasurements(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"alpaca_gemma_2b_laptop1.csv": csvHeader +
			"a,10,0.001,0.001,0,1000000000\n" +
			"b,12,0.003,0.002,0,2000000000\n",
		"codefeedback_codellama_70b_workstation.csv": csvHeader +
			"c,200,0.04,0.001,0.03,9000000000\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

// newAPI wires the production components the way the binary does.
func newAPI(t *testing.T, scorer scoring.Scorer) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()

	data, err := dataset.Load(writeMeasurements(t), logger)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	predictor, err := energy.NewPredictor(scorer, energy.Options{Timeout: 2 * time.Second, Registerer: reg}, logger)
	require.NoError(t, err)

	s, err := server.New(data, predictor, carbon.NewEstimator(), server.Options{Registerer: reg, Gatherer: reg}, logger)
	require.NoError(t, err)

	api := httptest.NewServer(s.Handler())
	t.Cleanup(api.Close)
	return api
}

func newScorer(t *testing.T, deployment *httptest.Server) scoring.Scorer {
	t.Helper()
	client, err := scoring.NewWMLClient(scoring.Config{
		URL:          deployment.URL,
		IAMURL:       deployment.URL,
		APIKey:       "key",
		SpaceID:      "space",
		DeploymentID: "dep",
	}, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func calculate(t *testing.T, api *httptest.Server, body string) carbon.Estimate {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, api.URL+"/api/calculate-co2", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var est carbon.Estimate
	require.NoError(t, json.Unmarshal(raw, &est))
	return est
}

func TestPipeline_RemotePrediction(t *testing.T) {
	deployment := &fakeDeployment{prediction: 0.000123}
	api := newAPI(t, newScorer(t, deployment.start(t)))

	est := calculate(t, api, `{"model":"alpaca_gemma_2b","platform":"laptop1","energy_source":"wind","prompt":"What is machine learning?"}`)
	assert.Equal(t, carbon.MethodRemotePrediction, est.Method)
	assert.Equal(t, 0.000123, est.EnergyKWh)
	assert.Equal(t, 0.000861, est.CO2Grams)
	assert.Equal(t, 0.000001, est.CO2Kg)
	assert.Equal(t, 7.0, est.CO2PerKWhFactor)
	assert.Equal(t, int32(1), deployment.scores.Load())
}

func TestPipeline_FallbackOnDeploymentFailure(t *testing.T) {
	deployment := &fakeDeployment{prediction: 1}
	deployment.status.Store(http.StatusServiceUnavailable)
	api := newAPI(t, newScorer(t, deployment.start(t)))

	est := calculate(t, api, `{"model":"alpaca_gemma_2b","platform":"laptop1","energy_source":"coal","prompt":"hi"}`)
	assert.Equal(t, carbon.MethodStatisticalFallback, est.Method)
	assert.Equal(t, 0.002, est.EnergyKWh)
	assert.Equal(t, 1.64, est.CO2Grams)
	assert.Equal(t, 0.00164, est.CO2Kg)
}

func TestPipeline_FallbackWithoutScorer(t *testing.T) {
	api := newAPI(t, nil)

	tests := []struct {
		name      string
		body      string
		wantKWh   float64
		wantGrams float64
	}{
		{
			name:      "exact configuration",
			body:      `{"model":"codellama_70b","platform":"workstation","energy_source":"gas","prompt":"hi"}`,
			wantKWh:   0.04,
			wantGrams: 19.6,
		},
		{
			name:      "model only",
			body:      `{"model":"alpaca_gemma_2b","platform":"server","energy_source":"nuclear","prompt":"hi"}`,
			wantKWh:   0.002,
			wantGrams: 0.012,
		},
		{
			name:      "global average",
			body:      `{"model":"mistral_7b","platform":"server","energy_source":"mix_france","prompt":"hi"}`,
			wantKWh:   0.044 / 3,
			wantGrams: 0.044 / 3 * 32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := calculate(t, api, tt.body)
			assert.Equal(t, carbon.MethodStatisticalFallback, est.Method)
			assert.InDelta(t, tt.wantKWh, est.EnergyKWh, 1e-6)
			assert.InDelta(t, tt.wantGrams, est.CO2Grams, 1e-6)
		})
	}
}
