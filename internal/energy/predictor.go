// Package energy predicts the inference energy of a prompt by scoring its
// feature vector against the remote energy model.
package energy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/prompt"
	"github.com/rshade/llm-energy-api/internal/scoring"
)

// ErrNoPrediction wraps the reason of every unsuccessful Prediction.
var ErrNoPrediction = errors.New("no energy prediction")

// Outcome labels of the predictions counter.
const (
	OutcomeRemote        = "remote"
	OutcomeNotConfigured = "not_configured"
	OutcomeFailed        = "failed"
)

// Prediction is the result of one Predict call. KWh is only meaningful when OK
// is true; otherwise Reason says why the caller has to fall back.
type Prediction struct {
	KWh    float64
	OK     bool
	Reason string
}

// Err returns nil for a successful prediction and an ErrNoPrediction wrap otherwise.
func (p Prediction) Err() error {
	if p.OK {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoPrediction, p.Reason)
}

// Options configure a Predictor.
type Options struct {
	// Timeout bounds a single scoring call. Zero uses scoring.DefaultTimeout.
	Timeout time.Duration

	// TestMode logs the full feature vector of every request at debug level.
	TestMode bool

	// Registerer receives the predictions counter. Nil skips registration.
	Registerer prometheus.Registerer
}

// Predictor turns prompts into energy predictions.
type Predictor struct {
	scorer   scoring.Scorer
	timeout  time.Duration
	testMode bool
	logger   zerolog.Logger
	outcomes *prometheus.CounterVec
}

// NewPredictor creates a Predictor. A nil scorer is valid: every prediction
// then fails with scoring.ErrNotConfigured as the reason.
func NewPredictor(scorer scoring.Scorer, opts Options, logger zerolog.Logger) (*Predictor, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = scoring.DefaultTimeout
	}

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_energy_predictions_total",
		Help: "Energy predictions by outcome.",
	}, []string{"outcome"})
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(outcomes); err != nil {
			return nil, fmt.Errorf("registering predictions counter: %w", err)
		}
	}

	return &Predictor{
		scorer:   scorer,
		timeout:  timeout,
		testMode: opts.TestMode,
		logger:   logger.With().Str("component", "energy").Logger(),
		outcomes: outcomes,
	}, nil
}

// Predict extracts the features of promptText, assembles the vector for
// model and platform and scores it once. It never returns an error: every
// failure becomes a Prediction with OK false.
func (p *Predictor) Predict(ctx context.Context, promptText, model, platform string) Prediction {
	if p.scorer == nil {
		p.outcomes.WithLabelValues(OutcomeNotConfigured).Inc()
		p.logger.Debug().
			Str("model", model).
			Str("platform", platform).
			Msg("Scoring client not configured, skipping remote prediction")
		return Prediction{Reason: scoring.ErrNotConfigured.Error()}
	}

	vector := scoring.BuildVector(prompt.Analyze(promptText), model, platform, promptText)
	if p.testMode {
		p.logger.Debug().
			Strs("fields", scoring.Columns()).
			Interface("values", vector.Values()).
			Msg("Feature vector")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	kwh, err := p.scorer.Score(ctx, vector)
	elapsed := time.Since(start)
	if err != nil {
		p.outcomes.WithLabelValues(OutcomeFailed).Inc()
		p.logger.Warn().
			Err(err).
			Str("model", model).
			Str("platform", platform).
			Dur("elapsed", elapsed).
			Msg("Remote energy prediction failed")
		return Prediction{Reason: err.Error()}
	}

	p.outcomes.WithLabelValues(OutcomeRemote).Inc()
	p.logger.Info().
		Str("model", model).
		Str("platform", platform).
		Float64("energy_kwh", kwh).
		Dur("elapsed", elapsed).
		Msg("Remote energy prediction")
	return Prediction{KWh: kwh, OK: true}
}
