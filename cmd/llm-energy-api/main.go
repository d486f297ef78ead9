package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/carbon"
	"github.com/rshade/llm-energy-api/internal/dataset"
	"github.com/rshade/llm-energy-api/internal/energy"
	"github.com/rshade/llm-energy-api/internal/probe"
	"github.com/rshade/llm-energy-api/internal/scoring"
	"github.com/rshade/llm-energy-api/internal/server"
)

const (
	serviceName     = "llm-energy-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()

	cfg, err := loadConfig(bootstrap)
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// newScorer returns the remote scoring client, or nil when it is not
// configured. The gap is logged once here, not per request.
func newScorer(cfg scoring.Config, logger zerolog.Logger) (scoring.Scorer, error) {
	client, err := scoring.NewWMLClient(cfg, logger)
	if errors.Is(err, scoring.ErrNotConfigured) {
		logger.Warn().Err(err).Msg("Remote scoring disabled; CO2 estimates use historical averages")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.DeploymentID == "" {
		logger.Warn().Msg("IBM_WML_DEPLOYMENT_ID is not set; every prediction will fall back")
	}
	return client, nil
}

func run(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	data, err := dataset.Load(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("loading measurements: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scorer, err := newScorer(cfg.Scoring, logger)
	if err != nil {
		return err
	}
	predictor, err := energy.NewPredictor(scorer, energy.Options{
		Timeout:    cfg.Scoring.Timeout,
		TestMode:   cfg.TestMode,
		Registerer: reg,
	}, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(data, predictor, carbon.NewEstimator(), server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Registerer:     reg,
		Gatherer:       reg,
	}, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var health *probe.Server
	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			return fmt.Errorf("listening for health probe: %w", err)
		}
		health = probe.New(logger)
		go func() {
			if err := health.Serve(lis); err != nil {
				logger.Error().Err(err).Msg("Health probe stopped")
			}
		}()
		health.SetServing(true)
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		logger.Info().Msg("Received shutdown signal")
		if health != nil {
			health.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
		close(shutdownDone)
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Int("rows", data.Len()).
		Bool("remote_scoring", scorer != nil).
		Msg("Starting LLM energy API")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}
