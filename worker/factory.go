package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/snow-ghost/dosage/core"
	"github.com/snow-ghost/dosage/pkg/limiter"
	"github.com/snow-ghost/dosage/pkg/observability"
	"github.com/snow-ghost/dosage/store"
)

// Service wires the store, optimizer and HTTP front end from a Config
type Service struct {
	config    *Config
	obs       *observability.Manager
	store     core.RunStore
	optimizer *Optimizer
	server    *http.Server
}

// OpenStore opens the run store named by path; "memory" keeps runs in process
func OpenStore(path string) (core.RunStore, error) {
	if path == "memory" {
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewService creates a service from config
func NewService(config *Config) (*Service, error) {
	obs, err := observability.NewManager(observability.Config{
		ServiceName:    "dosage",
		ServiceVersion: "1.0.0",
		Environment:    config.Environment,
		JaegerEndpoint: config.JaegerEndpoint,
		LogLevel:       config.LogLevel,
		LogFormat:      config.LogFormat,
		LogOutput:      "stdout",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}

	runStore, err := OpenStore(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	optimizer, err := NewOptimizer(OptimizerOptions{
		Workers:   config.Workers,
		CacheSize: config.CacheSize,
		Limits: Limits{
			MaxPopSize:     config.MaxPopSize,
			MaxGenerations: config.MaxGenerations,
			MaxWork:        config.MaxWork,
		},
		RunTimeout:    config.RunTimeout,
		Store:         runStore,
		Observability: obs,
	})
	if err != nil {
		runStore.Close()
		return nil, err
	}

	rl := limiter.NewRateLimiter(limiter.RateLimitConfig{
		RequestsPerMinute: float64(config.RequestsPerMinute),
		Burst:             config.RateBurst,
		IdleTimeout:       config.RateIdleTimeout,
	})
	ingestor := NewIngestor(optimizer, rl, obs)
	ingestor.RunTimeout = config.RunTimeout

	return &Service{
		config:    config,
		obs:       obs,
		store:     runStore,
		optimizer: optimizer,
		server: &http.Server{
			Addr:              ":" + config.Port,
			Handler:           ingestor.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      config.RunTimeout + 5*time.Second,
		},
	}, nil
}

// Serve listens until ctx is cancelled, then shuts down gracefully
func (s *Service) Serve(ctx context.Context) error {
	logger := s.obs.GetLogger()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dosage service starting", "port", s.config.Port, "db", s.config.DBPath)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("dosage service shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Close releases the store, cache and telemetry exporters
func (s *Service) Close(ctx context.Context) error {
	s.optimizer.Close()
	storeErr := s.store.Close()
	obsErr := s.obs.Shutdown(ctx)
	return errors.Join(storeErr, obsErr)
}
