package observability

import (
	"context"
	"time"

	"github.com/snow-ghost/dosage/core"
	"github.com/snow-ghost/dosage/ga"
	"github.com/snow-ghost/dosage/pkg/logging"
	"github.com/snow-ghost/dosage/pkg/metrics"
	"github.com/snow-ghost/dosage/pkg/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Manager manages all observability components
type Manager struct {
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
	LogOutput      string
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	})
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:     config.LogLevel,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		AddCaller: false,
		AddStack:  false,
	})
	if err != nil {
		return nil, err
	}

	return New(metrics.NewPrometheusMetrics(), tracer, logger), nil
}

// New assembles a manager from existing components
func New(m *metrics.PrometheusMetrics, tracer *tracing.Tracer, logger *logging.Logger) *Manager {
	return &Manager{metrics: m, tracer: tracer, logger: logger}
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// RunObserver follows one run: a span, a run-scoped logger and metrics
type RunObserver struct {
	span    trace.Span
	logger  *logging.Logger
	metrics *metrics.PrometheusMetrics
	start   time.Time
}

// StartRun opens the span and logs the parameters of a run
func (m *Manager) StartRun(ctx context.Context, runID string, cfg ga.Config) (context.Context, *RunObserver) {
	params := map[string]interface{}{
		"pop_size":       cfg.PopSize,
		"generations":    cfg.Generations,
		"elite_frac":     cfg.EliteFrac,
		"tournament_k":   cfg.TournamentK,
		"crossover_rate": cfg.CrossoverRate,
		"mutation_std":   cfg.MutationStd,
		"rng_seed":       cfg.RNGSeed,
	}

	spanAttrs := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		spanAttrs["ga."+k] = v
	}
	spanAttrs["ga.run_id"] = runID
	ctx, span := m.tracer.StartRunSpan(ctx, spanAttrs)

	logger := m.logger.WithRunID(runID)
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		logger = logger.WithFields(map[string]interface{}{"trace_id": traceID})
	}
	logger.LogRunStart(ctx, params)

	return ctx, &RunObserver{
		span:    span,
		logger:  logger,
		metrics: m.metrics,
		start:   time.Now(),
	}
}

// OnGeneration matches ga.Engine.OnGeneration
func (o *RunObserver) OnGeneration(ctx context.Context, stats ga.GenerationStats) {
	o.metrics.RecordGeneration(stats.Improved)
	o.logger.LogGeneration(stats.Generation, stats.GenerationBest, stats.RunningBest, stats.Improved)
	tracing.AddGenerationEvent(o.span, stats.Generation, stats.RunningBest, stats.Improved)
}

// End closes the run span and records the outcome
func (o *RunObserver) End(ctx context.Context, res *core.Result, err error) time.Duration {
	duration := time.Since(o.start)
	defer o.span.End()

	if err != nil {
		tracing.RecordSpanError(o.span, err)
		o.metrics.RecordRun("error", duration, 0)
		o.logger.Error("run failed", "error", err)
		return duration
	}

	tracing.RecordSpanSuccess(o.span)
	o.metrics.RecordRun("success", duration, res.BestFitness)
	o.logger.LogRunEnd(ctx, res.BestFitness, len(res.History), duration)
	return duration
}

// Shutdown shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	if err := m.tracer.Shutdown(ctx); err != nil {
		return err
	}
	// stdout/stderr sync errors are expected on some platforms
	_ = m.logger.Sync()
	return nil
}
