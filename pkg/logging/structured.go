package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger pairs an slog logger for lifecycle messages with a zap logger
// for the per-generation hot path.
type Logger struct {
	slog *slog.Logger
	zap  *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	AddCaller bool
	AddStack  bool
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	w := outputWriter(config.Output)

	// Create slog logger
	slogLevel := parseSlogLevel(config.Level)
	var handler slog.Handler
	if config.Format == "console" {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.Kitchen,
			AddSource:  config.AddCaller,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slogLevel,
			AddSource: config.AddCaller,
		})
	}
	slogLogger := slog.New(handler)

	// Create zap logger
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = zapEncoding(config.Format)
	if zapConfig.Encoding == "console" {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.OutputPaths = []string{outputPath(config.Output)}
	zapConfig.ErrorOutputPaths = []string{outputPath(config.Output)}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		slog: slogLogger,
		zap:  zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
		zap:  zap.NewNop(),
	}
}

func outputWriter(output string) io.Writer {
	if output == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func outputPath(output string) string {
	if output == "stderr" {
		return "stderr"
	}
	return "stdout"
}

func zapEncoding(format string) string {
	if format == "console" {
		return "console"
	}
	return "json"
}

// parseSlogLevel parses slog level from string
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithRunID adds the run ID to both loggers
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		slog: l.slog.With("run_id", runID),
		zap:  l.zap.With(zap.String("run_id", runID)),
	}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	slogAttrs := make([]any, 0, len(fields)*2)
	zapFields := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		slogAttrs = append(slogAttrs, key, value)
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return &Logger{
		slog: l.slog.With(slogAttrs...),
		zap:  l.zap.With(zapFields...),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
}

// LogRunStart logs the parameters of a run about to start
func (l *Logger) LogRunStart(ctx context.Context, params map[string]interface{}) {
	args := make([]any, 0, len(params)*2)
	for k, v := range params {
		args = append(args, k, v)
	}
	l.slog.InfoContext(ctx, "run started", args...)
}

// LogRunEnd logs a completed run
func (l *Logger) LogRunEnd(ctx context.Context, bestFitness float64, generations int, duration time.Duration) {
	l.slog.InfoContext(ctx, "run completed",
		"best_fitness", bestFitness,
		"generations", generations,
		"duration_ms", float64(duration.Nanoseconds())/1e6,
	)
}

// LogGeneration logs one evaluated generation through zap
func (l *Logger) LogGeneration(generation int, generationBest, runningBest float64, improved bool) {
	l.zap.Debug("generation evaluated",
		zap.Int("generation", generation),
		zap.Float64("generation_best", generationBest),
		zap.Float64("running_best", runningBest),
		zap.Bool("improved", improved),
	)
}

// LogRequest logs an HTTP request
func (l *Logger) LogRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	l.slog.InfoContext(ctx, "HTTP request completed",
		"method", method,
		"path", path,
		"status_code", statusCode,
		"duration_ms", float64(duration.Nanoseconds())/1e6,
	)
}

// LogCacheOperation logs a result cache lookup
func (l *Logger) LogCacheOperation(ctx context.Context, key string, hit bool) {
	if hit {
		l.slog.DebugContext(ctx, "Cache hit", "key", key)
	} else {
		l.slog.DebugContext(ctx, "Cache miss", "key", key)
	}
}

// LogCircuitBreaker logs a circuit breaker state change
func (l *Logger) LogCircuitBreaker(name, from, to string) {
	l.slog.Warn("Circuit breaker state changed", "name", name, "from", from, "to", to)
}

// Sync flushes the zap logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetSlog returns the slog logger
func (l *Logger) GetSlog() *slog.Logger {
	return l.slog
}

// GetZap returns the zap logger
func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
