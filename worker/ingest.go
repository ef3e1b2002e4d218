package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/snow-ghost/dosage/ga"
	"github.com/snow-ghost/dosage/pkg/limiter"
	"github.com/snow-ghost/dosage/pkg/observability"
	"github.com/snow-ghost/dosage/store"
)

// maxBodyBytes bounds an /optimize request body.
const maxBodyBytes = 1 << 16

// Ingestor exposes a Runner over HTTP.
type Ingestor struct {
	runner  Runner
	limiter *limiter.RateLimiter
	obs     *observability.Manager

	// RunTimeout bounds a single /optimize run when positive.
	RunTimeout time.Duration
}

// NewIngestor creates the HTTP front end. rl may be nil to disable rate limiting.
func NewIngestor(runner Runner, rl *limiter.RateLimiter, obs *observability.Manager) *Ingestor {
	return &Ingestor{runner: runner, limiter: rl, obs: obs}
}

// Routes returns the service mux.
func (i *Ingestor) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /optimize", i.instrument("/optimize", i.rateLimit(http.HandlerFunc(i.OptimizeHandler))))
	mux.Handle("GET /runs", i.instrument("/runs", http.HandlerFunc(i.ListRunsHandler)))
	mux.Handle("GET /runs/{id}", i.instrument("/runs/{id}", http.HandlerFunc(i.GetRunHandler)))
	mux.HandleFunc("GET /stats", i.StatsHandler)
	mux.HandleFunc("GET /health", i.HealthHandler)
	mux.Handle("GET /metrics", i.obs.GetMetrics().Handler())
	return mux
}

// OptimizeHandler runs a JSON ga.Config laid over the defaults. An empty
// body runs the defaults.
func (i *Ingestor) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	cfg := ga.DefaultConfig()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ctx := r.Context()
	if i.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.RunTimeout)
		defer cancel()
	}

	run, err := i.runner.Optimize(ctx, cfg)
	if err != nil {
		switch {
		case errors.Is(err, ga.ErrInvalidConfig), errors.Is(err, ErrRunTooLarge):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, err.Error())
			return
		}
		i.obs.GetLogger().Error("optimization failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// ListRunsHandler returns recent stored runs, newest first
func (i *Ingestor) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := i.runner.ListRuns(r.Context(), limit)
	if err != nil {
		i.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// GetRunHandler returns one stored run
func (i *Ingestor) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	run, err := i.runner.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		i.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// StatsHandler returns cache, breaker and rate limiter statistics
func (i *Ingestor) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := i.runner.Stats()
	if i.limiter != nil {
		stats["rate_limiter"] = i.limiter.Stats()
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthHandler returns a simple health check
func (i *Ingestor) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"dosage"}`))
}

func (i *Ingestor) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		i.obs.GetLogger().Error("run store query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// rateLimit rejects clients that exceed their per-address budget
func (i *Ingestor) rateLimit(next http.Handler) http.Handler {
	if i.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.limiter.Allow(clientKey(r)) {
			i.obs.GetMetrics().RecordRateLimited()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs and counts requests. route is the metric label, never the raw path.
func (i *Ingestor) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		i.obs.GetMetrics().RecordRequest(route, strconv.Itoa(rec.status))
		i.obs.GetLogger().LogRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
