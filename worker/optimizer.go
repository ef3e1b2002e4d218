package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/snow-ghost/dosage/core"
	"github.com/snow-ghost/dosage/ga"
	"github.com/snow-ghost/dosage/pkg/cache"
	"github.com/snow-ghost/dosage/pkg/limiter"
	"github.com/snow-ghost/dosage/pkg/observability"
	"github.com/snow-ghost/dosage/report"
)

var (
	// ErrNoStore is returned by the history queries when no store is configured.
	ErrNoStore = errors.New("run store not configured")

	// ErrRunTooLarge is returned for a config beyond the optimizer's limits.
	ErrRunTooLarge = errors.New("run exceeds service limits")
)

// Limits bounds the size of a run. Zero fields are unlimited.
type Limits struct {
	MaxPopSize     int
	MaxGenerations int
	MaxWork        int64 // pop_size * generations
}

// OptimizerOptions configures an Optimizer. Store may be nil.
type OptimizerOptions struct {
	Workers       int
	CacheSize     int
	Limits        Limits
	RunTimeout    time.Duration // bounds each engine run when positive
	Store         core.RunStore
	Observability *observability.Manager
}

// Optimizer runs the engine for long-running callers. Runs are
// deterministic for a given config, so results are cached by config.
type Optimizer struct {
	workers    int
	limits     Limits
	runTimeout time.Duration
	store      core.RunStore
	obs        *observability.Manager

	results *cache.LRUCache[*Run]
	dedup   *cache.Deduplicator[*Run]
	breaker *limiter.Breaker
	retry   *limiter.RetryManager
}

// NewOptimizer creates an optimizer
func NewOptimizer(opts OptimizerOptions) (*Optimizer, error) {
	if opts.Observability == nil {
		return nil, errors.New("observability manager is required")
	}

	cacheConfig := cache.DefaultCacheConfig()
	if opts.CacheSize > 0 {
		cacheConfig.MaxSize = opts.CacheSize
	}
	results, err := cache.NewLRUCache[*Run](cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	logger := opts.Observability.GetLogger()
	return &Optimizer{
		workers:    opts.Workers,
		limits:     opts.Limits,
		runTimeout: opts.RunTimeout,
		store:      opts.Store,
		obs:        opts.Observability,
		results:    results,
		dedup:      cache.NewDeduplicator[*Run](),
		breaker:    limiter.NewBreaker(limiter.DefaultCircuitBreakerConfig("run-store"), logger.LogCircuitBreaker),
		retry:      limiter.NewRetryManager(nil),
	}, nil
}

// Optimize validates cfg and returns its run, from the cache when an
// identical config already ran. Concurrent identical requests share one
// run, which is detached from any single caller's ctx: a caller that gives
// up gets its ctx error while the run completes for the rest.
func (o *Optimizer) Optimize(ctx context.Context, cfg ga.Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := o.limits.check(cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := cache.GenerateKey(cfg)
	if err != nil {
		return nil, err
	}

	run, hit, err := o.dedup.ExecuteWithCache(ctx, key, o.results, 0, func() (*Run, error) {
		runCtx := context.WithoutCancel(ctx)
		if o.runTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, o.runTimeout)
			defer cancel()
		}
		return o.execute(runCtx, cfg)
	})
	if err != nil {
		return nil, err
	}

	o.obs.GetLogger().LogCacheOperation(ctx, string(key), hit)
	if hit {
		o.obs.GetMetrics().RecordCacheHit()
	} else {
		o.obs.GetMetrics().RecordCacheMiss()
	}

	// the cached run is shared, callers get their own copy
	out := *run
	out.History = slices.Clone(run.History)
	out.Cached = hit
	return &out, nil
}

func (l Limits) check(cfg ga.Config) error {
	if l.MaxPopSize > 0 && cfg.PopSize > l.MaxPopSize {
		return fmt.Errorf("%w: pop_size %d > %d", ErrRunTooLarge, cfg.PopSize, l.MaxPopSize)
	}
	if l.MaxGenerations > 0 && cfg.Generations > l.MaxGenerations {
		return fmt.Errorf("%w: generations %d > %d", ErrRunTooLarge, cfg.Generations, l.MaxGenerations)
	}
	if l.MaxWork > 0 {
		// division keeps the product from overflowing
		if int64(cfg.PopSize) > l.MaxWork || int64(cfg.Generations) > l.MaxWork/int64(cfg.PopSize) {
			return fmt.Errorf("%w: pop_size*generations > %d", ErrRunTooLarge, l.MaxWork)
		}
	}
	return nil
}

func (o *Optimizer) execute(ctx context.Context, cfg ga.Config) (*Run, error) {
	runID := uuid.NewString()

	ctx, observer := o.obs.StartRun(ctx, runID, cfg)
	engine := ga.NewEngine(cfg)
	engine.Workers = o.workers
	engine.OnGeneration = observer.OnGeneration

	res, err := engine.Run(ctx)
	duration := observer.End(ctx, res, err)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:          runID,
		CreatedAt:   time.Now(),
		Config:      cfg,
		Best:        res.Best,
		BestFitness: res.BestFitness,
		Record:      report.NewRecord(res.Best),
		History:     res.History,
		Duration:    duration,
	}
	o.persist(ctx, run)
	return run, nil
}

// persist stores the run summary. Failures are counted and logged but
// never fail the run.
func (o *Optimizer) persist(ctx context.Context, run *Run) {
	if o.store == nil {
		return
	}

	logger := o.obs.GetLogger().WithRunID(run.ID)
	params, err := json.Marshal(run.Config)
	if err != nil {
		logger.Error("failed to encode run params", "error", err)
		return
	}

	rec := core.RunRecord{
		ID:            run.ID,
		CreatedAt:     run.CreatedAt,
		Seed:          run.Config.RNGSeed,
		Generations:   run.Config.Generations,
		Params:        params,
		Best:          run.Best,
		BestFitness:   run.BestFitness,
		Effectiveness: core.Effectiveness(run.Best),
		SideEffects:   core.SideEffects(run.Best),
		Duration:      run.Duration,
	}

	err = o.breaker.Execute(func() error {
		return o.retry.Execute(ctx, func(ctx context.Context) error {
			return o.store.Save(ctx, rec)
		})
	})
	if err != nil {
		o.obs.GetMetrics().RecordStoreFailure()
		logger.Error("failed to store run", "error", err, "breaker", o.breaker.State())
	}
}

// ListRuns returns the most recent stored runs
func (o *Optimizer) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if o.store == nil {
		return nil, ErrNoStore
	}
	return o.store.List(ctx, limit)
}

// GetRun returns one stored run
func (o *Optimizer) GetRun(ctx context.Context, id string) (core.RunRecord, error) {
	if o.store == nil {
		return core.RunRecord{}, ErrNoStore
	}
	return o.store.Get(ctx, id)
}

// Stats reports the result cache, request deduplication and the store breaker
func (o *Optimizer) Stats() map[string]interface{} {
	return map[string]interface{}{
		"cache":         o.results.Stats(),
		"dedup":         o.dedup.Stats(),
		"store_breaker": o.breaker.GetStats(),
	}
}

// Close releases the result cache
func (o *Optimizer) Close() {
	o.results.Close()
}
