// Package worker serves dosage optimization runs over HTTP.
package worker

import (
	"context"
	"time"

	"github.com/snow-ghost/dosage/core"
	"github.com/snow-ghost/dosage/ga"
	"github.com/snow-ghost/dosage/report"
)

// Run is the outcome of one optimization request.
type Run struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	Config      ga.Config     `json:"config"`
	Best        core.Vector   `json:"best"`
	BestFitness float64       `json:"best_fitness"`
	Record      report.Record `json:"result"`
	History     []float64     `json:"history"`
	Duration    time.Duration `json:"duration_ns"`
	Cached      bool          `json:"cached"`
}

// Runner is the contract the HTTP layer needs from an optimizer
type Runner interface {
	Optimize(ctx context.Context, cfg ga.Config) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error)
	GetRun(ctx context.Context, id string) (core.RunRecord, error)
	Stats() map[string]interface{}
}
