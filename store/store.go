// Package store keeps a history of run summaries. Only the best individual
// of each run is kept, never the populations.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/snow-ghost/dosage/core"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// prepare fills in the ID and timestamp of a record about to be saved.
func prepare(rec core.RunRecord) core.RunRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
