package core

import "context"

// RunStore persists run summaries.
type RunStore interface {
	Save(ctx context.Context, rec RunRecord) error
	Get(ctx context.Context, id string) (RunRecord, error)
	List(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
