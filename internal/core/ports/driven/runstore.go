package driven

import (
	"context"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// RunStore persists sync history.
type RunStore interface {
	// Save stores a completed run.
	Save(ctx context.Context, run domain.SyncRun) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.SyncRun, error)

	// List returns the most recent runs, newest first.
	// A limit of zero or less returns all runs.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)
}
