package driving

import (
	"context"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// Synchronizer keeps the search index in line with batches of records,
// holding at most one document per URI in each collection.
type Synchronizer interface {
	// HealthCheck probes the engine. It is bounded by domain.HealthCheckTimeout.
	HealthCheck(ctx context.Context) error

	// EnsureCollection creates the collection if it does not exist.
	// It reports whether a create call was made.
	EnsureCollection(ctx context.Context, name string) (bool, error)

	// Setup ensures every well-known collection exists.
	// Failures are logged and returned joined; all collections are attempted.
	Setup(ctx context.Context) error

	// Resolve finds the document whose URI is exactly uri.
	Resolve(ctx context.Context, uri string, collection domain.Collection) (string, bool, error)

	// Reconcile inserts unseen URIs and updates known ones in one bulk write.
	Reconcile(ctx context.Context, records []domain.Record, collection domain.Collection) (*domain.BatchResult, error)

	// Push ensures the collection exists, then inserts unseen URIs only.
	// Records whose URI is already indexed are skipped.
	Push(ctx context.Context, records []domain.Record, collection domain.Collection) (*domain.BatchResult, error)
}

// HistoryService exposes recorded sync runs.
type HistoryService interface {
	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.SyncRun, error)
}
