package driven

import (
	"context"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// RecordLoader reads a batch of records from an external source.
type RecordLoader interface {
	// Load returns the records at path, in file order.
	Load(ctx context.Context, path string) ([]domain.Record, error)
}
