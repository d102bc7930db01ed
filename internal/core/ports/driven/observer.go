package driven

import (
	"time"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// SyncObserver receives measurements from the synchroniser.
type SyncObserver interface {
	// ObserveBatch records the outcome of one reconciled batch.
	ObserveBatch(mode domain.SyncMode, collection domain.Collection, result *domain.BatchResult, elapsed time.Duration)

	// ObserveLookup records one URI resolution.
	ObserveLookup(collection domain.Collection, found bool, elapsed time.Duration)

	// ObserveEngineError counts a failed engine primitive.
	ObserveEngineError(op string)
}
