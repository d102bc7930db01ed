package driven

import (
	"context"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// EventPublisher announces completed runs to other systems.
type EventPublisher interface {
	// PublishRun sends a notification for a completed run.
	PublishRun(ctx context.Context, run domain.SyncRun) error

	// Close flushes and releases the connection.
	Close() error
}
