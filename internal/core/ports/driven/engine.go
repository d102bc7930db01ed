package driven

import (
	"context"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// SearchEngine is the search service that records are synchronised into.
// It is treated as a black box exposing the primitives below.
type SearchEngine interface {
	// Ping reports whether the engine is reachable.
	Ping(ctx context.Context) error

	// Exists reports whether the named collection exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Create creates an empty collection.
	Create(ctx context.Context, name string) error

	// Search runs a match query for value against field within the collection.
	// Results may include approximate matches.
	Search(ctx context.Context, collection domain.Collection, field, value string) ([]domain.Hit, error)

	// Bulk submits directives as one write. The response has one item
	// per directive, in order. An error means the write as a whole failed.
	Bulk(ctx context.Context, directives []domain.Directive) (*domain.BulkResponse, error)

	// Close releases resources.
	Close() error
}
