package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCollection indicates a collection alias that is not configured.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrEngineUnavailable indicates the search engine failed its liveness probe.
	ErrEngineUnavailable = errors.New("search engine unavailable")

	// ErrCollectionMissing indicates a write targeted a collection that does not exist.
	ErrCollectionMissing = errors.New("collection missing")

	// ErrBulkRejected indicates the engine rejected a bulk write as a whole.
	ErrBulkRejected = errors.New("bulk write rejected")
)

// EngineError wraps a failure of a single engine operation.
type EngineError struct {
	// Op is the engine primitive: ping, exists, create, search or bulk.
	Op string

	// Target is the collection name, when relevant.
	Target string

	// Err is the underlying cause.
	Err error
}

func (e *EngineError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError builds an EngineError.
func NewEngineError(op, target string, err error) *EngineError {
	return &EngineError{Op: op, Target: target, Err: err}
}
