package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService lists recorded sync runs.
type HistoryService struct {
	store driven.RunStore
}

// NewHistoryService creates a history service backed by store.
func NewHistoryService(store driven.RunStore) *HistoryService {
	return &HistoryService{store: store}
}

// Runs returns the most recent runs, newest first.
func (h *HistoryService) Runs(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if h.store == nil {
		return nil, errors.New("run store not configured")
	}
	return h.store.List(ctx, limit)
}
