package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// errMissingItem is reported when the engine returns fewer bulk items than directives.
var errMissingItem = errors.New("no response item for directive")

// Reconcile inserts unseen URIs and updates known ones in one bulk write.
// An empty batch is a no-op. The error is non-nil only when the bulk write
// as a whole failed; per-record failures are listed in the result.
func (s *Synchronizer) Reconcile(
	ctx context.Context,
	records []domain.Record,
	collection domain.Collection,
) (*domain.BatchResult, error) {
	return s.reconcile(ctx, domain.ModeSync, records, collection)
}

// Push ensures the collection exists, then inserts unseen URIs only.
// Records whose URI is already indexed are counted as skipped and left
// out of the bulk write.
func (s *Synchronizer) Push(
	ctx context.Context,
	records []domain.Record,
	collection domain.Collection,
) (*domain.BatchResult, error) {
	// A failed create is logged by EnsureCollection; the bulk write
	// will surface the missing collection per item.
	_, _ = s.EnsureCollection(ctx, collection.Name)

	return s.reconcile(ctx, domain.ModePush, records, collection)
}

//nolint:gocognit // Sequential classification of a batch
func (s *Synchronizer) reconcile(
	ctx context.Context,
	mode domain.SyncMode,
	records []domain.Record,
	collection domain.Collection,
) (*domain.BatchResult, error) {
	result := &domain.BatchResult{}
	if len(records) == 0 {
		logger.Debug("Empty batch for %s, nothing to do", collection)
		return result, nil
	}

	logger.Section(fmt.Sprintf("%s %d records into %s", mode, len(records), collection))
	started := s.now()

	// 1. Resolve every URI
	resolutions := s.resolveAll(ctx, records, collection)

	// 2. Classify into directives, keeping input order
	directives := make([]domain.Directive, 0, len(records))
	positions := make([]int, 0, len(records))
	for i, rec := range records {
		res := resolutions[i]
		switch {
		case res.err != nil:
			logger.Debug("Resolve %s failed: %v", rec.URI, res.err)
			result.Failed = append(result.Failed, failure(i, rec, res.err))
			continue
		case !res.found:
			directives = append(directives, domain.NewIndexDirective(collection, rec))
			result.Inserted++
		case mode == domain.ModePush:
			logger.Debug("Skipping existing %s (%s)", rec.URI, res.id)
			result.Skipped++
			continue
		default:
			directives = append(directives, domain.NewUpdateDirective(collection, res.id, rec))
			result.Updated++
		}
		positions = append(positions, i)
	}

	// 3. Submit as one bulk write
	var bulkErr error
	if len(directives) > 0 {
		bulkErr = s.submit(ctx, collection, records, directives, positions, result)
	}

	slices.SortStableFunc(result.Failed, func(a, b domain.DirectiveFailure) int {
		return cmp.Compare(a.Index, b.Index)
	})

	s.finish(ctx, mode, collection, len(records), started, result, bulkErr)
	return result, bulkErr
}

// submit sends directives as one bulk write and folds the per-item
// outcome into result.
func (s *Synchronizer) submit(
	ctx context.Context,
	collection domain.Collection,
	records []domain.Record,
	directives []domain.Directive,
	positions []int,
	result *domain.BatchResult,
) error {
	result.Submitted = len(directives)

	resp, err := s.engine.Bulk(ctx, directives)
	if err != nil {
		s.observeError("bulk")
		logger.Error("Bulk write to %s failed: %v", collection.Name, err)
		for _, pos := range positions {
			result.Failed = append(result.Failed, failure(pos, records[pos], err))
		}
		return domain.NewEngineError("bulk", collection.Name, err)
	}

	for j, pos := range positions {
		if j >= len(resp.Items) {
			result.Failed = append(result.Failed, failure(pos, records[pos], errMissingItem))
			continue
		}
		item := resp.Items[j]
		if item.Error != "" {
			result.Failed = append(result.Failed, domain.DirectiveFailure{
				Index:  pos,
				URI:    records[pos].URI,
				Reason: item.Error,
			})
			continue
		}
		result.Succeeded++
	}

	if n := result.Submitted - result.Succeeded; n > 0 {
		logger.Warn("Bulk write to %s: %d of %d directives failed", collection.Name, n, result.Submitted)
	}
	return nil
}

// finish records, observes and announces a completed batch.
// Reporting failures are logged and never change the batch outcome.
func (s *Synchronizer) finish(
	ctx context.Context,
	mode domain.SyncMode,
	collection domain.Collection,
	total int,
	started time.Time,
	result *domain.BatchResult,
	bulkErr error,
) {
	finished := s.now()

	logger.Info("%s %s: %d inserted, %d updated, %d skipped, %d failed in %s",
		mode, collection, result.Inserted, result.Updated, result.Skipped, len(result.Failed),
		finished.Sub(started).Round(time.Millisecond))

	if s.observer != nil {
		s.observer.ObserveBatch(mode, collection, result, finished.Sub(started))
	}

	if s.runs == nil && s.publisher == nil {
		return
	}

	run := domain.SyncRun{
		ID:         s.newID(),
		Mode:       mode,
		Collection: collection.Name,
		Records:    total,
		Inserted:   result.Inserted,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		Failed:     len(result.Failed),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if bulkErr != nil {
		run.Error = bulkErr.Error()
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, run); err != nil {
			logger.Warn("Save run %s: %v", run.ID, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRun(ctx, run); err != nil {
			logger.Warn("Publish run %s: %v", run.ID, err)
		}
	}
}

func failure(index int, rec domain.Record, err error) domain.DirectiveFailure {
	return domain.DirectiveFailure{Index: index, URI: rec.URI, Reason: err.Error()}
}
