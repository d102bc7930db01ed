package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// uriField is the document field records are keyed on.
const uriField = "URI"

// resolution is the lookup outcome for one record of a batch.
type resolution struct {
	id    string
	found bool
	err   error
}

// Resolve finds the document whose URI is exactly uri.
// The engine's match query may return near matches, so hits are filtered
// for exact equality and the first exact hit wins.
func (s *Synchronizer) Resolve(ctx context.Context, uri string, collection domain.Collection) (string, bool, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", false, err
		}
	}

	start := s.now()
	hits, err := s.engine.Search(ctx, collection, uriField, uri)
	if err != nil {
		s.observeError("search")
		return "", false, domain.NewEngineError("search", collection.Name, err)
	}

	id, found := selectExact(hits, uri)
	if s.observer != nil {
		s.observer.ObserveLookup(collection, found, s.now().Sub(start))
	}
	if len(hits) > 0 && !found {
		logger.Debug("%d near matches for %s, none exact", len(hits), uri)
	}
	return id, found, nil
}

// selectExact returns the ID of the first hit whose URI equals uri.
func selectExact(hits []domain.Hit, uri string) (string, bool) {
	for _, h := range hits {
		if h.Source.URI == uri {
			return h.ID, true
		}
	}
	return "", false
}

// resolveAll resolves every record of a batch. The result slice is aligned
// with records, so directive order never depends on completion order.
func (s *Synchronizer) resolveAll(
	ctx context.Context,
	records []domain.Record,
	collection domain.Collection,
) []resolution {
	results := make([]resolution, len(records))

	resolveOne := func(i int) {
		if err := records[i].Validate(); err != nil {
			results[i].err = err
			return
		}
		id, found, err := s.Resolve(ctx, records[i].URI, collection)
		results[i] = resolution{id: id, found: found, err: err}
	}

	if s.pool == nil {
		for i := range records {
			resolveOne(i)
		}
		return results
	}

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			resolveOne(i)
		})
		if err != nil {
			wg.Done()
			results[i].err = err
		}
	}
	wg.Wait()

	return results
}
