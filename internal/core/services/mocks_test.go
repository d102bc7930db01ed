package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
)

// --- Mock implementations for synchronizer testing ---

// mockEngine implements driven.SearchEngine with scripted responses.
type mockEngine struct {
	mu sync.Mutex

	pingErr   error
	pingDelay time.Duration

	existing  map[string]bool
	existsErr error
	createErr error

	// hits maps a searched value to the hits returned for it.
	hits      map[string][]domain.Hit
	searchErr map[string]error

	bulkErr  error
	bulkResp func([]domain.Directive) *domain.BulkResponse

	createCalls   []string
	existsCalls   []string
	searchCalls   []string
	bulkCalls     [][]domain.Directive
	inFlight      int
	maxInFlight   int
	searchLatency time.Duration
}

var _ driven.SearchEngine = (*mockEngine)(nil)

func newMockEngine() *mockEngine {
	return &mockEngine{
		existing:  make(map[string]bool),
		hits:      make(map[string][]domain.Hit),
		searchErr: make(map[string]error),
	}
}

func (m *mockEngine) Ping(ctx context.Context) error {
	if m.pingDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.pingDelay):
		}
	}
	return m.pingErr
}

func (m *mockEngine) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existsCalls = append(m.existsCalls, name)
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[name], nil
}

func (m *mockEngine) Create(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = append(m.createCalls, name)
	if m.createErr != nil {
		return m.createErr
	}
	m.existing[name] = true
	return nil
}

func (m *mockEngine) Search(_ context.Context, _ domain.Collection, _, value string) ([]domain.Hit, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, value)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	latency := m.searchLatency
	hits, err := m.hits[value], m.searchErr[value]
	m.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
	return hits, err
}

func (m *mockEngine) Bulk(_ context.Context, directives []domain.Directive) (*domain.BulkResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls = append(m.bulkCalls, directives)
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	if m.bulkResp != nil {
		return m.bulkResp(directives), nil
	}
	resp := &domain.BulkResponse{}
	for _, d := range directives {
		resp.Items = append(resp.Items, domain.BulkItem{ID: d.ID, Status: 200})
	}
	return resp, nil
}

func (m *mockEngine) Close() error { return nil }

// hit builds a search hit for a URI.
func hit(id, uri string) domain.Hit {
	return domain.Hit{ID: id, Source: domain.Record{URI: uri}}
}

// mockObserver implements driven.SyncObserver.
type mockObserver struct {
	mu       sync.Mutex
	batches  []*domain.BatchResult
	modes    []domain.SyncMode
	lookups  int
	found    int
	errorOps []string
}

func (o *mockObserver) ObserveBatch(mode domain.SyncMode, _ domain.Collection, r *domain.BatchResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modes = append(o.modes, mode)
	o.batches = append(o.batches, r)
}

func (o *mockObserver) ObserveLookup(_ domain.Collection, found bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups++
	if found {
		o.found++
	}
}

func (o *mockObserver) ObserveEngineError(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errorOps = append(o.errorOps, op)
}

// mockPublisher implements driven.EventPublisher.
type mockPublisher struct {
	runs []domain.SyncRun
	err  error
}

func (p *mockPublisher) PublishRun(_ context.Context, run domain.SyncRun) error {
	p.runs = append(p.runs, run)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }
