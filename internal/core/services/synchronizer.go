package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driving"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// Ensure Synchronizer implements the interface.
var _ driving.Synchronizer = (*Synchronizer)(nil)

// Synchronizer reconciles record batches into the search engine.
type Synchronizer struct {
	engine    driven.SearchEngine
	runs      driven.RunStore
	observer  driven.SyncObserver
	publisher driven.EventPublisher

	// Lookup fan-out. pool is nil when concurrency is 1.
	concurrency int
	pool        *ants.Pool
	limiter     *rate.Limiter

	healthTimeout time.Duration
	now           func() time.Time
	newID         func() string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer) error

// WithConcurrency sets how many URI lookups run at once within a batch.
// 1 (the default) resolves records strictly one at a time.
func WithConcurrency(n int) Option {
	return func(s *Synchronizer) error {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
		return nil
	}
}

// WithRateLimit caps engine lookups per second. Zero disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(s *Synchronizer) error {
		if perSecond < 0 {
			return fmt.Errorf("%w: negative rate limit", domain.ErrInvalidInput)
		}
		if perSecond == 0 {
			s.limiter = nil
			return nil
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		return nil
	}
}

// WithRunStore records every non-empty batch in the given store.
func WithRunStore(store driven.RunStore) Option {
	return func(s *Synchronizer) error {
		s.runs = store
		return nil
	}
}

// WithObserver reports measurements to the given observer.
func WithObserver(observer driven.SyncObserver) Option {
	return func(s *Synchronizer) error {
		s.observer = observer
		return nil
	}
}

// WithPublisher announces completed runs through the given publisher.
func WithPublisher(publisher driven.EventPublisher) Option {
	return func(s *Synchronizer) error {
		s.publisher = publisher
		return nil
	}
}

// WithHealthTimeout overrides the liveness probe deadline.
func WithHealthTimeout(d time.Duration) Option {
	return func(s *Synchronizer) error {
		if d > 0 {
			s.healthTimeout = d
		}
		return nil
	}
}

// NewSynchronizer creates a synchronizer for the given engine.
func NewSynchronizer(engine driven.SearchEngine, opts ...Option) (*Synchronizer, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}

	s := &Synchronizer{
		engine:        engine,
		concurrency:   1,
		healthTimeout: domain.HealthCheckTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.concurrency > 1 {
		pool, err := ants.NewPool(s.concurrency)
		if err != nil {
			return nil, fmt.Errorf("create lookup pool: %w", err)
		}
		s.pool = pool
	}

	return s, nil
}

// Close releases the lookup pool.
func (s *Synchronizer) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// HealthCheck probes the engine. The caller decides whether a failure is fatal.
func (s *Synchronizer) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	if err := s.engine.Ping(ctx); err != nil {
		s.observeError("ping")
		return domain.NewEngineError("ping", "", fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err))
	}

	logger.Info("Search engine is reachable")
	return nil
}

// EnsureCollection creates the collection if it does not exist.
// It reports whether a create call was made.
func (s *Synchronizer) EnsureCollection(ctx context.Context, name string) (bool, error) {
	exists, err := s.engine.Exists(ctx, name)
	if err != nil {
		s.observeError("exists")
		logger.Error("Check collection %s: %v", name, err)
		return false, domain.NewEngineError("exists", name, err)
	}
	if exists {
		logger.Debug("Collection %s already exists", name)
		return false, nil
	}

	if err := s.engine.Create(ctx, name); err != nil {
		s.observeError("create")
		logger.Error("Create collection %s: %v", name, err)
		return false, domain.NewEngineError("create", name, err)
	}

	logger.Info("Created collection %s", name)
	return true, nil
}

// Setup ensures every well-known collection exists.
// A failure on one collection does not stop the others.
func (s *Synchronizer) Setup(ctx context.Context) error {
	logger.Section("Setup")

	var errs []error
	for _, c := range domain.KnownCollections() {
		if _, err := s.EnsureCollection(ctx, c.Name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Synchronizer) observeError(op string) {
	if s.observer != nil {
		s.observer.ObserveEngineError(op)
	}
}
