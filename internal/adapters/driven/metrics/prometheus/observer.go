// Package prometheus exposes synchroniser measurements as Prometheus metrics.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// Ensure Observer implements the interface.
var _ driven.SyncObserver = (*Observer)(nil)

const namespace = "oslo_sync"

// Observer holds all Prometheus metrics for the synchroniser.
type Observer struct {
	registry *prometheus.Registry

	Batches        *prometheus.CounterVec
	Records        *prometheus.CounterVec
	BatchDuration  *prometheus.HistogramVec
	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	EngineErrors   *prometheus.CounterVec
}

// NewObserver creates an observer with its own registry.
func NewObserver() *Observer {
	registry := prometheus.NewRegistry()

	o := &Observer{
		registry: registry,
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Reconciled batches by mode, collection and outcome",
			},
			[]string{"mode", "collection", "outcome"},
		),
		Records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records handled by mode, collection and result",
			},
			[]string{"mode", "collection", "result"},
		),
		BatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Time to resolve and write one batch",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode", "collection"},
		),
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "URI resolutions by collection and whether a document was found",
			},
			[]string{"collection", "found"},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lookup_duration_seconds",
				Help:      "Time of one URI resolution",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"collection"},
		),
		EngineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_errors_total",
				Help:      "Failed search engine calls by operation",
			},
			[]string{"op"},
		),
	}

	registry.MustRegister(
		o.Batches,
		o.Records,
		o.BatchDuration,
		o.Lookups,
		o.LookupDuration,
		o.EngineErrors,
	)
	return o
}

// ObserveBatch records the outcome of one reconciled batch.
func (o *Observer) ObserveBatch(mode domain.SyncMode, c domain.Collection, result *domain.BatchResult, elapsed time.Duration) {
	if result == nil {
		return
	}
	m, name := string(mode), c.Name

	outcome := "ok"
	switch {
	case result.Partial():
		outcome = "partial"
	case !result.OK():
		outcome = "failed"
	}
	o.Batches.WithLabelValues(m, name, outcome).Inc()

	o.Records.WithLabelValues(m, name, "inserted").Add(float64(result.Inserted))
	o.Records.WithLabelValues(m, name, "updated").Add(float64(result.Updated))
	o.Records.WithLabelValues(m, name, "skipped").Add(float64(result.Skipped))
	o.Records.WithLabelValues(m, name, "failed").Add(float64(len(result.Failed)))

	o.BatchDuration.WithLabelValues(m, name).Observe(elapsed.Seconds())
}

// ObserveLookup records one URI resolution.
func (o *Observer) ObserveLookup(c domain.Collection, found bool, elapsed time.Duration) {
	o.Lookups.WithLabelValues(c.Name, strconv.FormatBool(found)).Inc()
	o.LookupDuration.WithLabelValues(c.Name).Observe(elapsed.Seconds())
}

// ObserveEngineError counts a failed engine primitive.
func (o *Observer) ObserveEngineError(op string) {
	o.EngineErrors.WithLabelValues(op).Inc()
}

// Handler returns the scrape handler for this observer's registry.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (o *Observer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Debug("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
