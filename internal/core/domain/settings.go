package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultEngineAddress is used when no endpoint is configured.
const DefaultEngineAddress = "http://localhost:9200"

// HealthCheckTimeout bounds the startup liveness probe.
const HealthCheckTimeout = 30 * time.Second

// EngineSettings holds the search-engine connection parameters.
type EngineSettings struct {
	// Addresses are the engine endpoint URLs.
	Addresses []string

	// Username for basic authentication. Empty disables auth.
	Username string

	// Password for basic authentication.
	Password string

	// InsecureSkipVerify accepts self-signed TLS certificates.
	InsecureSkipVerify bool

	// LegacyTypes adds the record-kind label as a mapping type on
	// requests, for clusters that still support document types.
	LegacyTypes bool

	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration
}

// SyncSettings tunes reconciliation.
type SyncSettings struct {
	// Concurrency is the number of URI lookups in flight per batch.
	// 1 resolves records strictly one at a time.
	Concurrency int

	// RateLimit caps engine lookups per second. Zero disables throttling.
	RateLimit float64
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	// Addr is the listen address, e.g. ":9090". Empty disables the endpoint.
	Addr string
}

// EventSettings configures sync-completion events.
type EventSettings struct {
	// NatsURL is the NATS server URL. Empty disables publishing.
	NatsURL string

	// Subject is the NATS subject runs are published on.
	Subject string
}

// AppSettings is the full application configuration.
type AppSettings struct {
	Engine  EngineSettings
	Sync    SyncSettings
	Metrics MetricsSettings
	Events  EventSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Engine: EngineSettings{
			Addresses: []string{DefaultEngineAddress},
		},
		Sync: SyncSettings{
			Concurrency: 1,
		},
		Events: EventSettings{
			Subject: "oslo.sync.runs",
		},
	}
}

// Validate checks that the settings can be used to build an engine client.
func (s AppSettings) Validate() error {
	if len(s.Engine.Addresses) == 0 {
		return fmt.Errorf("%w: no engine address configured", ErrInvalidInput)
	}
	for _, addr := range s.Engine.Addresses {
		u, err := url.Parse(addr)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid engine address %q", ErrInvalidInput, addr)
		}
	}
	if s.Sync.Concurrency < 1 {
		return fmt.Errorf("%w: sync concurrency must be at least 1", ErrInvalidInput)
	}
	if s.Sync.RateLimit < 0 {
		return fmt.Errorf("%w: sync rate limit must not be negative", ErrInvalidInput)
	}
	return nil
}
