// Package nats announces completed sync runs on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// Ensure Publisher implements the interface.
var _ driven.EventPublisher = (*Publisher)(nil)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "oslo.sync.runs"

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Publisher sends one JSON message per run.
type Publisher struct {
	conn    conn
	subject string
}

// Connect dials the NATS server and returns a publisher for subject.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("oslo-sync"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Debug("Connected to NATS at %s", url)
	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: c, subject: subject}
}

// Subject returns the subject runs are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// runEvent is the wire form of a completed run.
type runEvent struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Collection string    `json:"collection"`
	Records    int       `json:"records"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

func encodeRun(run domain.SyncRun) ([]byte, error) {
	return json.Marshal(runEvent{
		ID:         run.ID,
		Mode:       string(run.Mode),
		Collection: run.Collection,
		Records:    run.Records,
		Inserted:   run.Inserted,
		Updated:    run.Updated,
		Skipped:    run.Skipped,
		Failed:     run.Failed,
		Error:      run.Error,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		DurationMS: run.Duration().Milliseconds(),
	})
}

// PublishRun sends a notification for a completed run.
// NATS publish does not take a context, so ctx is checked before sending.
func (p *Publisher) PublishRun(ctx context.Context, run domain.SyncRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := encodeRun(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish run %s: %w", run.ID, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	err := p.conn.FlushTimeout(5 * time.Second)
	p.conn.Close()
	return err
}
