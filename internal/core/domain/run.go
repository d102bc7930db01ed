package domain

import "time"

// SyncMode distinguishes the two reconciliation paths.
type SyncMode string

const (
	// ModeSync inserts unseen URIs and updates known ones.
	ModeSync SyncMode = "sync"

	// ModePush inserts unseen URIs and skips known ones.
	ModePush SyncMode = "push"
)

// SyncRun records one reconciled batch for the history log.
type SyncRun struct {
	ID         string
	Mode       SyncMode
	Collection string
	Records    int
	Inserted   int
	Updated    int
	Skipped    int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took.
func (r SyncRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
