package synclog

import (
	"errors"
	"time"
)

// Operation identifies which ingestion path produced a log entry.
const (
	OperationPull     = "pull"
	OperationFullSync = "full_sync"
	OperationWebhook  = "webhook"
	OperationSchedule = "schedule"
)

// Entry status constants.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPartial = "partial"
	StatusSkipped = "skipped"
)

// Sync state status constants.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Domain errors
var (
	ErrEmptyOperation = errors.New("sync log operation cannot be empty")
	ErrInvalidStatus  = errors.New("sync log status must be success, failed, partial, or skipped")
	ErrEmptyBrigade   = errors.New("sync state must be associated with a brigade")
)

// Entry is one append-only audit record, written once per sync invocation.
type Entry struct {
	ID          string
	Operation   string
	ReferenceID string // muster id for webhooks, date range for pulls
	Status      string
	Details     string
	CreatedAt   time.Time
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (e *Entry) Validate() error {
	if e.Operation == "" {
		return ErrEmptyOperation
	}
	switch e.Status {
	case StatusSuccess, StatusFailed, StatusPartial, StatusSkipped:
		return nil
	}
	return ErrInvalidStatus
}

// State tracks the last synchronization window for a brigade. One row per
// brigade, mutated only after a completed or failed batch.
type State struct {
	BrigadeID    string
	LastSyncAt   time.Time
	SyncFromDate time.Time
	SyncToDate   time.Time
	Status       string
	ErrorMessage string
}

// Validate checks if the State has valid data.
// PRE: State struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *State) Validate() error {
	if s.BrigadeID == "" {
		return ErrEmptyBrigade
	}
	switch s.Status {
	case StatePending, StateCompleted, StateFailed:
		return nil
	}
	return errors.New("sync state status must be pending, completed, or failed")
}

// Counts summarizes per-record outcomes for one batch. Every processed line
// lands in exactly one bucket.
type Counts struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}

// Status derives the entry status for a batch summary: failed lines make the
// batch partial, skips without other activity make it skipped.
func (c Counts) Status() string {
	if c.Failed > 0 {
		return StatusPartial
	}
	if c.Created == 0 && c.Updated == 0 && c.Unchanged == 0 && c.Skipped > 0 {
		return StatusSkipped
	}
	return StatusSuccess
}
