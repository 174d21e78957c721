package synclog

import (
	"context"
	"errors"

	domain "brigadeportal/internal/domain/synclog"
)

// ErrStateNotFound indicates no sync state row exists for the brigade yet.
var ErrStateNotFound = errors.New("sync state not found")

// EntryStore persists the append-only sync audit trail.
type EntryStore interface {
	Append(ctx context.Context, value domain.Entry) error
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)
}

// StateStore persists the per-brigade sync state row.
type StateStore interface {
	Get(ctx context.Context, brigadeID string) (domain.State, error)
	Save(ctx context.Context, value domain.State) error
}
