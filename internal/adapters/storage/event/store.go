package event

import (
	"context"
	"time"

	domain "brigadeportal/internal/domain/event"
)

// Store persists calendar Events.
type Store interface {
	Save(ctx context.Context, value domain.Event) error
	// ExistsOnDate reports whether an event of the given type is already
	// stored for the date. The training-schedule orchestrator dedupes with
	// this before inserting generated occurrences.
	ExistsOnDate(ctx context.Context, eventType string, date time.Time) (bool, error)
	ListBetween(ctx context.Context, eventType string, from, to time.Time) ([]domain.Event, error)
}
