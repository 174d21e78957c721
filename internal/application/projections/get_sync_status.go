package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	synclogStore "brigadeportal/internal/adapters/storage/synclog"
	domainSynclog "brigadeportal/internal/domain/synclog"
)

// SyncStatusStateStore defines the sync state interface needed by the sync status projection.
type SyncStatusStateStore interface {
	Get(ctx context.Context, brigadeID string) (domainSynclog.State, error)
}

// SyncStatusEntryStore defines the sync log interface needed by the sync status projection.
type SyncStatusEntryStore interface {
	ListRecent(ctx context.Context, limit int) ([]domainSynclog.Entry, error)
}

// GetSyncStatusQuery carries input for the sync status projection.
type GetSyncStatusQuery struct {
	BrigadeID string
	Limit     int // recent log entries, defaults to 10
}

// SyncLogItem is one row of the recent sync history.
type SyncLogItem struct {
	Operation   string
	ReferenceID string
	Status      string
	Details     string
	CreatedAt   time.Time
}

// GetSyncStatusResult carries the output of the sync status projection.
type GetSyncStatusResult struct {
	BrigadeID    string
	EverSynced   bool
	LastSyncAt   time.Time
	SyncFromDate string // YYYY-MM-DD, empty before first sync
	SyncToDate   string
	Status       string
	ErrorMessage string
	Recent       []SyncLogItem
}

// GetSyncStatusDeps holds dependencies for the sync status projection.
type GetSyncStatusDeps struct {
	StateStore SyncStatusStateStore
	EntryStore SyncStatusEntryStore
}

// QueryGetSyncStatus reports the brigade's sync state plus the most recent
// log entries. A brigade that has never synced gets EverSynced false rather
// than an error.
// PRE: query.BrigadeID is non-empty
// POST: Recent entries are newest first
func QueryGetSyncStatus(ctx context.Context, query GetSyncStatusQuery, deps GetSyncStatusDeps) (GetSyncStatusResult, error) {
	if query.BrigadeID == "" {
		return GetSyncStatusResult{}, fmt.Errorf("brigade_id is required")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	result := GetSyncStatusResult{BrigadeID: query.BrigadeID}

	state, err := deps.StateStore.Get(ctx, query.BrigadeID)
	switch {
	case errors.Is(err, synclogStore.ErrStateNotFound):
		// never synced
	case err != nil:
		return GetSyncStatusResult{}, err
	default:
		result.EverSynced = true
		result.LastSyncAt = state.LastSyncAt
		result.Status = state.Status
		result.ErrorMessage = state.ErrorMessage
		if !state.SyncFromDate.IsZero() {
			result.SyncFromDate = state.SyncFromDate.Format("2006-01-02")
		}
		if !state.SyncToDate.IsZero() {
			result.SyncToDate = state.SyncToDate.Format("2006-01-02")
		}
	}

	entries, err := deps.EntryStore.ListRecent(ctx, limit)
	if err != nil {
		return GetSyncStatusResult{}, err
	}
	for _, e := range entries {
		result.Recent = append(result.Recent, SyncLogItem{
			Operation:   e.Operation,
			ReferenceID: e.ReferenceID,
			Status:      e.Status,
			Details:     e.Details,
			CreatedAt:   e.CreatedAt,
		})
	}
	return result, nil
}
