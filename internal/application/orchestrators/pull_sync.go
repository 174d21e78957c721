package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brigadeportal/internal/adapters/dlb"
	"brigadeportal/internal/domain/muster"
	"brigadeportal/internal/domain/synclog"
)

// FullSyncMonths is how far back a full sync reaches.
const FullSyncMonths = 12

// SyncEntryStore defines the sync log interface for the sync engines.
type SyncEntryStore interface {
	Append(ctx context.Context, value synclog.Entry) error
}

// SyncStateStore defines the sync state interface for the sync engines.
type SyncStateStore interface {
	Save(ctx context.Context, value synclog.State) error
}

// PullSyncInput carries input for the pull sync engine. A zero From/To pair
// defaults to the last month; FullSync widens the window to FullSyncMonths.
type PullSyncInput struct {
	BrigadeID string
	From      time.Time
	To        time.Time
	FullSync  bool
}

// PullSyncDeps holds dependencies for PullSync.
type PullSyncDeps struct {
	DLB             dlb.Client
	MemberStore     IdentityMapMemberStore
	AttendanceStore ReconcilerAttendanceStore
	EntryStore      SyncEntryStore
	StateStore      SyncStateStore
	GenerateID      func() string
	Now             func() time.Time
}

// ExecutePullSync fetches attendance history from DLB for the window and
// reconciles every line. Unmapped members are skipped, per-record failures
// are counted and the batch continues. If the fetch itself fails, no record
// processing happens: sync state is marked failed, a failed log entry is
// written, and the error is returned for the next trigger to retry.
// PRE: BrigadeID is non-empty
// POST: Every fetched line lands in exactly one counts bucket; SyncState and
// one SyncLogEntry reflect the invocation
func ExecutePullSync(ctx context.Context, input PullSyncInput, deps PullSyncDeps) (synclog.Counts, error) {
	now := deps.Now()
	if input.To.IsZero() {
		input.To = now
	}
	if input.FullSync {
		input.From = input.To.AddDate(0, -FullSyncMonths, 0)
	} else if input.From.IsZero() {
		input.From = input.To.AddDate(0, -1, 0)
	}

	operation := synclog.OperationPull
	if input.FullSync {
		operation = synclog.OperationFullSync
	}
	window := fmt.Sprintf("%s..%s", input.From.Format("2006-01-02"), input.To.Format("2006-01-02"))

	lines, err := deps.DLB.FetchAttendance(ctx, input.BrigadeID, input.From, input.To)
	if err != nil {
		recordPullFailure(ctx, input, deps, operation, window, now, err)
		return synclog.Counts{}, err
	}

	identityMap, err := BuildIdentityMap(ctx, input.BrigadeID, BuildIdentityMapDeps{MemberStore: deps.MemberStore})
	if err != nil {
		recordPullFailure(ctx, input, deps, operation, window, now, err)
		return synclog.Counts{}, err
	}

	applyDeps := ApplyAttendanceDeps{
		AttendanceStore: deps.AttendanceStore,
		GenerateID:      deps.GenerateID,
		Now:             deps.Now,
	}

	var counts synclog.Counts
	for _, line := range lines {
		localID, ok := identityMap.Resolve(line.MemberID)
		if !ok {
			counts.Skipped++
			slog.Debug("pull_sync_unmapped_member", "dlb_member_id", line.MemberID, "muster_id", line.MusterID)
			continue
		}
		record, err := recordFromLine(localID, line, muster.SourcePull)
		if err != nil {
			counts.Failed++
			slog.Warn("pull_sync_bad_line", "error", err, "muster_id", line.MusterID, "dlb_member_id", line.MemberID)
			continue
		}
		outcome, err := ExecuteApplyAttendance(ctx, record, applyDeps)
		if err != nil {
			counts.Failed++
			slog.Warn("pull_sync_apply_failed", "error", err, "muster_id", line.MusterID, "member_id", localID)
			continue
		}
		bucket(&counts, outcome)
	}

	entry := synclog.Entry{
		ID:          deps.GenerateID(),
		Operation:   operation,
		ReferenceID: window,
		Status:      counts.Status(),
		Details:     countsDetails(counts),
		CreatedAt:   deps.Now(),
	}
	if err := deps.EntryStore.Append(ctx, entry); err != nil {
		slog.Error("pull_sync_log_append_failed", "error", err)
	}
	state := synclog.State{
		BrigadeID:    input.BrigadeID,
		LastSyncAt:   deps.Now(),
		SyncFromDate: input.From,
		SyncToDate:   input.To,
		Status:       synclog.StateCompleted,
	}
	if err := deps.StateStore.Save(ctx, state); err != nil {
		slog.Error("pull_sync_state_save_failed", "error", err)
	}

	slog.Info("pull_sync_done", "brigade_id", input.BrigadeID, "window", window,
		"created", counts.Created, "updated", counts.Updated, "unchanged", counts.Unchanged,
		"skipped", counts.Skipped, "failed", counts.Failed)
	return counts, nil
}

// recordPullFailure marks the sync failed before any record processing. The
// saved state carries a zero LastSyncAt, which the state store treats as
// "leave the stored timestamp untouched": only a completed batch advances it.
func recordPullFailure(ctx context.Context, input PullSyncInput, deps PullSyncDeps, operation, window string, now time.Time, cause error) {
	slog.Error("pull_sync_failed", "brigade_id", input.BrigadeID, "window", window, "error", cause)
	entry := synclog.Entry{
		ID:          deps.GenerateID(),
		Operation:   operation,
		ReferenceID: window,
		Status:      synclog.StatusFailed,
		Details:     cause.Error(),
		CreatedAt:   now,
	}
	if err := deps.EntryStore.Append(ctx, entry); err != nil {
		slog.Error("pull_sync_log_append_failed", "error", err)
	}
	state := synclog.State{
		BrigadeID:    input.BrigadeID,
		SyncFromDate: input.From,
		SyncToDate:   input.To,
		Status:       synclog.StateFailed,
		ErrorMessage: cause.Error(),
	}
	if err := deps.StateStore.Save(ctx, state); err != nil {
		slog.Error("pull_sync_state_save_failed", "error", err)
	}
}

// recordFromLine converts a DLB attendance line into a domain record.
func recordFromLine(localMemberID string, line dlb.AttendanceLine, source string) (muster.Record, error) {
	status, err := muster.ParseStatusCode(line.StatusCode)
	if err != nil {
		return muster.Record{}, err
	}
	eventDate, err := time.Parse("2006-01-02", line.CallDate)
	if err != nil {
		return muster.Record{}, fmt.Errorf("invalid call date %q: %w", line.CallDate, err)
	}
	return muster.Record{
		MemberID:  localMemberID,
		MusterID:  line.MusterID,
		EventDate: eventDate,
		EventType: muster.ClassifyEventType(line.CallType, line.ICADNumber),
		Status:    status,
		Position:  line.Position,
		Truck:     line.Truck,
		Notes:     line.Notes,
		Source:    source,
	}, nil
}

func bucket(counts *synclog.Counts, outcome ApplyOutcome) {
	switch outcome {
	case OutcomeCreated:
		counts.Created++
	case OutcomeUpdated:
		counts.Updated++
	case OutcomeUnchanged:
		counts.Unchanged++
	}
}

func countsDetails(c synclog.Counts) string {
	return fmt.Sprintf("created=%d updated=%d unchanged=%d skipped=%d failed=%d",
		c.Created, c.Updated, c.Unchanged, c.Skipped, c.Failed)
}
