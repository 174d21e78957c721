package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	musterStore "brigadeportal/internal/adapters/storage/muster"
	"brigadeportal/internal/domain/muster"
)

// ApplyOutcome is the three-way result of reconciling one incoming record.
// All counts surfaced to callers and the sync log derive from it.
type ApplyOutcome string

const (
	OutcomeCreated   ApplyOutcome = "created"
	OutcomeUpdated   ApplyOutcome = "updated"
	OutcomeUnchanged ApplyOutcome = "unchanged"
)

// ReconcilerAttendanceStore defines the attendance store interface for
// reconciliation.
type ReconcilerAttendanceStore interface {
	GetByNaturalKey(ctx context.Context, memberID string, musterID int64) (muster.Record, error)
	Insert(ctx context.Context, value muster.Record) error
	Update(ctx context.Context, value muster.Record) error
}

// ApplyAttendanceDeps holds dependencies for ApplyAttendance.
type ApplyAttendanceDeps struct {
	AttendanceStore ReconcilerAttendanceStore
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteApplyAttendance upserts one incoming attendance record against the
// (memberID, musterID) natural key. Absent -> insert and report created.
// Present with differing mutable fields -> rewrite them and report updated.
// Identical -> no write, report unchanged.
//
// Safe to call concurrently for the same key: a uniqueness violation on
// insert means another invocation created the row first, and the apply is
// retried as an update against the winner's row.
// PRE: incoming has member id, muster id, event date, type, status, source
// POST: Stored state reflects incoming's mutable fields; replaying the same
// record is a no-op
func ExecuteApplyAttendance(ctx context.Context, incoming muster.Record, deps ApplyAttendanceDeps) (ApplyOutcome, error) {
	existing, err := deps.AttendanceStore.GetByNaturalKey(ctx, incoming.MemberID, incoming.MusterID)
	if err != nil && !errors.Is(err, musterStore.ErrNotFound) {
		return "", fmt.Errorf("looking up attendance record: %w", err)
	}

	if errors.Is(err, musterStore.ErrNotFound) {
		fresh := incoming
		fresh.ID = deps.GenerateID()
		fresh.UpdatedAt = deps.Now()
		if err := fresh.Validate(); err != nil {
			return "", err
		}
		insertErr := deps.AttendanceStore.Insert(ctx, fresh)
		if insertErr == nil {
			return OutcomeCreated, nil
		}
		if !errors.Is(insertErr, musterStore.ErrDuplicate) {
			return "", fmt.Errorf("inserting attendance record: %w", insertErr)
		}
		// Lost the race: another invocation inserted the row between our
		// lookup and insert. Re-read and fall through to the update path.
		existing, err = deps.AttendanceStore.GetByNaturalKey(ctx, incoming.MemberID, incoming.MusterID)
		if err != nil {
			return "", fmt.Errorf("re-reading after concurrent insert: %w", err)
		}
	}

	if existing.SameMutableFields(incoming) {
		return OutcomeUnchanged, nil
	}

	updated := existing
	updated.Status = incoming.Status
	updated.Position = incoming.Position
	updated.Truck = incoming.Truck
	updated.Notes = incoming.Notes
	updated.Source = incoming.Source
	updated.UpdatedAt = deps.Now()
	if err := deps.AttendanceStore.Update(ctx, updated); err != nil {
		return "", fmt.Errorf("updating attendance record: %w", err)
	}
	return OutcomeUpdated, nil
}
