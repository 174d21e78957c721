package muster

import (
	"context"
	"errors"
	"time"

	domain "brigadeportal/internal/domain/muster"
)

// Store errors.
var (
	// ErrNotFound indicates no record exists for the natural key.
	ErrNotFound = errors.New("attendance record not found")
	// ErrDuplicate indicates an insert hit the (member_id, muster_id)
	// uniqueness constraint. Reconciliation treats this as a concurrent
	// creation and retries the apply as an update.
	ErrDuplicate = errors.New("attendance record already exists")
)

// Store persists attendance Records.
type Store interface {
	GetByNaturalKey(ctx context.Context, memberID string, musterID int64) (domain.Record, error)
	Insert(ctx context.Context, value domain.Record) error
	// Update rewrites the mutable fields (status, position, truck, notes),
	// source and updated_at for the record with the same natural key.
	Update(ctx context.Context, value domain.Record) error
	ListByMember(ctx context.Context, memberID string, limit int) ([]domain.Record, error)
	ListByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Record, error)
}
