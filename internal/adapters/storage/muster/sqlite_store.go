package muster

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"brigadeportal/internal/adapters/storage"
	domain "brigadeportal/internal/domain/muster"
)

const dateFormat = "2006-01-02"
const timestampFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const recordColumns = "id, member_id, muster_id, event_date, event_type, status, position, truck, notes, source, updated_at"

// GetByNaturalKey retrieves the Record for (memberID, musterID).
// PRE: memberID is non-empty, musterID is non-zero
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByNaturalKey(ctx context.Context, memberID string, musterID int64) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM attendance_record WHERE member_id = ? AND muster_id = ?",
		memberID, musterID)
	entity, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return domain.Record{}, ErrNotFound
	}
	return entity, err
}

// Insert adds a new Record.
// PRE: entity has been validated
// POST: Row inserted, or ErrDuplicate on a natural-key collision
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_record (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.MemberID, entity.MusterID,
		entity.EventDate.Format(dateFormat), entity.EventType, entity.Status,
		entity.Position, entity.Truck, entity.Notes, entity.Source,
		entity.UpdatedAt.Format(timestampFormat),
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: member %s muster %d", ErrDuplicate, entity.MemberID, entity.MusterID)
	}
	return err
}

// Update rewrites the mutable fields for the record with the same natural key.
// PRE: a row exists for (MemberID, MusterID)
// POST: status, position, truck, notes, source and updated_at are rewritten
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Record) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance_record
		 SET status = ?, position = ?, truck = ?, notes = ?, source = ?, updated_at = ?
		 WHERE member_id = ? AND muster_id = ?`,
		entity.Status, entity.Position, entity.Truck, entity.Notes, entity.Source,
		entity.UpdatedAt.Format(timestampFormat),
		entity.MemberID, entity.MusterID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByMember retrieves a member's records, newest event first.
// PRE: memberID is non-empty, limit > 0
// POST: Returns up to limit records
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string, limit int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM attendance_record WHERE member_id = ? ORDER BY event_date DESC, muster_id DESC LIMIT ?",
		memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByMemberSince retrieves a member's records on/after the given date.
// PRE: memberID is non-empty
// POST: Returns matching records ordered by event date
func (s *SQLiteStore) ListByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM attendance_record WHERE member_id = ? AND event_date >= ? ORDER BY event_date",
		memberID, since.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure.
// Matched on the driver's message text; modernc.org/sqlite does not export a
// stable sentinel for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var entity domain.Record
	var dateStr, updatedStr string
	err := row.Scan(&entity.ID, &entity.MemberID, &entity.MusterID, &dateStr, &entity.EventType,
		&entity.Status, &entity.Position, &entity.Truck, &entity.Notes, &entity.Source, &updatedStr)
	if err != nil {
		return domain.Record{}, err
	}
	entity.EventDate, _ = time.Parse(dateFormat, dateStr)
	entity.UpdatedAt, _ = time.Parse(timestampFormat, updatedStr)
	return entity, nil
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var results []domain.Record
	for rows.Next() {
		entity, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
