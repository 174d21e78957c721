package synclog

import (
	"context"
	"database/sql"
	"time"

	"brigadeportal/internal/adapters/storage"
	domain "brigadeportal/internal/domain/synclog"
)

const dateFormat = "2006-01-02"
const timestampFormat = time.RFC3339

// SQLiteStore implements EntryStore and StateStore using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new sync log store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append adds an Entry to the audit trail. Entries are never updated.
// PRE: entity has been validated
// POST: Row inserted
func (s *SQLiteStore) Append(ctx context.Context, entity domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_log (id, operation, reference_id, status, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.Operation, entity.ReferenceID, entity.Status, entity.Details,
		entity.CreatedAt.Format(timestampFormat),
	)
	return err
}

// ListRecent retrieves the latest entries, newest first.
// PRE: limit > 0
// POST: Returns up to limit entries
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, reference_id, status, details, created_at
		 FROM sync_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Entry
	for rows.Next() {
		var entity domain.Entry
		var createdStr string
		if err := rows.Scan(&entity.ID, &entity.Operation, &entity.ReferenceID, &entity.Status, &entity.Details, &createdStr); err != nil {
			return nil, err
		}
		entity.CreatedAt, _ = time.Parse(timestampFormat, createdStr)
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Get retrieves the sync state for a brigade.
// PRE: brigadeID is non-empty
// POST: Returns the state or ErrStateNotFound
func (s *SQLiteStore) Get(ctx context.Context, brigadeID string) (domain.State, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT brigade_id, last_sync_at, sync_from_date, sync_to_date, status, error_message
		 FROM sync_state WHERE brigade_id = ?`, brigadeID)

	var entity domain.State
	var lastSync, fromDate, toDate sql.NullString
	err := row.Scan(&entity.BrigadeID, &lastSync, &fromDate, &toDate, &entity.Status, &entity.ErrorMessage)
	if err == sql.ErrNoRows {
		return domain.State{}, ErrStateNotFound
	}
	if err != nil {
		return domain.State{}, err
	}
	if lastSync.Valid {
		entity.LastSyncAt, _ = time.Parse(timestampFormat, lastSync.String)
	}
	if fromDate.Valid {
		entity.SyncFromDate, _ = time.Parse(dateFormat, fromDate.String)
	}
	if toDate.Valid {
		entity.SyncToDate, _ = time.Parse(dateFormat, toDate.String)
	}
	return entity, nil
}

// Save upserts the sync state row for a brigade. A zero LastSyncAt leaves any
// previously stored timestamp in place, so marking a batch failed never erases
// the time of the last completed sync.
// PRE: entity has been validated
// POST: Row inserted or updated; last_sync_at only advances when set
func (s *SQLiteStore) Save(ctx context.Context, entity domain.State) error {
	var lastSync any
	if !entity.LastSyncAt.IsZero() {
		lastSync = entity.LastSyncAt.Format(timestampFormat)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (brigade_id, last_sync_at, sync_from_date, sync_to_date, status, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(brigade_id) DO UPDATE SET
			last_sync_at=COALESCE(excluded.last_sync_at, sync_state.last_sync_at),
			sync_from_date=excluded.sync_from_date,
			sync_to_date=excluded.sync_to_date,
			status=excluded.status,
			error_message=excluded.error_message`,
		entity.BrigadeID, lastSync,
		entity.SyncFromDate.Format(dateFormat), entity.SyncToDate.Format(dateFormat),
		entity.Status, entity.ErrorMessage,
	)
	return err
}
