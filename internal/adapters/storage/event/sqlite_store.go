package event

import (
	"context"
	"time"

	"brigadeportal/internal/adapters/storage"
	domain "brigadeportal/internal/domain/event"
)

const dateFormat = "2006-01-02"
const timestampFormat = time.RFC3339

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new calendar event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Event to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendar_event (id, title, type, event_date, start_time, duration_minutes, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			type=excluded.type,
			event_date=excluded.event_date,
			start_time=excluded.start_time,
			duration_minutes=excluded.duration_minutes,
			notes=excluded.notes`,
		entity.ID, entity.Title, entity.Type, entity.Date.Format(dateFormat),
		entity.StartTime, entity.DurationMinutes, entity.Notes,
		entity.CreatedAt.Format(timestampFormat),
	)
	return err
}

// ExistsOnDate reports whether an event of the type exists on the date.
// PRE: eventType is non-empty
// POST: Returns true if at least one matching row exists
func (s *SQLiteStore) ExistsOnDate(ctx context.Context, eventType string, date time.Time) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM calendar_event WHERE type = ? AND event_date = ?",
		eventType, date.Format(dateFormat))
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListBetween retrieves events of the type within [from, to], ordered by date.
// PRE: from is before or equal to to
// POST: Returns matching entities
func (s *SQLiteStore) ListBetween(ctx context.Context, eventType string, from, to time.Time) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, type, event_date, start_time, duration_minutes, notes, created_at
		 FROM calendar_event WHERE type = ? AND event_date >= ? AND event_date <= ?
		 ORDER BY event_date`,
		eventType, from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var entity domain.Event
		var dateStr, createdStr string
		if err := rows.Scan(&entity.ID, &entity.Title, &entity.Type, &dateStr, &entity.StartTime,
			&entity.DurationMinutes, &entity.Notes, &createdStr); err != nil {
			return nil, err
		}
		entity.Date, _ = time.Parse(dateFormat, dateStr)
		entity.CreatedAt, _ = time.Parse(timestampFormat, createdStr)
		results = append(results, entity)
	}
	return results, rows.Err()
}
