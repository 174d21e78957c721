package member

import (
	"context"
	"database/sql"
	"fmt"

	"brigadeportal/internal/adapters/storage"
	domain "brigadeportal/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const memberColumns = "id, brigade_id, name, rank, dlb_member_id, status"

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	entity, err := scanMember(row)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, brigade_id, name, rank, dlb_member_id, status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			brigade_id=excluded.brigade_id,
			name=excluded.name,
			rank=excluded.rank,
			dlb_member_id=excluded.dlb_member_id,
			status=excluded.status`,
		entity.ID, entity.BrigadeID, entity.Name, entity.Rank, entity.DLBMemberID, entity.Status,
	)
	return err
}

// List retrieves all Members of a brigade ordered by name.
// PRE: brigadeID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, brigadeID string) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM member WHERE brigade_id = ? ORDER BY name", brigadeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

// ListActiveLinked retrieves active members with a DLB member id.
// PRE: brigadeID is non-empty
// POST: Returns the identity-map population for the brigade
func (s *SQLiteStore) ListActiveLinked(ctx context.Context, brigadeID string) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM member WHERE brigade_id = ? AND status = ? AND dlb_member_id != 0 ORDER BY name",
		brigadeID, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var entity domain.Member
	err := row.Scan(&entity.ID, &entity.BrigadeID, &entity.Name, &entity.Rank, &entity.DLBMemberID, &entity.Status)
	return entity, err
}

func scanMembers(rows *sql.Rows) ([]domain.Member, error) {
	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
