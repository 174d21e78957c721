package member

import (
	"context"

	domain "brigadeportal/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, brigadeID string) ([]domain.Member, error)
	// ListActiveLinked returns active members with a non-zero DLB member id,
	// the population the identity map is built from.
	ListActiveLinked(ctx context.Context, brigadeID string) ([]domain.Member, error)
}
