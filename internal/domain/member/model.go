package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("member name cannot be empty")
	ErrInvalidStatus = errors.New("status must be 'active' or 'inactive'")
)

// Member is a brigade member in the local directory. DLBMemberID links the
// member to the external attendance system; zero means not linked. Within a
// brigade a DLB id maps to at most one active member (a unique index at the
// storage layer enforces this).
type Member struct {
	ID          string
	BrigadeID   string
	Name        string
	Rank        string
	DLBMemberID int64
	Status      string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// IsLinked returns true if the member has a DLB member id.
func (m *Member) IsLinked() bool {
	return m.DLBMemberID != 0
}
