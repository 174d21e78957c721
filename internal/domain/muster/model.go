package muster

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event type constants.
const (
	EventTraining = "training"
	EventCallout  = "callout"
)

// Attendance status constants.
const (
	StatusPresent = "present"
	StatusLeave   = "leave"
	StatusAbsent  = "absent"
)

// Source constants: which ingestion path produced the record.
const (
	SourcePull    = "pull"
	SourceWebhook = "webhook"
)

// Domain errors
var (
	ErrEmptyMemberID     = errors.New("attendance record must be associated with a member")
	ErrEmptyMusterID     = errors.New("attendance record must reference a DLB muster")
	ErrEmptyEventDate    = errors.New("event date must be set")
	ErrInvalidEventType  = errors.New("event type must be 'training' or 'callout'")
	ErrInvalidStatus     = errors.New("status must be 'present', 'leave', or 'absent'")
	ErrInvalidSource     = errors.New("source must be 'pull' or 'webhook'")
	ErrUnknownStatusCode = errors.New("unknown DLB status code")
)

// Record is one member's attendance at one DLB muster. The natural key is
// (MemberID, MusterID); reconciliation treats it as the idempotency key.
// EventDate and EventType are immutable once set; status, position, truck and
// notes are the mutable fields compared during reconciliation.
type Record struct {
	ID        string
	MemberID  string
	MusterID  int64
	EventDate time.Time
	EventType string
	Status    string
	Position  string
	Truck     string
	Notes     string
	Source    string
	UpdatedAt time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Record) Validate() error {
	if r.MemberID == "" {
		return ErrEmptyMemberID
	}
	if r.MusterID == 0 {
		return ErrEmptyMusterID
	}
	if r.EventDate.IsZero() {
		return ErrEmptyEventDate
	}
	if r.EventType != EventTraining && r.EventType != EventCallout {
		return ErrInvalidEventType
	}
	if r.Status != StatusPresent && r.Status != StatusLeave && r.Status != StatusAbsent {
		return ErrInvalidStatus
	}
	if r.Source != SourcePull && r.Source != SourceWebhook {
		return ErrInvalidSource
	}
	return nil
}

// SameMutableFields reports whether the mutable fields of both records are
// identical. Reconciliation returns "unchanged" when they are.
// INVARIANT: EventDate and EventType are not consulted
func (r *Record) SameMutableFields(other Record) bool {
	return r.Status == other.Status &&
		r.Position == other.Position &&
		r.Truck == other.Truck &&
		r.Notes == other.Notes
}

// ParseStatusCode maps DLB single-letter attendance codes to statuses:
// I (in attendance) -> present, L -> leave, A -> absent.
// PRE: code is a DLB status code
// POST: Returns the status or ErrUnknownStatusCode
func ParseStatusCode(code string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "I":
		return StatusPresent, nil
	case "L":
		return StatusLeave, nil
	case "A":
		return StatusAbsent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatusCode, code)
	}
}

// ClassifyEventType decides whether a DLB muster is a training night or a
// callout from its call type and ICAD dispatch number. The heuristic is
// fuzzy by nature: call types mentioning training/drill/exercise classify as
// training, as does a muster with neither a call type nor an ICAD number
// (real callouts carry dispatch numbers). Everything else falls back to
// callout. Do not tighten this without brigade input.
func ClassifyEventType(callType, icadNumber string) string {
	ct := strings.ToLower(strings.TrimSpace(callType))
	for _, kw := range []string{"train", "drill", "exercise", "practice"} {
		if strings.Contains(ct, kw) {
			return EventTraining
		}
	}
	if ct == "" && strings.TrimSpace(icadNumber) == "" {
		return EventTraining
	}
	return EventCallout
}
