package event

import (
	"errors"
	"time"
)

// Event type constants.
const (
	TypeTraining = "training" // generated weekly training night
	TypeMeeting  = "meeting"  // brigade meeting or other fixed event
)

// Max length constants.
const (
	MaxTitleLength = 200
	MaxNotesLength = 2000
)

// Event is a persisted brigade calendar entry. Training events are produced
// by the schedule generator; Notes carries the move reason when the
// occurrence was shifted off a public holiday.
type Event struct {
	ID              string
	Title           string
	Type            string
	Date            time.Time
	StartTime       string // HH:MM
	DurationMinutes int
	Notes           string
	CreatedAt       time.Time
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.Title == "" {
		return errors.New("event title cannot be empty")
	}
	if len(e.Title) > MaxTitleLength {
		return errors.New("event title cannot exceed 200 characters")
	}
	if e.Type != TypeTraining && e.Type != TypeMeeting {
		return errors.New("event type must be 'training' or 'meeting'")
	}
	if e.Date.IsZero() {
		return errors.New("event date is required")
	}
	if len(e.Notes) > MaxNotesLength {
		return errors.New("event notes cannot exceed 2000 characters")
	}
	return nil
}
