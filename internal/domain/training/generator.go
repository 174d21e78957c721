package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"brigadeportal/internal/domain/holiday"
)

// Domain errors
var (
	ErrInvalidHorizon   = errors.New("horizon must be at least one month")
	ErrInvalidStartTime = errors.New("start time must be in HH:MM format")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

// Occurrence is a single generated training night.
// Moved is true iff the naive weekly date collided with a public holiday and
// the occurrence was shifted to the next calendar day.
type Occurrence struct {
	Date            time.Time
	StartTime       string // HH:MM
	DurationMinutes int
	Moved           bool
	MoveReason      string
}

// SkippedWeek records a week for which no occurrence was emitted because the
// naive date and the day after were both holidays.
type SkippedWeek struct {
	Date   time.Time // the naive weekly date
	Reason string
}

// HolidayLookup is the holiday calendar surface the generator depends on.
type HolidayLookup interface {
	IsHoliday(date time.Time, region holiday.Region) (bool, string, error)
}

// Generator produces the canonical training-night series for a brigade.
// Generation is pure over its inputs: each call recomputes from scratch and
// overlapping ranges yield identical dates. Deduplication against persisted
// events is the caller's job.
type Generator struct {
	holidays HolidayLookup
}

// NewGenerator creates a Generator backed by the given holiday calendar.
func NewGenerator(holidays HolidayLookup) *Generator {
	return &Generator{holidays: holidays}
}

// Generate expands the weekly training series from the first occurrence of
// weekday on/after start until start+horizonMonths. An occurrence landing on
// a holiday moves to the next calendar day; if that day is also a holiday the
// week is skipped outright rather than searched further. At most one
// occurrence is emitted per stepped week.
// PRE: horizonMonths >= 1, startTime is HH:MM, durationMinutes > 0
// POST: no returned occurrence date is a holiday in the region
func (g *Generator) Generate(start time.Time, horizonMonths int, weekday time.Weekday, startTime string, durationMinutes int, region holiday.Region) ([]Occurrence, []SkippedWeek, error) {
	if horizonMonths < 1 {
		return nil, nil, ErrInvalidHorizon
	}
	if _, err := time.Parse("15:04", startTime); err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStartTime, startTime)
	}
	if durationMinutes <= 0 {
		return nil, nil, ErrInvalidDuration
	}

	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for first.Weekday() != weekday {
		first = first.AddDate(0, 0, 1)
	}
	until := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, horizonMonths, 0)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: first,
		Until:   until,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building weekly recurrence: %w", err)
	}

	var occurrences []Occurrence
	var skipped []SkippedWeek
	for _, naive := range rule.All() {
		naive = time.Date(naive.Year(), naive.Month(), naive.Day(), 0, 0, 0, 0, time.UTC)

		isHol, name, err := g.holidays.IsHoliday(naive, region)
		if err != nil {
			return nil, nil, err
		}
		if !isHol {
			occurrences = append(occurrences, Occurrence{
				Date:            naive,
				StartTime:       startTime,
				DurationMinutes: durationMinutes,
			})
			continue
		}

		next := naive.AddDate(0, 0, 1)
		nextHol, nextName, err := g.holidays.IsHoliday(next, region)
		if err != nil {
			return nil, nil, err
		}
		if nextHol {
			skipped = append(skipped, SkippedWeek{
				Date:   naive,
				Reason: fmt.Sprintf("%s and the following day (%s) are both public holidays", name, nextName),
			})
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Date:            next,
			StartTime:       startTime,
			DurationMinutes: durationMinutes,
			Moved:           true,
			MoveReason:      fmt.Sprintf("moved from %s (%s)", naive.Format("2006-01-02"), name),
		})
	}
	return occurrences, skipped, nil
}
