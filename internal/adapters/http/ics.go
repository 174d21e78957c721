package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"brigadeportal/internal/domain/event"
)

// icsDefaultMonths is how far the calendar feed looks back and ahead.
const icsDefaultMonths = 6

// handleTrainingICS serves the generated training schedule as an iCalendar
// feed, for subscribing from members' phone calendars.
// GET /api/training/schedule.ics
func (s *server) handleTrainingICS(w http.ResponseWriter, r *http.Request) {
	now := s.deps.Now()
	from := now.AddDate(0, -icsDefaultMonths, 0)
	to := now.AddDate(0, icsDefaultMonths, 0)

	events, err := s.stores.EventStore.ListBetween(r.Context(), event.TypeTraining, from, to)
	if err != nil {
		slog.Error("training_ics_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//brigadeportal//training schedule//EN")

	for _, e := range events {
		start, err := eventStart(e)
		if err != nil {
			slog.Warn("training_ics_bad_event", "event_id", e.ID, "error", err)
			continue
		}
		ve := cal.AddEvent(fmt.Sprintf("training-%s@%s", e.ID, s.deps.BrigadeID))
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(now)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(time.Duration(e.DurationMinutes) * time.Minute))
		ve.SetSummary(e.Title)
		if e.Notes != "" {
			ve.SetDescription(e.Notes)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="training-schedule.ics"`)
	if err := cal.SerializeTo(w); err != nil {
		slog.Error("training_ics_serialize_failed", "error", err)
	}
}

// eventStart combines an event's date with its HH:MM start time.
func eventStart(e event.Event) (time.Time, error) {
	t, err := time.Parse("15:04", e.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", e.StartTime, err)
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
