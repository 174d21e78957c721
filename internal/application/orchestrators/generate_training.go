package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brigadeportal/internal/domain/event"
	"brigadeportal/internal/domain/holiday"
	"brigadeportal/internal/domain/synclog"
	"brigadeportal/internal/domain/training"
)

// TrainingEventTitle is the title given to generated training events.
const TrainingEventTitle = "Weekly Training"

// TrainingEventStore defines the calendar store interface for generation.
type TrainingEventStore interface {
	Save(ctx context.Context, value event.Event) error
	ExistsOnDate(ctx context.Context, eventType string, date time.Time) (bool, error)
}

// GenerateTrainingInput carries input for the training event generator.
type GenerateTrainingInput struct {
	Start           time.Time
	HorizonMonths   int
	Weekday         time.Weekday
	StartTime       string // HH:MM
	DurationMinutes int
	Region          holiday.Region
}

// GenerateTrainingDeps holds dependencies for GenerateTrainingEvents.
type GenerateTrainingDeps struct {
	Generator  *training.Generator
	EventStore TrainingEventStore
	EntryStore SyncEntryStore
	GenerateID func() string
	Now        func() time.Time
}

// GenerateTrainingResult carries generation counts.
type GenerateTrainingResult struct {
	Generated       int
	SkippedExisting int
	SkippedHoliday  int
}

// ExecuteGenerateTrainingEvents runs the schedule generator over the horizon
// and persists each occurrence as a calendar event. The generator itself is
// pure; deduplication against already-persisted training events happens
// here, so re-running over an overlapping range inserts nothing twice.
// PRE: input fields are valid generator inputs
// POST: One training event exists per generated occurrence date; a schedule
// SyncLogEntry summarizes the run
func ExecuteGenerateTrainingEvents(ctx context.Context, input GenerateTrainingInput, deps GenerateTrainingDeps) (GenerateTrainingResult, error) {
	occurrences, skippedWeeks, err := deps.Generator.Generate(
		input.Start, input.HorizonMonths, input.Weekday, input.StartTime, input.DurationMinutes, input.Region)
	if err != nil {
		return GenerateTrainingResult{}, err
	}

	var result GenerateTrainingResult
	result.SkippedHoliday = len(skippedWeeks)
	for _, week := range skippedWeeks {
		slog.Warn("training_week_skipped", "date", week.Date.Format("2006-01-02"), "reason", week.Reason)
	}

	for _, occ := range occurrences {
		exists, err := deps.EventStore.ExistsOnDate(ctx, event.TypeTraining, occ.Date)
		if err != nil {
			return result, fmt.Errorf("checking existing training event: %w", err)
		}
		if exists {
			result.SkippedExisting++
			continue
		}
		e := event.Event{
			ID:              deps.GenerateID(),
			Title:           TrainingEventTitle,
			Type:            event.TypeTraining,
			Date:            occ.Date,
			StartTime:       occ.StartTime,
			DurationMinutes: occ.DurationMinutes,
			Notes:           occ.MoveReason,
			CreatedAt:       deps.Now(),
		}
		if err := e.Validate(); err != nil {
			return result, err
		}
		if err := deps.EventStore.Save(ctx, e); err != nil {
			return result, fmt.Errorf("saving training event: %w", err)
		}
		result.Generated++
	}

	entry := synclog.Entry{
		ID:        deps.GenerateID(),
		Operation: synclog.OperationSchedule,
		Status:    synclog.StatusSuccess,
		Details: fmt.Sprintf("generated=%d skipped_existing=%d skipped_holiday=%d horizon_months=%d",
			result.Generated, result.SkippedExisting, result.SkippedHoliday, input.HorizonMonths),
		CreatedAt: deps.Now(),
	}
	if err := deps.EntryStore.Append(ctx, entry); err != nil {
		slog.Error("training_generate_log_append_failed", "error", err)
	}

	slog.Info("training_events_generated", "generated", result.Generated,
		"skipped_existing", result.SkippedExisting, "skipped_holiday", result.SkippedHoliday)
	return result, nil
}
