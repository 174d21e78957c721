package projections

import (
	"context"
	"fmt"
	"time"

	domainMuster "brigadeportal/internal/domain/muster"
)

// StatsAttendanceStore defines the attendance store interface needed by the stats projection.
type StatsAttendanceStore interface {
	ListByMemberSince(ctx context.Context, memberID string, since time.Time) ([]domainMuster.Record, error)
}

// GetAttendanceStatsQuery carries input for the attendance stats projection.
type GetAttendanceStatsQuery struct {
	MemberID string
	Months   int       // trailing window, defaults to 12
	Now      time.Time // optional: if zero, time.Now() is used
}

// EventTypeStats breaks attendance down for one event type.
type EventTypeStats struct {
	Total      int
	Present    int
	Leave      int
	Absent     int
	Percentage float64
}

// GetAttendanceStatsResult carries the output of the attendance stats projection.
type GetAttendanceStatsResult struct {
	MemberID string
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD
	Overall  EventTypeStats
	Training EventTypeStats
	Callout  EventTypeStats
}

// GetAttendanceStatsDeps holds dependencies for the attendance stats projection.
type GetAttendanceStatsDeps struct {
	AttendanceStore StatsAttendanceStore
}

// QueryGetAttendanceStats aggregates a member's attendance over the trailing
// window, overall and split by event type. Approved leave is excluded from
// the percentage denominator so members on leave are not penalized.
// PRE: query.MemberID is non-empty
// POST: Percentage is present/(present+absent), 0 when the denominator is 0
func QueryGetAttendanceStats(ctx context.Context, query GetAttendanceStatsQuery, deps GetAttendanceStatsDeps) (GetAttendanceStatsResult, error) {
	if query.MemberID == "" {
		return GetAttendanceStatsResult{}, fmt.Errorf("member_id is required")
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	months := query.Months
	if months <= 0 {
		months = 12
	}
	since := now.AddDate(0, -months, 0)

	records, err := deps.AttendanceStore.ListByMemberSince(ctx, query.MemberID, since)
	if err != nil {
		return GetAttendanceStatsResult{}, err
	}

	result := GetAttendanceStatsResult{
		MemberID: query.MemberID,
		From:     since.Format("2006-01-02"),
		To:       now.Format("2006-01-02"),
	}
	for _, r := range records {
		tally(&result.Overall, r)
		switch r.EventType {
		case domainMuster.EventTraining:
			tally(&result.Training, r)
		case domainMuster.EventCallout:
			tally(&result.Callout, r)
		}
	}
	finalize(&result.Overall)
	finalize(&result.Training)
	finalize(&result.Callout)
	return result, nil
}

func tally(s *EventTypeStats, r domainMuster.Record) {
	s.Total++
	switch r.Status {
	case domainMuster.StatusPresent:
		s.Present++
	case domainMuster.StatusLeave:
		s.Leave++
	case domainMuster.StatusAbsent:
		s.Absent++
	}
}

func finalize(s *EventTypeStats) {
	denominator := s.Present + s.Absent
	if denominator == 0 {
		return
	}
	s.Percentage = float64(s.Present) / float64(denominator) * 100
}
