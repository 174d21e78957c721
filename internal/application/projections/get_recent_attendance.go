package projections

import (
	"context"
	"fmt"

	domainMuster "brigadeportal/internal/domain/muster"
)

// RecentAttendanceStore defines the attendance store interface needed by the recent attendance projection.
type RecentAttendanceStore interface {
	ListByMember(ctx context.Context, memberID string, limit int) ([]domainMuster.Record, error)
}

// GetRecentAttendanceQuery carries input for the recent attendance projection.
type GetRecentAttendanceQuery struct {
	MemberID string
	Limit    int // defaults to 20, capped at 100
}

// RecentAttendanceItem is one row of a member's attendance history.
type RecentAttendanceItem struct {
	MusterID  int64
	EventDate string // YYYY-MM-DD
	EventType string
	Status    string
	Position  string
	Truck     string
	Notes     string
}

// GetRecentAttendanceResult carries the output of the recent attendance projection.
type GetRecentAttendanceResult struct {
	MemberID string
	Items    []RecentAttendanceItem
}

// GetRecentAttendanceDeps holds dependencies for the recent attendance projection.
type GetRecentAttendanceDeps struct {
	AttendanceStore RecentAttendanceStore
}

// QueryGetRecentAttendance lists a member's most recent attendance records,
// newest first.
// PRE: query.MemberID is non-empty
// POST: Returns at most Limit items
func QueryGetRecentAttendance(ctx context.Context, query GetRecentAttendanceQuery, deps GetRecentAttendanceDeps) (GetRecentAttendanceResult, error) {
	if query.MemberID == "" {
		return GetRecentAttendanceResult{}, fmt.Errorf("member_id is required")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	records, err := deps.AttendanceStore.ListByMember(ctx, query.MemberID, limit)
	if err != nil {
		return GetRecentAttendanceResult{}, err
	}

	items := make([]RecentAttendanceItem, 0, len(records))
	for _, r := range records {
		items = append(items, RecentAttendanceItem{
			MusterID:  r.MusterID,
			EventDate: r.EventDate.Format("2006-01-02"),
			EventType: r.EventType,
			Status:    r.Status,
			Position:  r.Position,
			Truck:     r.Truck,
			Notes:     r.Notes,
		})
	}
	return GetRecentAttendanceResult{MemberID: query.MemberID, Items: items}, nil
}
