package dlb

import (
	"context"
	"errors"
	"time"
)

// ErrExternalAPI wraps any transport, timeout or non-2xx failure from the
// DLB API. A pull that hits it is marked failed and retried on the next
// scheduled or manual trigger, never by an internal retry loop.
var ErrExternalAPI = errors.New("dlb api request failed")

// AttendanceLine is one member's attendance on one muster as reported by DLB.
type AttendanceLine struct {
	MusterID    int64  `json:"muster_id"`
	MemberID    int64  `json:"member_id"`
	CallDate    string `json:"call_date"` // YYYY-MM-DD
	CallType    string `json:"call_type"`
	ICADNumber  string `json:"icad_number"`
	StatusCode  string `json:"status"` // I, L or A
	Position    string `json:"position"`
	Truck       string `json:"truck"`
	Notes       string `json:"notes"`
}

// Client is the interface for fetching attendance history from DLB.
type Client interface {
	// FetchAttendance returns all attendance lines for the brigade within
	// [from, to]. The call is bounded by the client's configured timeout.
	FetchAttendance(ctx context.Context, brigadeID string, from, to time.Time) ([]AttendanceLine, error)
}
