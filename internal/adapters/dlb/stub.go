package dlb

import (
	"context"
	"log/slog"
	"time"
)

// StubClient is a no-op DLB client for development without API credentials.
// It logs fetches and returns no attendance lines.
type StubClient struct{}

// NewStubClient creates a new StubClient.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// FetchAttendance logs the request and returns an empty result.
// PRE: none
// POST: Returns an empty, non-nil slice
func (c *StubClient) FetchAttendance(_ context.Context, brigadeID string, from, to time.Time) ([]AttendanceLine, error) {
	slog.Info("stub_dlb_fetch", "brigade_id", brigadeID,
		"from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))
	return []AttendanceLine{}, nil
}
