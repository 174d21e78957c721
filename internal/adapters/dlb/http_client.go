package dlb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds the outbound attendance fetch when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// HTTPClient fetches attendance history from the DLB REST API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a new HTTPClient.
// PRE: baseURL is a valid URL; token is the brigade's DLB API token
// POST: Returns a ready-to-use client with the given request timeout
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchAttendance retrieves attendance lines for the brigade and date range.
// PRE: from is before or equal to to
// POST: Returns the lines, or an error wrapping ErrExternalAPI on any
// transport/timeout/non-2xx failure
func (c *HTTPClient) FetchAttendance(ctx context.Context, brigadeID string, from, to time.Time) ([]AttendanceLine, error) {
	endpoint := fmt.Sprintf("%s/api/brigades/%s/attendance?%s", c.baseURL, url.PathEscape(brigadeID),
		url.Values{
			"from": {from.Format("2006-01-02")},
			"to":   {to.Format("2006-01-02")},
		}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrExternalAPI, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("dlb_fetch_failed", "error", err, "brigade_id", brigadeID)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("dlb_fetch_bad_status", "status", resp.StatusCode, "brigade_id", brigadeID)
		return nil, fmt.Errorf("%w: status %d: %s", ErrExternalAPI, resp.StatusCode, string(body))
	}

	var payload struct {
		Attendance []AttendanceLine `json:"attendance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrExternalAPI, err)
	}

	slog.Info("dlb_fetch_ok", "brigade_id", brigadeID, "lines", len(payload.Attendance), "duration_ms", time.Since(start).Milliseconds())
	return payload.Attendance, nil
}
