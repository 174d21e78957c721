package orchestrators

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"brigadeportal/internal/domain/muster"
	"brigadeportal/internal/domain/synclog"
)

// Webhook errors. Neither mutates any state.
var (
	// ErrBadSecret indicates a missing or wrong webhook secret. Rejected at
	// request level only; nothing is written to the sync log.
	ErrBadSecret = errors.New("invalid webhook secret")
	// ErrInvalidPayload indicates a malformed payload (bad JSON, missing
	// callout id or call date).
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// WebhookCallout is the muster header of a DLB push notification.
type WebhookCallout struct {
	ID         int64  `json:"id"`
	ICADNumber string `json:"icad_number"`
	CallType   string `json:"call_type"`
	CallDate   string `json:"call_date"` // YYYY-MM-DD
	Status     string `json:"status"`
}

// WebhookAttendanceLine is one member's attendance within a push payload.
type WebhookAttendanceLine struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"` // I, L or A
	Position string `json:"position"`
	Truck    string `json:"truck"`
}

// WebhookPayload is the body of a DLB push notification.
type WebhookPayload struct {
	Event      string                  `json:"event"`
	Callout    WebhookCallout          `json:"callout"`
	Attendance []WebhookAttendanceLine `json:"attendance"`
}

// IngestWebhookInput carries input for the webhook ingestor.
type IngestWebhookInput struct {
	BrigadeID     string
	Authorization string // Authorization header value, expects "Bearer <secret>"
	SecretHeader  string // X-Webhook-Secret header value
	Body          []byte
}

// IngestWebhookDeps holds dependencies for IngestWebhook.
type IngestWebhookDeps struct {
	Secret          string
	MemberStore     IdentityMapMemberStore
	AttendanceStore ReconcilerAttendanceStore
	EntryStore      SyncEntryStore
	StateStore      SyncStateStore
	GenerateID      func() string
	Now             func() time.Time
}

// IngestWebhookResult carries the outcome of one webhook delivery.
type IngestWebhookResult struct {
	Event     string
	CalloutID int64
	EventType string
	Counts    synclog.Counts
}

// ExecuteIngestWebhook authenticates, validates and reconciles one DLB push
// notification. Lines are processed continue-on-error: a failure on one line
// never aborts the rest. DLB delivers at-least-once, so replaying an
// identical payload yields unchanged for every line; idempotence comes from
// the reconciler, not from deduplicating deliveries.
// PRE: deps.Secret is configured
// POST: On success, SyncState is updated and a webhook SyncLogEntry
// referencing the muster id is written; on ErrBadSecret/ErrInvalidPayload
// nothing is mutated
func ExecuteIngestWebhook(ctx context.Context, input IngestWebhookInput, deps IngestWebhookDeps) (IngestWebhookResult, error) {
	if !secretMatches(input.Authorization, input.SecretHeader, deps.Secret) {
		return IngestWebhookResult{}, ErrBadSecret
	}

	var payload WebhookPayload
	if err := json.Unmarshal(input.Body, &payload); err != nil {
		return IngestWebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Callout.ID == 0 {
		return IngestWebhookResult{}, fmt.Errorf("%w: missing callout id", ErrInvalidPayload)
	}
	callDate, err := time.Parse("2006-01-02", payload.Callout.CallDate)
	if err != nil {
		return IngestWebhookResult{}, fmt.Errorf("%w: missing or invalid call date", ErrInvalidPayload)
	}

	eventType := muster.ClassifyEventType(payload.Callout.CallType, payload.Callout.ICADNumber)

	identityMap, err := BuildIdentityMap(ctx, input.BrigadeID, BuildIdentityMapDeps{MemberStore: deps.MemberStore})
	if err != nil {
		return IngestWebhookResult{}, fmt.Errorf("building identity map: %w", err)
	}

	applyDeps := ApplyAttendanceDeps{
		AttendanceStore: deps.AttendanceStore,
		GenerateID:      deps.GenerateID,
		Now:             deps.Now,
	}

	var counts synclog.Counts
	for _, line := range payload.Attendance {
		localID, ok := identityMap.Resolve(line.MemberID)
		if !ok {
			counts.Skipped++
			slog.Debug("webhook_unmapped_member", "dlb_member_id", line.MemberID, "callout_id", payload.Callout.ID)
			continue
		}
		status, err := muster.ParseStatusCode(line.Status)
		if err != nil {
			counts.Failed++
			slog.Warn("webhook_bad_line", "error", err, "dlb_member_id", line.MemberID, "callout_id", payload.Callout.ID)
			continue
		}
		record := muster.Record{
			MemberID:  localID,
			MusterID:  payload.Callout.ID,
			EventDate: callDate,
			EventType: eventType,
			Status:    status,
			Position:  line.Position,
			Truck:     line.Truck,
			Source:    muster.SourceWebhook,
		}
		outcome, err := ExecuteApplyAttendance(ctx, record, applyDeps)
		if err != nil {
			counts.Failed++
			slog.Warn("webhook_apply_failed", "error", err, "member_id", localID, "callout_id", payload.Callout.ID)
			continue
		}
		bucket(&counts, outcome)
	}

	entry := synclog.Entry{
		ID:          deps.GenerateID(),
		Operation:   synclog.OperationWebhook,
		ReferenceID: strconv.FormatInt(payload.Callout.ID, 10),
		Status:      counts.Status(),
		Details:     fmt.Sprintf("event=%s type=%s %s", payload.Event, eventType, countsDetails(counts)),
		CreatedAt:   deps.Now(),
	}
	if err := deps.EntryStore.Append(ctx, entry); err != nil {
		slog.Error("webhook_log_append_failed", "error", err)
	}
	state := synclog.State{
		BrigadeID:    input.BrigadeID,
		LastSyncAt:   deps.Now(),
		SyncFromDate: callDate,
		SyncToDate:   callDate,
		Status:       synclog.StateCompleted,
	}
	if err := deps.StateStore.Save(ctx, state); err != nil {
		slog.Error("webhook_state_save_failed", "error", err)
	}

	slog.Info("webhook_ingested", "callout_id", payload.Callout.ID, "event", payload.Event,
		"type", eventType, "created", counts.Created, "updated", counts.Updated,
		"unchanged", counts.Unchanged, "skipped", counts.Skipped, "failed", counts.Failed)

	return IngestWebhookResult{
		Event:     payload.Event,
		CalloutID: payload.Callout.ID,
		EventType: eventType,
		Counts:    counts,
	}, nil
}

// secretMatches checks the shared secret from either header in constant time.
func secretMatches(authorization, secretHeader, want string) bool {
	if want == "" {
		return false
	}
	got := secretHeader
	if got == "" {
		bearer := strings.TrimSpace(authorization)
		if rest, ok := strings.CutPrefix(bearer, "Bearer "); ok {
			got = strings.TrimSpace(rest)
		}
	}
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
