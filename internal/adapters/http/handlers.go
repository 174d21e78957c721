package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"brigadeportal/internal/application/listutil"
	"brigadeportal/internal/application/orchestrators"
	"brigadeportal/internal/application/projections"
	"brigadeportal/internal/domain/holiday"
	"brigadeportal/internal/domain/training"
)

// maxWebhookBody caps incoming webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth reports liveness.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook ingests one DLB push notification.
// POST /api/webhook/dlb
func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	input := orchestrators.IngestWebhookInput{
		BrigadeID:     s.deps.BrigadeID,
		Authorization: r.Header.Get("Authorization"),
		SecretHeader:  r.Header.Get("X-Webhook-Secret"),
		Body:          body,
	}
	deps := orchestrators.IngestWebhookDeps{
		Secret:          s.deps.WebhookSecret,
		MemberStore:     s.stores.MemberStore,
		AttendanceStore: s.stores.AttendanceStore,
		EntryStore:      s.stores.SyncEntryStore,
		StateStore:      s.stores.SyncStateStore,
		GenerateID:      s.deps.GenerateID,
		Now:             s.deps.Now,
	}

	result, err := orchestrators.ExecuteIngestWebhook(r.Context(), input, deps)
	switch {
	case errors.Is(err, orchestrators.ErrBadSecret):
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	case errors.Is(err, orchestrators.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("webhook_handler_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"event":      result.Event,
		"callout_id": result.CalloutID,
		"event_type": result.EventType,
		"created":    result.Counts.Created,
		"updated":    result.Counts.Updated,
		"unchanged":  result.Counts.Unchanged,
		"skipped":    result.Counts.Skipped,
		"failed":     result.Counts.Failed,
	})
}

// handleSyncTrigger runs a pull sync on demand.
// POST /api/sync/trigger
func (s *server) handleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullSync bool   `json:"full_sync"`
		From     string `json:"from"` // optional YYYY-MM-DD
		To       string `json:"to"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	input := orchestrators.PullSyncInput{
		BrigadeID: s.deps.BrigadeID,
		FullSync:  req.FullSync,
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		input.From = from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		input.To = to
	}

	deps := orchestrators.PullSyncDeps{
		DLB:             s.deps.DLB,
		MemberStore:     s.stores.MemberStore,
		AttendanceStore: s.stores.AttendanceStore,
		EntryStore:      s.stores.SyncEntryStore,
		StateStore:      s.stores.SyncStateStore,
		GenerateID:      s.deps.GenerateID,
		Now:             s.deps.Now,
	}
	counts, err := orchestrators.ExecutePullSync(r.Context(), input, deps)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"created":   counts.Created,
		"updated":   counts.Updated,
		"unchanged": counts.Unchanged,
		"skipped":   counts.Skipped,
		"failed":    counts.Failed,
	})
}

// handleSyncStatus reports the sync state and recent log entries.
// GET /api/sync/status
func (s *server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetSyncStatus(r.Context(), projections.GetSyncStatusQuery{
		BrigadeID: s.deps.BrigadeID,
	}, projections.GetSyncStatusDeps{
		StateStore: s.stores.SyncStateStore,
		EntryStore: s.stores.SyncEntryStore,
	})
	if err != nil {
		slog.Error("sync_status_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	recent := make([]map[string]any, 0, len(result.Recent))
	for _, item := range result.Recent {
		recent = append(recent, map[string]any{
			"operation":    item.Operation,
			"reference_id": item.ReferenceID,
			"status":       item.Status,
			"details":      item.Details,
			"created_at":   item.CreatedAt.Format(time.RFC3339),
		})
	}
	body := map[string]any{
		"brigade_id":  result.BrigadeID,
		"ever_synced": result.EverSynced,
		"status":      result.Status,
		"recent":      recent,
	}
	if result.EverSynced {
		// Zero when every attempt so far has failed.
		if !result.LastSyncAt.IsZero() {
			body["last_sync_at"] = result.LastSyncAt.Format(time.RFC3339)
		}
		body["sync_from_date"] = result.SyncFromDate
		body["sync_to_date"] = result.SyncToDate
		if result.ErrorMessage != "" {
			body["error_message"] = result.ErrorMessage
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// handleTrainingGenerate expands the weekly training schedule.
// POST /api/training/generate
func (s *server) handleTrainingGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start         string `json:"start"` // optional YYYY-MM-DD, defaults to today
		HorizonMonths int    `json:"horizon_months"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	start := s.deps.Now()
	if req.Start != "" {
		parsed, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	horizon := req.HorizonMonths
	if horizon == 0 {
		horizon = s.deps.Training.HorizonMonths
	}

	input := orchestrators.GenerateTrainingInput{
		Start:           start,
		HorizonMonths:   horizon,
		Weekday:         s.deps.Training.Weekday,
		StartTime:       s.deps.Training.StartTime,
		DurationMinutes: s.deps.Training.DurationMinutes,
		Region:          s.deps.Region,
	}
	deps := orchestrators.GenerateTrainingDeps{
		Generator:  s.deps.Generator,
		EventStore: s.stores.EventStore,
		EntryStore: s.stores.SyncEntryStore,
		GenerateID: s.deps.GenerateID,
		Now:        s.deps.Now,
	}
	result, err := orchestrators.ExecuteGenerateTrainingEvents(r.Context(), input, deps)
	switch {
	case errors.Is(err, training.ErrInvalidHorizon),
		errors.Is(err, training.ErrInvalidStartTime),
		errors.Is(err, training.ErrInvalidDuration),
		errors.Is(err, holiday.ErrUnsupportedRegion):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("training_generate_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"generated":        result.Generated,
		"skipped_existing": result.SkippedExisting,
		"skipped_holiday":  result.SkippedHoliday,
	})
}

// handleMemberList lists the brigade roster with search, status filter and
// pagination.
// GET /api/members?q=&status=&page=&per_page=
func (s *server) handleMemberList(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), []string{"status"})

	members, err := s.stores.MemberStore.List(r.Context(), s.deps.BrigadeID)
	if err != nil {
		slog.Error("member_list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filtered := members[:0:0]
	for _, m := range members {
		if status := params.Filters["status"]; status != "" && m.Status != status {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(params.Search)) {
			continue
		}
		filtered = append(filtered, m)
	}

	page := listutil.NewPageInfo(params.Page, params.PerPage, len(filtered))
	start := page.Offset()
	end := start + page.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]map[string]any, 0, end-start)
	for _, m := range filtered[start:end] {
		items = append(items, map[string]any{
			"id":            m.ID,
			"name":          m.Name,
			"rank":          m.Rank,
			"status":        m.Status,
			"dlb_member_id": m.DLBMemberID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members":     items,
		"page":        page.Page,
		"per_page":    page.PerPage,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

// handleAttendanceStats reports a member's trailing attendance percentages.
// GET /api/members/{id}/attendance/stats
func (s *server) handleAttendanceStats(w http.ResponseWriter, r *http.Request) {
	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}

	result, err := projections.QueryGetAttendanceStats(r.Context(), projections.GetAttendanceStatsQuery{
		MemberID: chi.URLParam(r, "id"),
		Months:   months,
		Now:      s.deps.Now(),
	}, projections.GetAttendanceStatsDeps{AttendanceStore: s.stores.AttendanceStore})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": result.MemberID,
		"from":      result.From,
		"to":        result.To,
		"overall":   statsBody(result.Overall),
		"training":  statsBody(result.Training),
		"callout":   statsBody(result.Callout),
	})
}

func statsBody(s projections.EventTypeStats) map[string]any {
	return map[string]any{
		"total":      s.Total,
		"present":    s.Present,
		"leave":      s.Leave,
		"absent":     s.Absent,
		"percentage": s.Percentage,
	}
}

// handleRecentAttendance lists a member's latest attendance records.
// GET /api/members/{id}/attendance/recent
func (s *server) handleRecentAttendance(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := projections.QueryGetRecentAttendance(r.Context(), projections.GetRecentAttendanceQuery{
		MemberID: chi.URLParam(r, "id"),
		Limit:    limit,
	}, projections.GetRecentAttendanceDeps{AttendanceStore: s.stores.AttendanceStore})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]map[string]any, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, map[string]any{
			"muster_id":  item.MusterID,
			"event_date": item.EventDate,
			"event_type": item.EventType,
			"status":     item.Status,
			"position":   item.Position,
			"truck":      item.Truck,
			"notes":      item.Notes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member_id": result.MemberID,
		"items":     items,
	})
}
