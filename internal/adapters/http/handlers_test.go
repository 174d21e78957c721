package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"brigadeportal/internal/adapters/dlb"
	musterStore "brigadeportal/internal/adapters/storage/muster"
	synclogStore "brigadeportal/internal/adapters/storage/synclog"
	"brigadeportal/internal/domain/event"
	"brigadeportal/internal/domain/holiday"
	"brigadeportal/internal/domain/member"
	"brigadeportal/internal/domain/muster"
	"brigadeportal/internal/domain/synclog"
	"brigadeportal/internal/domain/training"
)

const testSecret = "test-secret"

// In-memory store fakes covering the full store interfaces.

type fakeMemberStore struct {
	members map[string]member.Member
}

func (f *fakeMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s not found", id)
	}
	return m, nil
}

func (f *fakeMemberStore) Save(_ context.Context, m member.Member) error {
	f.members[m.ID] = m
	return nil
}

func (f *fakeMemberStore) List(_ context.Context, brigadeID string) ([]member.Member, error) {
	var out []member.Member
	for _, m := range f.members {
		if m.BrigadeID == brigadeID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMemberStore) ListActiveLinked(_ context.Context, brigadeID string) ([]member.Member, error) {
	var out []member.Member
	for _, m := range f.members {
		if m.BrigadeID == brigadeID && m.IsActive() && m.IsLinked() {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeAttendanceStore struct {
	records map[string]muster.Record
}

func attendanceKey(memberID string, musterID int64) string {
	return fmt.Sprintf("%s|%d", memberID, musterID)
}

func (f *fakeAttendanceStore) GetByNaturalKey(_ context.Context, memberID string, musterID int64) (muster.Record, error) {
	r, ok := f.records[attendanceKey(memberID, musterID)]
	if !ok {
		return muster.Record{}, musterStore.ErrNotFound
	}
	return r, nil
}

func (f *fakeAttendanceStore) Insert(_ context.Context, r muster.Record) error {
	key := attendanceKey(r.MemberID, r.MusterID)
	if _, exists := f.records[key]; exists {
		return musterStore.ErrDuplicate
	}
	f.records[key] = r
	return nil
}

func (f *fakeAttendanceStore) Update(_ context.Context, r muster.Record) error {
	key := attendanceKey(r.MemberID, r.MusterID)
	if _, exists := f.records[key]; !exists {
		return musterStore.ErrNotFound
	}
	f.records[key] = r
	return nil
}

func (f *fakeAttendanceStore) ListByMember(_ context.Context, memberID string, limit int) ([]muster.Record, error) {
	var out []muster.Record
	for _, r := range f.records {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAttendanceStore) ListByMemberSince(_ context.Context, memberID string, since time.Time) ([]muster.Record, error) {
	var out []muster.Record
	for _, r := range f.records {
		if r.MemberID == memberID && !r.EventDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSyncLogStore struct {
	entries []synclog.Entry
	states  map[string]synclog.State
}

func (f *fakeSyncLogStore) Append(_ context.Context, e synclog.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeSyncLogStore) ListRecent(_ context.Context, limit int) ([]synclog.Entry, error) {
	out := make([]synclog.Entry, len(f.entries))
	copy(out, f.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSyncLogStore) Get(_ context.Context, brigadeID string) (synclog.State, error) {
	s, ok := f.states[brigadeID]
	if !ok {
		return synclog.State{}, synclogStore.ErrStateNotFound
	}
	return s, nil
}

func (f *fakeSyncLogStore) Save(_ context.Context, s synclog.State) error {
	f.states[s.BrigadeID] = s
	return nil
}

type fakeEventStore struct {
	events  map[string]event.Event // keyed by date
	saveErr error
}

func (f *fakeEventStore) Save(_ context.Context, e event.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.events[e.Date.Format("2006-01-02")] = e
	return nil
}

func (f *fakeEventStore) ExistsOnDate(_ context.Context, eventType string, date time.Time) (bool, error) {
	e, ok := f.events[date.Format("2006-01-02")]
	return ok && e.Type == eventType, nil
}

func (f *fakeEventStore) ListBetween(_ context.Context, eventType string, from, to time.Time) ([]event.Event, error) {
	var out []event.Event
	for _, e := range f.events {
		if e.Type == eventType && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeDLB struct {
	lines []dlb.AttendanceLine
	err   error
}

func (f *fakeDLB) FetchAttendance(_ context.Context, _ string, _, _ time.Time) ([]dlb.AttendanceLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lines, nil
}

type testEnv struct {
	handler    http.Handler
	members    *fakeMemberStore
	attendance *fakeAttendanceStore
	synclogs   *fakeSyncLogStore
	events     *fakeEventStore
	dlbClient  *fakeDLB
}

func newTestEnv() *testEnv {
	env := &testEnv{
		members:    &fakeMemberStore{members: make(map[string]member.Member)},
		attendance: &fakeAttendanceStore{records: make(map[string]muster.Record)},
		synclogs:   &fakeSyncLogStore{states: make(map[string]synclog.State)},
		events:     &fakeEventStore{events: make(map[string]event.Event)},
		dlbClient:  &fakeDLB{},
	}
	env.members.members["mem-001"] = member.Member{
		ID: "mem-001", BrigadeID: "brigade-001", Name: "Aroha Ngata",
		Rank: "SFF", DLBMemberID: 501, Status: member.StatusActive,
	}

	n := 0
	stores := &Stores{
		MemberStore:     env.members,
		AttendanceStore: env.attendance,
		SyncEntryStore:  env.synclogs,
		SyncStateStore:  env.synclogs,
		EventStore:      env.events,
	}
	deps := Deps{
		BrigadeID:     "brigade-001",
		Region:        holiday.RegionCanterbury,
		WebhookSecret: testSecret,
		DLB:           env.dlbClient,
		Generator:     training.NewGenerator(holiday.NewCalendar()),
		Training: TrainingDefaults{
			Weekday:         time.Monday,
			StartTime:       "19:00",
			DurationMinutes: 120,
			HorizonMonths:   1,
		},
		Now: func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) },
		GenerateID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
	env.handler = NewMux(stores, deps)
	return env
}

func doJSON(t *testing.T, handler http.Handler, method, path string, headers map[string]string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func webhookBody() string {
	return `{
		"event": "attendance.updated",
		"callout": {"id": 9001, "icad_number": "F4412559", "call_type": "Structure Fire", "call_date": "2026-02-09", "status": "closed"},
		"attendance": [
			{"member_id": 501, "status": "I", "position": "BA", "truck": "PUMP1"},
			{"member_id": 999, "status": "I"}
		]
	}`
}

func TestWebhookEndpoint(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/webhook/dlb",
		map[string]string{"X-Webhook-Secret": testSecret}, webhookBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true || body["callout_id"] != float64(9001) {
		t.Errorf("body = %v", body)
	}
	if body["created"] != float64(1) || body["skipped"] != float64(1) {
		t.Errorf("counts = %v", body)
	}
	if _, err := env.attendance.GetByNaturalKey(context.Background(), "mem-001", 9001); err != nil {
		t.Errorf("record not persisted: %v", err)
	}
}

func TestWebhookEndpoint_Unauthorized(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/webhook/dlb", nil, webhookBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg, ok := body["error"].(string); !ok || msg == "" {
		t.Errorf("body = %v", body)
	}
	if len(env.attendance.records) != 0 || len(env.synclogs.entries) != 0 {
		t.Errorf("rejected webhook must not mutate anything")
	}
}

func TestWebhookEndpoint_BearerAuth(t *testing.T) {
	env := newTestEnv()
	rec, _ := doJSON(t, env.handler, http.MethodPost, "/api/webhook/dlb",
		map[string]string{"Authorization": "Bearer " + testSecret}, webhookBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookEndpoint_BadPayload(t *testing.T) {
	env := newTestEnv()
	rec, _ := doJSON(t, env.handler, http.MethodPost, "/api/webhook/dlb",
		map[string]string{"X-Webhook-Secret": testSecret}, `{"event": "attendance.updated"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSyncTriggerEndpoint(t *testing.T) {
	env := newTestEnv()
	env.dlbClient.lines = []dlb.AttendanceLine{
		{MusterID: 7001, MemberID: 501, CallDate: "2026-01-20", CallType: "Weekly Drill", StatusCode: "I"},
		{MusterID: 7002, MemberID: 999, CallDate: "2026-01-27", StatusCode: "L"},
	}

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/sync/trigger", nil, `{"full_sync": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true || body["created"] != float64(1) || body["skipped"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	state := env.synclogs.states["brigade-001"]
	if state.Status != synclog.StateCompleted {
		t.Errorf("state = %+v", state)
	}
}

func TestSyncTriggerEndpoint_UpstreamFailure(t *testing.T) {
	env := newTestEnv()
	env.dlbClient.err = fmt.Errorf("%w: status 503", dlb.ErrExternalAPI)

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/sync/trigger", nil, "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("body = %v", body)
	}
	state := env.synclogs.states["brigade-001"]
	if state.Status != synclog.StateFailed {
		t.Errorf("state = %+v", state)
	}
}

func TestSyncStatusEndpoint(t *testing.T) {
	env := newTestEnv()

	// Before any sync.
	rec, body := doJSON(t, env.handler, http.MethodGet, "/api/sync/status", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["ever_synced"] != false {
		t.Errorf("body = %v", body)
	}

	// After a sync.
	doJSON(t, env.handler, http.MethodPost, "/api/sync/trigger", nil, "")
	_, body = doJSON(t, env.handler, http.MethodGet, "/api/sync/status", nil, "")
	if body["ever_synced"] != true || body["last_sync_at"] == nil {
		t.Errorf("body = %v", body)
	}
	recent, ok := body["recent"].([]any)
	if !ok || len(recent) != 1 {
		t.Errorf("recent = %v", body["recent"])
	}
}

func TestTrainingGenerateEndpoint(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/training/generate", nil,
		`{"start": "2026-02-02", "horizon_months": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// Mondays 2 Feb to 2 Mar 2026 inclusive, no Canterbury holidays.
	if body["generated"] != float64(5) {
		t.Errorf("body = %v", body)
	}

	// Re-run is idempotent.
	_, body = doJSON(t, env.handler, http.MethodPost, "/api/training/generate", nil,
		`{"start": "2026-02-02", "horizon_months": 1}`)
	if body["generated"] != float64(0) || body["skipped_existing"] != float64(5) {
		t.Errorf("rerun body = %v", body)
	}
}

func TestTrainingGenerateEndpoint_InvalidHorizon(t *testing.T) {
	env := newTestEnv()

	rec, _ := doJSON(t, env.handler, http.MethodPost, "/api/training/generate", nil,
		`{"start": "2026-02-02", "horizon_months": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTrainingGenerateEndpoint_StorageFailure(t *testing.T) {
	env := newTestEnv()
	env.events.saveErr = errors.New("disk full")

	rec, body := doJSON(t, env.handler, http.MethodPost, "/api/training/generate", nil,
		`{"start": "2026-02-02", "horizon_months": 1}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if msg, ok := body["error"].(string); !ok || msg != "internal error" {
		t.Errorf("body = %v, want opaque internal error", body)
	}
}

func TestTrainingICSEndpoint(t *testing.T) {
	env := newTestEnv()
	doJSON(t, env.handler, http.MethodPost, "/api/training/generate", nil, `{"start": "2026-02-02"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/training/schedule.ics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	feed := rec.Body.String()
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "Weekly Training") {
		t.Errorf("feed = %q", feed)
	}
}

func TestAttendanceStatsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.attendance.records[attendanceKey("mem-001", 1)] = muster.Record{
		ID: "r1", MemberID: "mem-001", MusterID: 1,
		EventDate: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		EventType: muster.EventTraining, Status: muster.StatusPresent,
	}
	env.attendance.records[attendanceKey("mem-001", 2)] = muster.Record{
		ID: "r2", MemberID: "mem-001", MusterID: 2,
		EventDate: time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC),
		EventType: muster.EventTraining, Status: muster.StatusAbsent,
	}

	rec, body := doJSON(t, env.handler, http.MethodGet, "/api/members/mem-001/attendance/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	overall, ok := body["overall"].(map[string]any)
	if !ok || overall["total"] != float64(2) || overall["percentage"] != float64(50) {
		t.Errorf("overall = %v", body["overall"])
	}
}

func TestRecentAttendanceEndpoint(t *testing.T) {
	env := newTestEnv()
	env.attendance.records[attendanceKey("mem-001", 1)] = muster.Record{
		ID: "r1", MemberID: "mem-001", MusterID: 1,
		EventDate: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		EventType: muster.EventCallout, Status: muster.StatusPresent, Truck: "PUMP1",
	}

	rec, body := doJSON(t, env.handler, http.MethodGet, "/api/members/mem-001/attendance/recent?limit=5", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	items, ok := body["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}
	first := items[0].(map[string]any)
	if first["truck"] != "PUMP1" || first["event_date"] != "2026-02-09" {
		t.Errorf("first = %v", first)
	}
}

func TestMemberListEndpoint(t *testing.T) {
	env := newTestEnv()

	rec, body := doJSON(t, env.handler, http.MethodGet, "/api/members", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	members, ok := body["members"].([]any)
	if !ok || len(members) != 1 {
		t.Fatalf("members = %v", body["members"])
	}
	first := members[0].(map[string]any)
	if first["name"] != "Aroha Ngata" || first["dlb_member_id"] != float64(501) {
		t.Errorf("first = %v", first)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv()
	rec, body := doJSON(t, env.handler, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("status = %d, body = %v", rec.Code, body)
	}
}
