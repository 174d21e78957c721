package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brigadeportal/internal/adapters/dlb"
	musterStore "brigadeportal/internal/adapters/storage/muster"
	"brigadeportal/internal/domain/member"
	"brigadeportal/internal/domain/muster"
	"brigadeportal/internal/domain/synclog"
)

var syncFixedTime = time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

func syncFixedNow() time.Time { return syncFixedTime }

// seqID returns a GenerateID func producing id-1, id-2, ...
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockAttendanceStore implements ReconcilerAttendanceStore over a map keyed
// by the natural key.
type mockAttendanceStore struct {
	records map[string]muster.Record
	inserts int
	updates int
	// failFor simulates a storage failure when applying a given member id.
	failFor string
	// raceOnce simulates a concurrent insert: the first Insert hits the
	// uniqueness constraint after this record appears underneath it.
	raceOnce *muster.Record
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{records: make(map[string]muster.Record)}
}

func naturalKey(memberID string, musterID int64) string {
	return fmt.Sprintf("%s|%d", memberID, musterID)
}

func (m *mockAttendanceStore) GetByNaturalKey(_ context.Context, memberID string, musterID int64) (muster.Record, error) {
	r, ok := m.records[naturalKey(memberID, musterID)]
	if !ok {
		return muster.Record{}, musterStore.ErrNotFound
	}
	return r, nil
}

func (m *mockAttendanceStore) Insert(_ context.Context, r muster.Record) error {
	if m.failFor != "" && r.MemberID == m.failFor {
		return errors.New("disk full")
	}
	key := naturalKey(r.MemberID, r.MusterID)
	if m.raceOnce != nil {
		m.records[naturalKey(m.raceOnce.MemberID, m.raceOnce.MusterID)] = *m.raceOnce
		m.raceOnce = nil
	}
	if _, exists := m.records[key]; exists {
		return musterStore.ErrDuplicate
	}
	m.records[key] = r
	m.inserts++
	return nil
}

func (m *mockAttendanceStore) Update(_ context.Context, r muster.Record) error {
	if m.failFor != "" && r.MemberID == m.failFor {
		return errors.New("disk full")
	}
	key := naturalKey(r.MemberID, r.MusterID)
	if _, exists := m.records[key]; !exists {
		return musterStore.ErrNotFound
	}
	m.records[key] = r
	m.updates++
	return nil
}

// mockMemberStore implements IdentityMapMemberStore.
type mockMemberStore struct {
	members []member.Member
	err     error
}

func (m *mockMemberStore) ListActiveLinked(_ context.Context, brigadeID string) ([]member.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []member.Member
	for _, mem := range m.members {
		if mem.BrigadeID == brigadeID && mem.IsActive() && mem.IsLinked() {
			out = append(out, mem)
		}
	}
	return out, nil
}

// mockEntryStore implements SyncEntryStore.
type mockEntryStore struct {
	entries []synclog.Entry
}

func (m *mockEntryStore) Append(_ context.Context, e synclog.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

// mockStateStore implements SyncStateStore.
type mockStateStore struct {
	states []synclog.State
}

func (m *mockStateStore) Save(_ context.Context, s synclog.State) error {
	m.states = append(m.states, s)
	return nil
}

func (m *mockStateStore) last() (synclog.State, bool) {
	if len(m.states) == 0 {
		return synclog.State{}, false
	}
	return m.states[len(m.states)-1], true
}

// mockDLBClient implements dlb.Client.
type mockDLBClient struct {
	lines []dlb.AttendanceLine
	err   error
	calls int
}

func (m *mockDLBClient) FetchAttendance(_ context.Context, _ string, _, _ time.Time) ([]dlb.AttendanceLine, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

func activeLinkedMember(id string, dlbID int64) member.Member {
	return member.Member{
		ID:          id,
		BrigadeID:   "brigade-001",
		Name:        "Member " + id,
		DLBMemberID: dlbID,
		Status:      member.StatusActive,
	}
}
