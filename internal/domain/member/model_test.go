package member

import (
	"errors"
	"strings"
	"testing"
)

func validMember() Member {
	return Member{
		ID:          "mem-001",
		BrigadeID:   "brigade-001",
		Name:        "Aroha Ngata",
		Rank:        "Senior Firefighter",
		DLBMemberID: 501,
		Status:      StatusActive,
	}
}

func TestMemberValidate(t *testing.T) {
	m := validMember()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid member rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Member)
		want   error
	}{
		{"empty name", func(m *Member) { m.Name = "" }, ErrEmptyName},
		{"whitespace name", func(m *Member) { m.Name = "   " }, ErrEmptyName},
		{"bad status", func(m *Member) { m.Status = "retired" }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMember()
			tc.mutate(&m)
			if err := m.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	m = validMember()
	m.Name = strings.Repeat("a", MaxNameLength+1)
	if err := m.Validate(); err == nil {
		t.Error("over-length name accepted")
	}
}

func TestMemberIsActive(t *testing.T) {
	m := validMember()
	if !m.IsActive() {
		t.Error("active member reported inactive")
	}
	m.Status = StatusInactive
	if m.IsActive() {
		t.Error("inactive member reported active")
	}
}

func TestMemberIsLinked(t *testing.T) {
	m := validMember()
	if !m.IsLinked() {
		t.Error("member with DLB id reported unlinked")
	}
	m.DLBMemberID = 0
	if m.IsLinked() {
		t.Error("member without DLB id reported linked")
	}
}
