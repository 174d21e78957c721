package holiday

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestEasterSunday checks the Gregorian computus against known dates.
func TestEasterSunday(t *testing.T) {
	cases := []struct {
		year int
		want time.Time
	}{
		{2000, date(2000, time.April, 23)},
		{2016, date(2016, time.March, 27)},
		{2024, date(2024, time.March, 31)},
		{2025, date(2025, time.April, 20)},
		{2026, date(2026, time.April, 5)},
		{2038, date(2038, time.April, 25)},
	}
	for _, tc := range cases {
		if got := EasterSunday(tc.year); !got.Equal(tc.want) {
			t.Errorf("EasterSunday(%d) = %s, want %s", tc.year, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func mustHolidays(t *testing.T, c *Calendar, year int, region Region) map[string]string {
	t.Helper()
	hs, err := c.HolidaysFor(year, region)
	if err != nil {
		t.Fatalf("HolidaysFor(%d, %s): %v", year, region, err)
	}
	byDate := make(map[string]string, len(hs))
	for _, h := range hs {
		byDate[h.Date.Format("2006-01-02")] = h.Name
	}
	return byDate
}

// TestHolidaysFor_Auckland2024 covers the Mondayisation boundary property:
// Auckland Anniversary Day falls on Monday 29 January (no shift) and
// Christmas Day 2024 is a Wednesday (no shift).
func TestHolidaysFor_Auckland2024(t *testing.T) {
	byDate := mustHolidays(t, NewCalendar(), 2024, RegionAuckland)

	if name := byDate["2024-01-29"]; name != "Auckland Anniversary Day" {
		t.Errorf("expected Auckland Anniversary Day on 2024-01-29, got %q", name)
	}
	if name := byDate["2024-12-25"]; name != "Christmas Day" {
		t.Errorf("expected Christmas Day on 2024-12-25, got %q", name)
	}
	if name := byDate["2024-03-29"]; name != "Good Friday" {
		t.Errorf("expected Good Friday on 2024-03-29, got %q", name)
	}
	if name := byDate["2024-04-01"]; name != "Easter Monday" {
		t.Errorf("expected Easter Monday on 2024-04-01, got %q", name)
	}
	if name := byDate["2024-06-03"]; name != "King's Birthday" {
		t.Errorf("expected King's Birthday on 2024-06-03, got %q", name)
	}
	if name := byDate["2024-10-28"]; name != "Labour Day" {
		t.Errorf("expected Labour Day on 2024-10-28, got %q", name)
	}
	if name := byDate["2024-06-28"]; name != "Matariki" {
		t.Errorf("expected Matariki on 2024-06-28, got %q", name)
	}
}

// TestMondayisation_ChristmasPair2021 covers 25 Dec Saturday / 26 Dec Sunday:
// both shift forward, landing on Monday 27 and Tuesday 28.
func TestMondayisation_ChristmasPair2021(t *testing.T) {
	christmas, boxing := mondayisePair(date(2021, time.December, 25), date(2021, time.December, 26))
	if !christmas.moved || !christmas.date.Equal(date(2021, time.December, 27)) {
		t.Errorf("Christmas 2021: got %s moved=%v, want 2021-12-27 moved", christmas.date.Format("2006-01-02"), christmas.moved)
	}
	if !boxing.moved || !boxing.date.Equal(date(2021, time.December, 28)) {
		t.Errorf("Boxing Day 2021: got %s moved=%v, want 2021-12-28 moved", boxing.date.Format("2006-01-02"), boxing.moved)
	}
}

// TestMondayisation_ChristmasPair2022 covers 25 Dec Sunday / 26 Dec Monday:
// Christmas skips over Boxing Day to Tuesday 27; Boxing Day stays put.
func TestMondayisation_ChristmasPair2022(t *testing.T) {
	christmas, boxing := mondayisePair(date(2022, time.December, 25), date(2022, time.December, 26))
	if !christmas.moved || !christmas.date.Equal(date(2022, time.December, 27)) {
		t.Errorf("Christmas 2022: got %s moved=%v, want 2022-12-27 moved", christmas.date.Format("2006-01-02"), christmas.moved)
	}
	if boxing.moved || !boxing.date.Equal(date(2022, time.December, 26)) {
		t.Errorf("Boxing Day 2022: got %s moved=%v, want 2022-12-26 unmoved", boxing.date.Format("2006-01-02"), boxing.moved)
	}
}

// TestMondayisation_NewYearPair2022 covers 1 Jan Saturday / 2 Jan Sunday.
func TestMondayisation_NewYearPair2022(t *testing.T) {
	byDate := mustHolidays(t, NewCalendar(), 2022, RegionWellington)
	if name := byDate["2022-01-03"]; name != "New Year's Day (observed)" {
		t.Errorf("expected New Year's Day (observed) on 2022-01-03, got %q", name)
	}
	if name := byDate["2022-01-04"]; name != "Day after New Year's Day (observed)" {
		t.Errorf("expected Day after New Year's Day (observed) on 2022-01-04, got %q", name)
	}
}

// TestMondayisation_WaitangiNotShifted confirms only the two pairs are
// Mondayised: Waitangi Day 2027 is a Saturday and stays on 6 February.
func TestMondayisation_WaitangiNotShifted(t *testing.T) {
	byDate := mustHolidays(t, NewCalendar(), 2027, RegionAuckland)
	if name := byDate["2027-02-06"]; name != "Waitangi Day" {
		t.Errorf("expected Waitangi Day on 2027-02-06, got %q", name)
	}
	if name, ok := byDate["2027-02-08"]; ok && name == "Waitangi Day" {
		t.Error("Waitangi Day must not be Mondayised")
	}
}

func TestHolidaysFor_UnsupportedRegion(t *testing.T) {
	_, err := NewCalendar().HolidaysFor(2024, Region("gondor"))
	if !errors.Is(err, ErrUnsupportedRegion) {
		t.Fatalf("expected ErrUnsupportedRegion, got %v", err)
	}
}

func TestIsHoliday(t *testing.T) {
	c := NewCalendar()
	hit, name, err := c.IsHoliday(date(2024, time.March, 29), RegionOtago)
	if err != nil {
		t.Fatalf("IsHoliday: %v", err)
	}
	if !hit || name != "Good Friday" {
		t.Errorf("expected Good Friday, got hit=%v name=%q", hit, name)
	}
	hit, _, err = c.IsHoliday(date(2024, time.March, 28), RegionOtago)
	if err != nil {
		t.Fatalf("IsHoliday: %v", err)
	}
	if hit {
		t.Error("2024-03-28 is not a holiday")
	}
}

// TestHolidaysFor_YearBeyondTables covers a year outside the seeded
// proclamation tables: Matariki and the Anniversary Day are omitted, the
// computed holidays remain, and the omission is logged.
func TestHolidaysFor_YearBeyondTables(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	byDate := mustHolidays(t, NewCalendar(), 2030, RegionAuckland)

	for d, name := range byDate {
		if name == "Matariki" || name == "Auckland Anniversary Day" {
			t.Errorf("unexpected proclamation holiday %q on %s for an unseeded year", name, d)
		}
	}
	if name := byDate["2030-04-25"]; name != "ANZAC Day" {
		t.Errorf("expected ANZAC Day on 2030-04-25, got %q", name)
	}

	logged := buf.String()
	if !strings.Contains(logged, "matariki_date_missing") {
		t.Error("missing Matariki year must be logged")
	}
	if !strings.Contains(logged, "anniversary_date_missing") {
		t.Error("missing anniversary year must be logged")
	}
}

// TestHolidaysFor_Deterministic confirms repeated calls (cache hit or not)
// return the same set.
func TestHolidaysFor_Deterministic(t *testing.T) {
	c := NewCalendar()
	first, err := c.HolidaysFor(2025, RegionCanterbury)
	if err != nil {
		t.Fatalf("HolidaysFor: %v", err)
	}
	second, err := c.HolidaysFor(2025, RegionCanterbury)
	if err != nil {
		t.Fatalf("HolidaysFor: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical sets, got %d vs %d entries", len(first), len(second))
	}
	for i := range first {
		if !first[i].Date.Equal(second[i].Date) || first[i].Name != second[i].Name {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
