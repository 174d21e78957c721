package holiday

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Region identifies the provincial district whose Anniversary Day applies.
type Region string

// Supported regions.
const (
	RegionAuckland   Region = "auckland"
	RegionWellington Region = "wellington"
	RegionCanterbury Region = "canterbury"
	RegionOtago      Region = "otago"
	RegionTaranaki   Region = "taranaki"
)

// Domain errors
var (
	// ErrUnsupportedRegion indicates a region code with no anniversary table.
	// This is a configuration error, not a runtime condition to retry.
	ErrUnsupportedRegion = errors.New("unsupported holiday region")
)

// PublicHoliday is a single observed public holiday.
// When Mondayisation shifts a holiday off a weekend, Date carries the
// observed date and Name gets an "(observed)" suffix.
type PublicHoliday struct {
	Date   time.Time
	Name   string
	Region Region
	Year   int
}

// Calendar computes the set of public holidays for a region and year.
// Fixed national days and the Easter-derived days are computed; the regional
// Anniversary Day and Matariki are proclamation dates supplied as tables.
// Results are cached per (year, region) and are derivable purely from the
// inputs and the injected tables.
type Calendar struct {
	anniversaries    map[Region]map[int]time.Time
	anniversaryNames map[Region]string
	matariki         map[int]time.Time

	mu    sync.Mutex
	cache map[string][]PublicHoliday
}

// NewCalendar creates a Calendar seeded with the default proclamation tables.
func NewCalendar() *Calendar {
	return &Calendar{
		anniversaries:    defaultAnniversaries(),
		anniversaryNames: defaultAnniversaryNames(),
		matariki:         defaultMatariki(),
		cache:            make(map[string][]PublicHoliday),
	}
}

// NewCalendarWithTables creates a Calendar with caller-supplied proclamation
// tables. Used to extend coverage to newly gazetted years without a code
// change.
func NewCalendarWithTables(anniversaries map[Region]map[int]time.Time, names map[Region]string, matariki map[int]time.Time) *Calendar {
	return &Calendar{
		anniversaries:    anniversaries,
		anniversaryNames: names,
		matariki:         matariki,
		cache:            make(map[string][]PublicHoliday),
	}
}

// HolidaysFor returns all observed public holidays for the given year and
// region, ordered by date. A year absent from a proclamation table omits that
// holiday and logs a warning: the returned set is incomplete until the
// gazetted date is added to the table.
// PRE: region is one of the supported region codes
// POST: returns the full holiday set, or ErrUnsupportedRegion
func (c *Calendar) HolidaysFor(year int, region Region) ([]PublicHoliday, error) {
	table, ok := c.anniversaries[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRegion, region)
	}

	key := fmt.Sprintf("%d/%s", year, region)
	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var hs []PublicHoliday
	add := func(date time.Time, name string) {
		hs = append(hs, PublicHoliday{Date: date, Name: name, Region: region, Year: year})
	}

	// Mondayised pairs: 1-2 January and 25-26 December.
	newYear, dayAfter := mondayisePair(civilDate(year, time.January, 1), civilDate(year, time.January, 2))
	add(newYear.date, observedName("New Year's Day", newYear.moved))
	add(dayAfter.date, observedName("Day after New Year's Day", dayAfter.moved))

	add(civilDate(year, time.February, 6), "Waitangi Day")

	easter := EasterSunday(year)
	add(easter.AddDate(0, 0, -2), "Good Friday")
	add(easter.AddDate(0, 0, 1), "Easter Monday")

	add(civilDate(year, time.April, 25), "ANZAC Day")

	add(nthWeekday(year, time.June, time.Monday, 1), "King's Birthday")

	if m, ok := c.matariki[year]; ok {
		add(m, "Matariki")
	} else {
		slog.Warn("matariki_date_missing", "year", year)
	}

	add(nthWeekday(year, time.October, time.Monday, 4), "Labour Day")

	christmas, boxing := mondayisePair(civilDate(year, time.December, 25), civilDate(year, time.December, 26))
	add(christmas.date, observedName("Christmas Day", christmas.moved))
	add(boxing.date, observedName("Boxing Day", boxing.moved))

	if ann, ok := table[year]; ok {
		add(ann, c.anniversaryNames[region])
	} else {
		slog.Warn("anniversary_date_missing", "year", year, "region", string(region))
	}

	sortByDate(hs)

	c.mu.Lock()
	c.cache[key] = hs
	c.mu.Unlock()
	return hs, nil
}

// IsHoliday reports whether the given date is an observed public holiday in
// the region, returning the holiday name when it is.
// PRE: region is supported
// POST: (true, name) on a holiday, (false, "") otherwise
func (c *Calendar) IsHoliday(date time.Time, region Region) (bool, string, error) {
	hs, err := c.HolidaysFor(date.Year(), region)
	if err != nil {
		return false, "", err
	}
	d := civilDate(date.Year(), date.Month(), date.Day())
	for _, h := range hs {
		if h.Date.Equal(d) {
			return true, h.Name, nil
		}
	}
	return false, "", nil
}

// EasterSunday computes the date of Easter Sunday in the Gregorian calendar
// using the anonymous Gregorian (Meeus/Jones/Butcher) algorithm.
// PRE: year is a Gregorian year
// POST: returns Easter Sunday at midnight UTC
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return civilDate(year, time.Month(month), day)
}

// observedDate pairs a date with whether Mondayisation moved it.
type observedDate struct {
	date  time.Time
	moved bool
}

// mondayisePair applies the two-holiday-pair Mondayisation rule: each holiday
// that falls on a weekend moves to the next weekday, skipping over the other
// holiday's date when the pair collides.
func mondayisePair(first, second time.Time) (observedDate, observedDate) {
	obsFirst := observedDate{date: first}
	obsSecond := observedDate{date: second}
	if isWeekend(first) {
		obsFirst.date = nextWeekday(first)
		obsFirst.moved = true
		if obsFirst.date.Equal(second) {
			obsFirst.date = obsFirst.date.AddDate(0, 0, 1)
		}
	}
	if isWeekend(second) {
		obsSecond.date = nextWeekday(second)
		obsSecond.moved = true
		if obsSecond.date.Equal(obsFirst.date) {
			obsSecond.date = obsSecond.date.AddDate(0, 0, 1)
		}
	}
	return obsFirst, obsSecond
}

func observedName(name string, moved bool) string {
	if moved {
		return name + " (observed)"
	}
	return name
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nextWeekday returns the first Monday-to-Friday date strictly after d's
// weekend position: Saturday and Sunday both resolve to the following Monday.
func nextWeekday(d time.Time) time.Time {
	for {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			return d
		}
	}
}

// nthWeekday returns the nth given weekday of the month (1-based).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := civilDate(year, month, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

// civilDate normalizes to midnight UTC so holiday dates compare by equality.
func civilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func sortByDate(hs []PublicHoliday) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}
