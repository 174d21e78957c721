package holiday

import "time"

// Anniversary Days and Matariki are set by proclamation rather than formula,
// so they are shipped as data. Dates below are the gazetted observed dates.

func defaultAnniversaries() map[Region]map[int]time.Time {
	return map[Region]map[int]time.Time{
		RegionAuckland: {
			2024: civilDate(2024, time.January, 29),
			2025: civilDate(2025, time.January, 27),
			2026: civilDate(2026, time.January, 26),
			2027: civilDate(2027, time.February, 1),
		},
		RegionWellington: {
			2024: civilDate(2024, time.January, 22),
			2025: civilDate(2025, time.January, 20),
			2026: civilDate(2026, time.January, 19),
			2027: civilDate(2027, time.January, 25),
		},
		RegionCanterbury: {
			2024: civilDate(2024, time.November, 15),
			2025: civilDate(2025, time.November, 14),
			2026: civilDate(2026, time.November, 13),
			2027: civilDate(2027, time.November, 12),
		},
		RegionOtago: {
			2024: civilDate(2024, time.March, 25),
			2025: civilDate(2025, time.March, 24),
			2026: civilDate(2026, time.March, 23),
			2027: civilDate(2027, time.March, 22),
		},
		RegionTaranaki: {
			2024: civilDate(2024, time.March, 11),
			2025: civilDate(2025, time.March, 10),
			2026: civilDate(2026, time.March, 9),
			2027: civilDate(2027, time.March, 8),
		},
	}
}

func defaultAnniversaryNames() map[Region]string {
	return map[Region]string{
		RegionAuckland:   "Auckland Anniversary Day",
		RegionWellington: "Wellington Anniversary Day",
		RegionCanterbury: "Canterbury Anniversary Day",
		RegionOtago:      "Otago Anniversary Day",
		RegionTaranaki:   "Taranaki Anniversary Day",
	}
}

func defaultMatariki() map[int]time.Time {
	return map[int]time.Time{
		2024: civilDate(2024, time.June, 28),
		2025: civilDate(2025, time.June, 20),
		2026: civilDate(2026, time.July, 10),
		2027: civilDate(2027, time.June, 25),
	}
}
