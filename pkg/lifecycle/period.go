package lifecycle

import "time"

// AddMonths adds a number of calendar months to start, preserving the
// day-of-month. When the target month is shorter than the start day (for
// example Jan 31 + 1 month) the result is clamped to the last valid day of
// the intended month instead of rolling into the next one, so warranty
// periods never silently grow by calendar drift.
func AddMonths(start time.Time, months int) time.Time {
	year, month, day := start.Date()
	hour, min, sec := start.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		hour, min, sec, start.Nanosecond(), start.Location())
}

// daysIn returns the number of days in the given month; day 0 of the next
// month normalizes to its last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
