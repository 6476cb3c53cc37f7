package application

import "time"

// SubtractMonths moves t back n calendar months, clamping the day to the
// length of the target month (Mar 31 - 1 month = Feb 28 or 29).
func SubtractMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	targetMonth := int(month) - n
	targetYear := year
	for targetMonth < 1 {
		targetMonth += 12
		targetYear--
	}
	if last := daysIn(targetYear, time.Month(targetMonth)); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(targetYear, time.Month(targetMonth), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
