package domain

import (
	"math"
	"time"
)

// DateOf truncates t to its calendar date at UTC midnight. The calendar date
// is taken in t's own location before conversion.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysBetween returns the whole number of calendar days from start to end.
// The result is negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours() / 24)
}

// AddDays returns the calendar date days after t.
func AddDays(t time.Time, days int) time.Time {
	return DateOf(t).AddDate(0, 0, days)
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when total
// is not positive.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
