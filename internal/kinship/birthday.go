package kinship

import (
	"strconv"
	"strings"
	"time"
)

// MonthNames are the English month names birth months are stored as.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParseMonth resolves an English month name, ignoring case.
func ParseMonth(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	for i, m := range MonthNames {
		if strings.EqualFold(m, name) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextBirthday returns the next occurrence of month/day on or after the
// calendar date of now. It reports false when the month name is unknown or
// the day is outside 1..31. February 29 falls on March 1 in common years.
func NextBirthday(month string, day int, now time.Time) (time.Time, bool) {
	m, ok := ParseMonth(month)
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}

	today := StartOfDay(now)
	next := time.Date(today.Year(), m, day, 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, m, day, 0, 0, 0, 0, today.Location())
	}
	return next, true
}

// DaysBetween counts whole calendar days from a to b, ignoring clock time
// and daylight saving shifts.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// WhenLabel describes how far away a birthday is, e.g. "Today!", "Tomorrow"
// or "12 days".
func WhenLabel(days int) string {
	switch days {
	case 0:
		return "Today!"
	case 1:
		return "Tomorrow"
	default:
		return strconv.Itoa(days) + " days"
	}
}
