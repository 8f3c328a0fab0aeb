package feed

import (
	"strconv"
	"strings"
	"time"
)

// ParseRecordDate parses the human-formatted timestamp carried on a violation
// record: a "dd/mm/yyyy" calendar date, optionally followed by ", <time>".
// Only the calendar date is significant. The second return value is false when
// the field does not hold a usable date; callers decide how to degrade (the
// filter is fail-open, the sort is fail-neutral).
//
// This is the single parsing routine shared by the range filter, the sort
// stage and the Excel export so that all three agree on edge cases.
func ParseRecordDate(s string) (time.Time, bool) {
	datePart := s
	if i := strings.IndexByte(s, ','); i >= 0 {
		datePart = s[:i]
	}
	// The store writes dates with an Arabic locale, which may use
	// Arabic-Indic digits. Fold them to ASCII before parsing.
	datePart = foldDigits(strings.TrimSpace(datePart))

	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, false
	}

	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 becomes 2 March); a date that does
	// not round-trip was never a real calendar day.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// EndOfDay returns the last second of t's calendar day, making an end bound
// inclusive through 23:59:59.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func foldDigits(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= '٠' && r <= '٩' }) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r >= '٠' && r <= '٩' {
			return '0' + (r - '٠')
		}
		return r
	}, s)
}
