package feed

import (
	"strings"
	"time"

	"violation-log-service/models"
)

// Filter is the full predicate applied to the record list.
// All active predicates must hold for a record to pass (logical AND).
type Filter struct {
	// Search is matched case-insensitively as a substring of the record's
	// location, description or department. Empty means no text predicate.
	Search string
	// Department and Category are exact-match predicates; the empty string
	// or models.FilterAll disables them.
	Department string
	Category   string
	// Start and End bound the record's parsed calendar date. End is
	// inclusive through the last second of its day. Nil means unbounded.
	Start *time.Time
	End   *time.Time
}

// Active reports whether any predicate is enabled.
func (f Filter) Active() bool {
	return f.Search != "" || categoricalActive(f.Department) || categoricalActive(f.Category) ||
		f.Start != nil || f.End != nil
}

// Match reports whether v satisfies every active predicate.
func (f Filter) Match(v models.Violation) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(v.Location), term) &&
			!strings.Contains(strings.ToLower(v.Description), term) &&
			!strings.Contains(strings.ToLower(string(v.Department)), term) {
			return false
		}
	}

	if categoricalActive(f.Department) && string(v.Department) != f.Department {
		return false
	}
	if categoricalActive(f.Category) && string(v.Category) != f.Category {
		return false
	}

	if f.Start != nil || f.End != nil {
		d, ok := ParseRecordDate(v.Date)
		if !ok {
			// Fail-open: a malformed date must not hide the record.
			return true
		}
		if f.Start != nil && d.Before(*f.Start) {
			return false
		}
		if f.End != nil && d.After(EndOfDay(*f.End)) {
			return false
		}
	}
	return true
}

// Apply returns the subset of records matching f, preserving input order.
// With no active predicates the input is returned as-is.
func Apply(records []models.Violation, f Filter) []models.Violation {
	if !f.Active() {
		return records
	}
	out := make([]models.Violation, 0, len(records))
	for _, v := range records {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

func categoricalActive(value string) bool {
	return value != "" && value != models.FilterAll
}
