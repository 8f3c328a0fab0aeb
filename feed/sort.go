package feed

import (
	"sort"

	"violation-log-service/models"
)

// Direction orders the feed by the record's parsed date.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection normalizes a direction string, defaulting to Descending
// (most recent first), which is how the feed opens.
func ParseDirection(s string) Direction {
	if s == string(Ascending) {
		return Ascending
	}
	return Descending
}

// SortByDate returns a new slice ordered by each record's parsed date.
// Records whose dates cannot be parsed compare equal to everything, so the
// stable sort leaves their relative order untouched instead of failing.
func SortByDate(records []models.Violation, dir Direction) []models.Violation {
	out := make([]models.Violation, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		di, oki := ParseRecordDate(out[i].Date)
		dj, okj := ParseRecordDate(out[j].Date)
		if !oki || !okj {
			return false
		}
		if dir == Ascending {
			return di.Before(dj)
		}
		return dj.Before(di)
	})
	return out
}
