package feed

import "violation-log-service/models"

// PageSize is the number of records revealed per "load more" step.
const PageSize = 5

// Page returns the visible prefix of records: min(visible, len) entries.
func Page(records []models.Violation, visible int) []models.Violation {
	if visible < 0 {
		visible = 0
	}
	if visible > len(records) {
		visible = len(records)
	}
	return records[:visible]
}
