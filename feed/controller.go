package feed

import (
	"time"

	"violation-log-service/models"
)

// View identifies the active screen of a session.
type View string

const (
	ViewFeed       View = "feed"
	ViewReportForm View = "report-form"
	ViewDashboard  View = "reports-dashboard"
)

// ValidView reports whether v names a known view.
func ValidView(v View) bool {
	return v == ViewFeed || v == ViewReportForm || v == ViewDashboard
}

// Controller holds the feed state of one session: the raw record list, the
// filter and sort parameters, the pagination window and the selected record.
// The derived list is never stored; Visible and Matched recompute it from the
// raw list on every call.
//
// Controller is not safe for concurrent use; callers serialize access
// (handlers hold it under the session registry lock).
type Controller struct {
	view       View
	records    []models.Violation
	filter     Filter
	direction  Direction
	visible    int
	selectedID string
	lastSync   time.Time

	// loadGen numbers fetches so a reload that was superseded by a newer
	// one is discarded instead of overwriting fresher data.
	loadGen    uint64
	appliedGen uint64
}

func NewController() *Controller {
	return &Controller{
		view:      ViewFeed,
		direction: Descending,
		visible:   PageSize,
	}
}

// ActiveView returns the current screen.
func (c *Controller) ActiveView() View { return c.view }

// SetView switches screens. Returning to the feed restarts the pagination
// window from the top.
func (c *Controller) SetView(v View) {
	if !ValidView(v) {
		return
	}
	c.view = v
	if v == ViewFeed {
		c.visible = PageSize
	}
}

// BeginLoad marks the start of a fetch and returns its generation token.
func (c *Controller) BeginLoad() uint64 {
	c.loadGen++
	return c.loadGen
}

// ApplyRecords replaces the raw list with the result of fetch gen. A stale
// fetch (one issued before the latest BeginLoad) is dropped and the method
// reports false. Replacement is wholesale: no merging, no diffing, so an
// optimistic comment appended locally cannot be duplicated by the reload.
func (c *Controller) ApplyRecords(gen uint64, records []models.Violation) bool {
	if gen < c.loadGen || gen <= c.appliedGen {
		return false
	}
	c.appliedGen = gen
	c.records = records
	c.lastSync = time.Now()
	if c.selectedID != "" {
		if _, ok := c.lookup(c.selectedID); !ok {
			c.selectedID = ""
		}
	}
	return true
}

// Records returns the raw list as last applied.
func (c *Controller) Records() []models.Violation { return c.records }

// Filter returns the active filter settings.
func (c *Controller) Filter() Filter { return c.filter }

// SetSearch updates the text search term and restarts the window.
func (c *Controller) SetSearch(term string) {
	c.filter.Search = term
	c.visible = PageSize
}

// SetDepartment updates the department filter and restarts the window.
func (c *Controller) SetDepartment(department string) {
	c.filter.Department = department
	c.visible = PageSize
}

// SetCategory updates the category filter and restarts the window.
func (c *Controller) SetCategory(category string) {
	c.filter.Category = category
	c.visible = PageSize
}

// SetDateRange updates the date bounds and restarts the window. Nil clears
// a bound.
func (c *Controller) SetDateRange(start, end *time.Time) {
	c.filter.Start = start
	c.filter.End = end
	c.visible = PageSize
}

// SetDirection changes the sort order. The window survives: reordering is
// not a filter change.
func (c *Controller) SetDirection(dir Direction) {
	c.direction = dir
}

// Direction returns the active sort order.
func (c *Controller) Direction() Direction { return c.direction }

// LoadMore grows the window by one page.
func (c *Controller) LoadMore() {
	c.visible += PageSize
}

// ResetWindow shrinks the window back to the first page.
func (c *Controller) ResetWindow() {
	c.visible = PageSize
}

// VisibleCount returns the current window size.
func (c *Controller) VisibleCount() int { return c.visible }

// Matched returns how many records pass the active filter.
func (c *Controller) Matched() int {
	return len(Apply(c.records, c.filter))
}

// Visible recomputes filter, sort and pagination and returns the window.
func (c *Controller) Visible() []models.Violation {
	return Page(SortByDate(Apply(c.records, c.filter), c.direction), c.visible)
}

// HasMore reports whether records beyond the window remain.
func (c *Controller) HasMore() bool {
	return c.visible < c.Matched()
}

// Select marks a record for detail viewing. Unknown IDs are rejected.
func (c *Controller) Select(id string) bool {
	if _, ok := c.lookup(id); !ok {
		return false
	}
	c.selectedID = id
	return true
}

// Selected returns the record currently open for detail viewing.
func (c *Controller) Selected() (models.Violation, bool) {
	if c.selectedID == "" {
		return models.Violation{}, false
	}
	return c.lookup(c.selectedID)
}

// ClearSelection closes the detail view.
func (c *Controller) ClearSelection() {
	c.selectedID = ""
}

// AppendComment optimistically attaches a comment to the named record so the
// session sees it before the next reload confirms it.
func (c *Controller) AppendComment(violationID string, comment models.Comment) bool {
	for i := range c.records {
		if c.records[i].ID == violationID {
			c.records[i].Comments = append(c.records[i].Comments, comment)
			return true
		}
	}
	return false
}

// Stats summarizes the raw list.
func (c *Controller) Stats() models.Stats {
	total := 0
	reporters := map[string]bool{}
	for _, v := range c.records {
		total += len(v.Comments)
		if v.Reporter != "" {
			reporters[v.Reporter] = true
		}
	}
	lastSync := ""
	if !c.lastSync.IsZero() {
		lastSync = c.lastSync.Format(time.RFC3339)
	}
	return models.Stats{
		TotalViolations: len(c.records),
		TotalComments:   total,
		ActiveReporters: len(reporters),
		LastSync:        lastSync,
	}
}

func (c *Controller) lookup(id string) (models.Violation, bool) {
	for _, v := range c.records {
		if v.ID == id {
			return v, true
		}
	}
	return models.Violation{}, false
}
