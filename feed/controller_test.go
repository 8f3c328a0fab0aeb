package feed

import (
	"fmt"
	"testing"
	"time"

	"violation-log-service/models"
)

func manyRecords(n int) []models.Violation {
	records := make([]models.Violation, n)
	for i := range records {
		records[i] = models.Violation{
			ID:          fmt.Sprintf("r%02d", i),
			Date:        fmt.Sprintf("%02d/01/2024", i%28+1),
			Location:    "الموقع",
			Department:  models.DepartmentProduction,
			Category:    models.CategoryPPE,
			Severity:    models.SeverityLow,
			Description: "وصف",
			Reporter:    "فواز الرويلي",
		}
	}
	return records
}

func loadedController(records []models.Violation) *Controller {
	c := NewController()
	gen := c.BeginLoad()
	c.ApplyRecords(gen, records)
	return c
}

func TestPaginationWindow(t *testing.T) {
	c := loadedController(manyRecords(12))

	if got := len(c.Visible()); got != PageSize {
		t.Fatalf("initial window = %d, want %d", got, PageSize)
	}
	if !c.HasMore() {
		t.Fatal("expected more records beyond the first page")
	}

	// paginate(L, n) is a prefix of paginate(L, n+PageSize).
	before := ids(c.Visible())
	c.LoadMore()
	after := ids(c.Visible())
	if len(after) != 2*PageSize {
		t.Fatalf("after LoadMore window = %d, want %d", len(after), 2*PageSize)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("previous window %v is not a prefix of grown window %v", before, after)
		}
	}

	c.LoadMore()
	if got := len(c.Visible()); got != 12 {
		t.Fatalf("window past the end = %d, want clamped to 12", got)
	}
	if c.HasMore() {
		t.Error("HasMore should be false once the window covers the result")
	}
}

func TestFilterChangesResetWindow(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		change func(*Controller)
		reset  bool
	}{
		{name: "search", change: func(c *Controller) { c.SetSearch("وصف") }, reset: true},
		{name: "department", change: func(c *Controller) { c.SetDepartment(models.FilterAll) }, reset: true},
		{name: "category", change: func(c *Controller) { c.SetCategory(models.FilterAll) }, reset: true},
		{name: "date range", change: func(c *Controller) { c.SetDateRange(&start, nil) }, reset: true},
		{name: "sort direction", change: func(c *Controller) { c.SetDirection(Ascending) }, reset: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := loadedController(manyRecords(20))
			c.LoadMore()
			c.LoadMore()

			tc.change(c)

			want := 3 * PageSize
			if tc.reset {
				want = PageSize
			}
			if got := c.VisibleCount(); got != want {
				t.Errorf("visible count after %s change = %d, want %d", tc.name, got, want)
			}
		})
	}
}

func TestStaleReloadDiscarded(t *testing.T) {
	c := NewController()

	genOld := c.BeginLoad()
	genNew := c.BeginLoad()

	if !c.ApplyRecords(genNew, manyRecords(3)) {
		t.Fatal("latest reload must apply")
	}
	if c.ApplyRecords(genOld, manyRecords(9)) {
		t.Fatal("stale reload must be discarded")
	}
	if got := len(c.Records()); got != 3 {
		t.Errorf("records after stale reload = %d, want 3", got)
	}
}

func TestOptimisticCommentAndReloadReconciliation(t *testing.T) {
	records := manyRecords(2)
	c := loadedController(records)

	comment := models.Comment{ID: "1700000000000", Author: "زائر المصنع", Text: "ملاحظة", Timestamp: "12:30"}
	if !c.AppendComment("r01", comment) {
		t.Fatal("optimistic append on a known record failed")
	}
	if c.AppendComment("missing", comment) {
		t.Fatal("append on an unknown record must fail")
	}

	v, ok := c.lookup("r01")
	if !ok || len(v.Comments) != 1 {
		t.Fatalf("comment not visible after optimistic append: %+v", v.Comments)
	}

	// A confirming reload replaces the list wholesale; the comment now comes
	// from the store and must not be duplicated.
	confirmed := manyRecords(2)
	confirmed[1].Comments = []models.Comment{comment}
	gen := c.BeginLoad()
	c.ApplyRecords(gen, confirmed)

	v, _ = c.lookup("r01")
	if len(v.Comments) != 1 {
		t.Errorf("reload duplicated the optimistic comment: %d copies", len(v.Comments))
	}
}

func TestSelection(t *testing.T) {
	c := loadedController(manyRecords(3))

	if c.Select("missing") {
		t.Fatal("selecting an unknown record must fail")
	}
	if !c.Select("r01") {
		t.Fatal("selecting a known record failed")
	}
	if v, ok := c.Selected(); !ok || v.ID != "r01" {
		t.Fatalf("Selected = %v, %v", v.ID, ok)
	}

	// A reload that no longer contains the selection clears it.
	gen := c.BeginLoad()
	c.ApplyRecords(gen, []models.Violation{{ID: "other", Description: "x"}})
	if _, ok := c.Selected(); ok {
		t.Error("selection should be cleared when the record disappears on reload")
	}

	c.Select("other")
	c.ClearSelection()
	if _, ok := c.Selected(); ok {
		t.Error("ClearSelection did not clear")
	}
}

func TestEmptyListAtEveryStage(t *testing.T) {
	c := NewController()
	gen := c.BeginLoad()
	c.ApplyRecords(gen, nil)
	c.SetSearch("anything")

	if got := c.Matched(); got != 0 {
		t.Errorf("Matched on empty list = %d", got)
	}
	if got := c.Visible(); len(got) != 0 {
		t.Errorf("Visible on empty list = %v", got)
	}
	if c.HasMore() {
		t.Error("HasMore on empty list")
	}
	stats := c.Stats()
	if stats.TotalViolations != 0 || stats.TotalComments != 0 || stats.ActiveReporters != 0 {
		t.Errorf("Stats on empty list = %+v", stats)
	}
}

func TestViewSwitching(t *testing.T) {
	c := NewController()
	if c.ActiveView() != ViewFeed {
		t.Fatalf("initial view = %s, want %s", c.ActiveView(), ViewFeed)
	}

	c.SetView(ViewDashboard)
	if c.ActiveView() != ViewDashboard {
		t.Errorf("view = %s, want %s", c.ActiveView(), ViewDashboard)
	}

	c.SetView(View("bogus"))
	if c.ActiveView() != ViewDashboard {
		t.Error("unknown view must be ignored")
	}

	gen := c.BeginLoad()
	c.ApplyRecords(gen, manyRecords(20))
	c.LoadMore()
	c.SetView(ViewFeed)
	if c.VisibleCount() != PageSize {
		t.Error("returning to the feed should restart the window")
	}
}

func TestStats(t *testing.T) {
	records := manyRecords(3)
	records[0].Comments = []models.Comment{{ID: "1"}, {ID: "2"}}
	records[1].Comments = []models.Comment{{ID: "3"}}
	records[2].Reporter = "فيصل القوصي"
	c := loadedController(records)

	stats := c.Stats()
	if stats.TotalViolations != 3 {
		t.Errorf("TotalViolations = %d, want 3", stats.TotalViolations)
	}
	if stats.TotalComments != 3 {
		t.Errorf("TotalComments = %d, want 3", stats.TotalComments)
	}
	if stats.ActiveReporters != 2 {
		t.Errorf("ActiveReporters = %d, want 2", stats.ActiveReporters)
	}
	if stats.LastSync == "" {
		t.Error("LastSync should be set after a reload")
	}
}
