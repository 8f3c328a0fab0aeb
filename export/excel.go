// Package export renders already-fetched violation data into report files:
// an Excel workbook for the dashboard and a printable document for a single
// record. Both are read-only transformations with no state of their own.
package export

import (
	"fmt"
	"io"
	"time"

	"violation-log-service/feed"
	"violation-log-service/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// Column headers as they appear in the spreadsheet reports.
var excelHeaders = []string{
	"رقم المخالفة",
	"التاريخ",
	"القسم",
	"الموقع",
	"التصنيف",
	"مستوى الخطورة",
	"الوصف",
	"المبلغ",
}

// FilterByPeriod returns the records whose dates fall within [start, end],
// end inclusive through its last second. It reuses the feed's date-range
// predicate, so records with unparseable dates are kept, same as the feed.
func FilterByPeriod(records []models.Violation, start, end time.Time) []models.Violation {
	return feed.Apply(records, feed.Filter{Start: &start, End: &end})
}

// WriteExcel renders records as a workbook on w.
func WriteExcel(records []models.Violation, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range excelHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, v := range records {
		values := []string{
			v.ID,
			v.Date,
			string(v.Department),
			v.Location,
			string(v.Category),
			string(v.Severity),
			v.Description,
			v.Reporter,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
