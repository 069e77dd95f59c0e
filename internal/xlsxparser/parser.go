// =============================================================================
// COVID Trends - XLSX Workbook Extractor
// =============================================================================
//
// The NHS England "COVID-19 total announced deaths" workbook carries the
// deaths per trust on a single sheet, below a block of title rows. This
// module turns that sheet into plain rows the way a spreadsheet "save as
// CSV" would after trimming it:
//
//   1. Select the sheet by name ("Tab4 Deaths by trust")
//   2. Delete the leading title rows (rows 1 to 15)
//   3. Delete one more row from what is left (the blank row under the
//      England total, row 3)
//   4. Pad every row to the width of the widest row
//
// LAYOUT (after trimming, 0-based columns):
//
//   | ... | 4: Name | 5: ... | 6 .. n-19: daily deaths | n-18 .. n-15: totals | ... |
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET LAYOUT
// =============================================================================

// SheetLayout describes where the data lives in a workbook.
type SheetLayout struct {
	// Sheet is the name of the worksheet to extract.
	Sheet string `yaml:"sheet" validate:"required"`

	// LeadingRows is the number of rows removed from the top of the sheet.
	LeadingRows int `yaml:"leading_rows" validate:"gte=0"`

	// DropRow is the 1-based row removed after the leading rows are gone.
	// 0 keeps every remaining row.
	DropRow int `yaml:"drop_row" validate:"gte=0"`
}

// DefaultTrustDeathsLayout returns the layout of the published workbook.
func DefaultTrustDeathsLayout() SheetLayout {
	return SheetLayout{
		Sheet:       "Tab4 Deaths by trust",
		LeadingRows: 15,
		DropRow:     3,
	}
}

// =============================================================================
// EXTRACTION
// =============================================================================

// ExtractFile opens the workbook at path and extracts the sheet described by
// layout.
//
// PARAMETERS:
//   - path: the downloaded workbook (xlsx)
//   - layout: the sheet name and the rows to delete
//
// RETURNS:
//   - The remaining rows, all padded to the same width. The first row is the
//     header row.
//   - An error if the workbook cannot be read or the sheet does not exist.
func ExtractFile(path string, layout SheetLayout) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return extract(f, layout)
}

func extract(f *excelize.File, layout SheetLayout) ([][]string, error) {
	idx, err := f.GetSheetIndex(layout.Sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (have %s)", layout.Sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(layout.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	rows = deleteRows(rows, layout)
	return pad(rows), nil
}

// deleteRows applies the leading-row and single-row deletions, shifting the
// remaining rows up as a spreadsheet does.
func deleteRows(rows [][]string, layout SheetLayout) [][]string {
	if layout.LeadingRows >= len(rows) {
		return nil
	}
	rows = rows[layout.LeadingRows:]

	if layout.DropRow > 0 && layout.DropRow <= len(rows) {
		i := layout.DropRow - 1
		rows = append(rows[:i:i], rows[i+1:]...)
	}

	// Trailing empty rows are not part of the used range.
	for len(rows) > 0 && isRowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// pad extends every row to the width of the widest one, like the fixed
// column count of a CSV export.
func pad(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// isRowEmpty checks if all cells in a row are empty.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
