package importer

import (
	"strings"
)

// samplePrefix marks rows shipped in generated templates; they must never be
// imported as real institutions.
const samplePrefix = "Nümunə"

// sampleCodes are the institution codes the template generator stamps onto
// its sample rows.
var sampleCodes = map[string]bool{
	"NOM001": true,
	"NL002":  true,
	"NUB001": true,
	"NB002":  true,
	"NS001":  true,
	"NRI001": true,
	"NQ001":  true,
	"NM001":  true,
}

// ImportRow is one cleaned spreadsheet data row. RowNumber is the 1-based
// row number the user sees in spreadsheet software and appears in every
// downstream message. Empty cells are the empty string after trimming.
type ImportRow struct {
	RowNumber int
	Cells     []string
	IsSample  bool
}

// Cell returns the trimmed cell at idx, or "" when the row is shorter
func (r ImportRow) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// ParseRows trims every cell, drops rows with no content at all, and stamps
// each survivor with its visible spreadsheet row number (header offset + 2).
func ParseRows(sheet *SheetData) []ImportRow {
	var rows []ImportRow

	for i, raw := range sheet.DataRows {
		cells := make([]string, len(raw))
		hasData := false
		for j, cell := range raw {
			cells[j] = strings.TrimSpace(cell)
			if cells[j] != "" {
				hasData = true
			}
		}

		if !hasData {
			continue
		}

		row := ImportRow{
			RowNumber: sheet.HeaderRowIndex + 2 + i,
			Cells:     cells,
		}
		row.IsSample = isSampleRow(row)
		rows = append(rows, row)
	}

	return rows
}

// isSampleRow flags template sample data: the sample name prefix, a known
// sample institution code, or a sample contact email.
func isSampleRow(row ImportRow) bool {
	if strings.HasPrefix(row.Cell(colName), samplePrefix) {
		return true
	}
	for _, cell := range row.Cells {
		if sampleCodes[cell] {
			return true
		}
		if strings.HasSuffix(strings.ToLower(cell), "@example.az") {
			return true
		}
	}
	return false
}
