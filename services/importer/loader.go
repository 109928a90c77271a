package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"institution-module/logger"
)

// dataStartMarker is written by the template generator two sections above
// the column headers; the header row follows it directly once empty rows
// are discarded.
const dataStartMarker = "DATA BAŞLANĞICI"

// headerFirstCell is the literal first-column header label in generated templates
const headerFirstCell = "ID (avtomatik)"

// SheetData is the raw grid read from the active sheet plus the detected
// header row index (0-based, relative to the grid).
type SheetData struct {
	HeaderRowIndex int
	DataRows       [][]string
}

// LoadSpreadsheet opens an uploaded spreadsheet and locates the header row.
// Only OOXML workbooks (.xlsx) are supported; legacy BIFF .xls uploads fail
// with ErrFileRead.
func LoadSpreadsheet(r io.Reader) (*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("%w: no sheets in workbook", ErrHeaderNotFound)
	}
	sheetName := sheetList[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrHeaderNotFound, sheetName)
	}

	headerIdx := detectHeaderRow(rows)
	logger.Debug("Spreadsheet loaded: sheet=%s rows=%d header_row=%d", sheetName, len(rows), headerIdx)

	return &SheetData{
		HeaderRowIndex: headerIdx,
		DataRows:       rows[headerIdx+1:],
	}, nil
}

// detectHeaderRow finds the header row index with a three-tier heuristic:
// a "data start" marker cell (header is the next row), a literal known
// header label in the first cell, or a row whose second cell looks like a
// name header and fourth cell like a parent header. Falls back to row 0.
func detectHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(row[0]), dataStartMarker) {
			if i+1 < len(rows) {
				return i + 1
			}
			return i
		}
	}

	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == headerFirstCell {
			return i
		}
	}

	for i, row := range rows {
		if len(row) < 4 {
			continue
		}
		second := strings.ToLower(strings.TrimSpace(row[1]))
		fourth := strings.ToLower(strings.TrimSpace(row[3]))
		if strings.Contains(second, "ad") &&
			(strings.Contains(fourth, "valideyn") || strings.Contains(fourth, "növ") || strings.Contains(fourth, "parent")) {
			return i
		}
	}

	return 0
}
