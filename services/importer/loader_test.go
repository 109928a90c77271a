package importer

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildSheet writes rows into an in-memory xlsx workbook
func buildSheet(t *testing.T, rows [][]string) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestLoadSpreadsheetMarkerHeader(t *testing.T) {
	r := buildSheet(t, [][]string{
		{"DATA BAŞLANĞICI - aşağıdakı sətirlərə məlumat daxil edin"},
		{"ID (avtomatik)", "Ad", "Qısa ad", "Valideyn"},
		{"", "28 nömrəli məktəb", "28M", "10"},
	})

	sheet, err := LoadSpreadsheet(r)
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.HeaderRowIndex)
	require.Len(t, sheet.DataRows, 1)
	assert.Equal(t, "28 nömrəli məktəb", sheet.DataRows[0][1])
}

func TestLoadSpreadsheetLiteralHeader(t *testing.T) {
	r := buildSheet(t, [][]string{
		{"Bu fayl qurumların idxalı üçündür"},
		{"ID (avtomatik)", "Ad", "Qısa ad", "Valideyn"},
		{"", "Məktəb A"},
	})

	sheet, err := LoadSpreadsheet(r)
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.HeaderRowIndex)
	require.Len(t, sheet.DataRows, 1)
}

func TestLoadSpreadsheetTokenHeader(t *testing.T) {
	r := buildSheet(t, [][]string{
		{"İzahat"},
		{"#", "Adı", "Qısa adı", "Valideyn qurum"},
		{"", "Məktəb A", "MA", "10"},
	})

	sheet, err := LoadSpreadsheet(r)
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.HeaderRowIndex)
}

func TestLoadSpreadsheetFallbackHeader(t *testing.T) {
	r := buildSheet(t, [][]string{
		{"x", "y", "z", "w"},
		{"", "Məktəb A"},
	})

	sheet, err := LoadSpreadsheet(r)
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.HeaderRowIndex)
	assert.Len(t, sheet.DataRows, 1)
}

func TestLoadSpreadsheetUnreadableFile(t *testing.T) {
	_, err := LoadSpreadsheet(strings.NewReader("this is not a spreadsheet"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileRead))
}

func TestLoadSpreadsheetEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = LoadSpreadsheet(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeaderNotFound))
}
