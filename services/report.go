package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"institution-module/services/importer"
)

// GenerateImportReportPDF renders an import run summary as a downloadable
// PDF document
func GenerateImportReportPDF(typeKey string, report *importer.ImportReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Institution Import Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 8, fmt.Sprintf("Institution type: %s", typeKey))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Total rows: %d", report.TotalRows))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Created: %d   Failed: %d   Skipped: %d   Samples: %d",
		report.SuccessCount, report.FailedCount, report.SkippedCount, report.SampleSkipped))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Administrators created: %d (passwords generated: %d)",
		report.AdminStats.Created, report.AdminStats.PasswordsGenerated))
	pdf.Ln(12)

	writeSection(pdf, "Messages", report.Messages)
	writeSection(pdf, "Warnings", report.Warnings)
	writeSection(pdf, "Errors", report.Errors)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating import report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(40, 10, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range lines {
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
	pdf.Ln(4)
}
