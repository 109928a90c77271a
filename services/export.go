package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"institution-module/models"
	"institution-module/store"
)

// Column headers of the institution export sheet
var exportHeaders = []string{
	"ID", "Ad", "Qısa Ad", "Növ", "Valideyn", "Səviyyə",
	"Region Kodu", "Qurum Kodu", "UTIS Kodu", "Telefon",
	"Email", "Ünvan", "Status", "Yaradılma Tarixi",
}

// ExportInstitutions writes the filtered institution list as an xlsx
// workbook to w
func ExportInstitutions(ctx context.Context, s store.Store, filter store.ListFilter, w io.Writer) error {
	institutions, err := s.ListInstitutions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list institutions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, inst := range institutions {
		values := exportRow(ctx, s, inst)
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func exportRow(ctx context.Context, s store.Store, inst models.Institution) []interface{} {
	parentName := ""
	if inst.ParentID != nil {
		if parent, err := s.GetInstitution(ctx, *inst.ParentID); err == nil {
			parentName = parent.Name
		}
	}

	status := "Aktiv"
	if !inst.IsActive {
		status = "Qeyri-aktiv"
	}

	return []interface{}{
		strconv.FormatInt(inst.ID, 10),
		inst.Name,
		inst.ShortName,
		inst.Type,
		parentName,
		inst.Level,
		inst.RegionCode,
		inst.InstitutionCode,
		inst.UTISCode,
		inst.ContactInfo.Phone,
		inst.ContactInfo.Email,
		inst.Location.Address,
		status,
		inst.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
