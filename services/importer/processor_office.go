package importer

import (
	"context"

	"institution-module/models"
)

// administrativeOfficeProcessor handles regional departments and sector
// offices. The layout is shorter than the school family: contact columns
// come straight after the base block, so the admin block starts earlier.
type administrativeOfficeProcessor struct {
	baseProcessor
	schema ColumnSchema
}

func newAdministrativeOfficeProcessor(base baseProcessor) *administrativeOfficeProcessor {
	adminStart := baseColumnCount + 4 // phone + email + address + description

	return &administrativeOfficeProcessor{
		baseProcessor: base,
		schema: ColumnSchema{
			DirectorCol: -1,
			PhoneCol:    baseColumnCount,
			EmailCol:    baseColumnCount + 1,
			AddressCol:  baseColumnCount + 2,
			DescCol:     baseColumnCount + 3,
			AdminStart:  adminStart,
			StatusCol:   adminStart + adminColumnCount,
		},
	}
}

func (p *administrativeOfficeProcessor) HandledTypeKeys() []string {
	return []string{
		models.TypeRegionalDepartment,
		models.TypeSectorOffice,
	}
}

func (p *administrativeOfficeProcessor) ColumnSchema() ColumnSchema {
	return p.schema
}

func (p *administrativeOfficeProcessor) ParseRow(ctx context.Context, row ImportRow) (*InstitutionDraft, error) {
	draft, err := p.parseCommon(ctx, row, p.instType.Key)
	if err != nil {
		return nil, err
	}
	p.parseContact(row, p.schema, draft)
	p.parseAdminBlock(row, p.schema, draft)
	p.parseStatus(row, p.schema, draft)
	return draft, nil
}
