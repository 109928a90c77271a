package importer

import (
	"context"

	"institution-module/models"
)

// schoolFamilyProcessor handles the general-school column layout:
// student/teacher/class counts and a director name after the base columns,
// then contact columns, then the admin block.
type schoolFamilyProcessor struct {
	baseProcessor
	schema ColumnSchema
}

func newSchoolFamilyProcessor(base baseProcessor) *schoolFamilyProcessor {
	counts := []CountColumn{
		{Key: "student_count", Label: "student count", Col: baseColumnCount},
		{Key: "teacher_count", Label: "teacher count", Col: baseColumnCount + 1},
		{Key: "class_count", Label: "class count", Col: baseColumnCount + 2},
	}
	adminStart := baseColumnCount + 7 // counts + director + phone + email + address

	return &schoolFamilyProcessor{
		baseProcessor: base,
		schema: ColumnSchema{
			Counts:      counts,
			DirectorCol: baseColumnCount + 3,
			PhoneCol:    baseColumnCount + 4,
			EmailCol:    baseColumnCount + 5,
			AddressCol:  baseColumnCount + 6,
			DescCol:     -1,
			AdminStart:  adminStart,
			StatusCol:   adminStart + adminColumnCount,
		},
	}
}

func (p *schoolFamilyProcessor) HandledTypeKeys() []string {
	return []string{
		models.TypeSecondarySchool,
		models.TypePrimarySchool,
		models.TypeLyceum,
		models.TypeGymnasium,
	}
}

func (p *schoolFamilyProcessor) ColumnSchema() ColumnSchema {
	return p.schema
}

func (p *schoolFamilyProcessor) ParseRow(ctx context.Context, row ImportRow) (*InstitutionDraft, error) {
	draft, err := p.parseCommon(ctx, row, p.instType.Key)
	if err != nil {
		return nil, err
	}
	if err := p.parseCounts(row, p.schema, draft); err != nil {
		return nil, err
	}
	p.parseContact(row, p.schema, draft)
	p.parseAdminBlock(row, p.schema, draft)
	p.parseStatus(row, p.schema, draft)
	return draft, nil
}
