package importer

import (
	"context"

	"institution-module/models"
)

// kindergartenProcessor shares the school-family offsets but maps the count
// columns to kindergarten-specific metadata keys.
type kindergartenProcessor struct {
	baseProcessor
	schema ColumnSchema
}

func newKindergartenProcessor(base baseProcessor) *kindergartenProcessor {
	counts := []CountColumn{
		{Key: "children_count", Label: "children count", Col: baseColumnCount},
		{Key: "educator_count", Label: "educator count", Col: baseColumnCount + 1},
		{Key: "group_count", Label: "group count", Col: baseColumnCount + 2},
	}
	adminStart := baseColumnCount + 7

	return &kindergartenProcessor{
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

func (p *kindergartenProcessor) HandledTypeKeys() []string {
	return []string{models.TypeKindergarten}
}

func (p *kindergartenProcessor) ColumnSchema() ColumnSchema {
	return p.schema
}

func (p *kindergartenProcessor) ParseRow(ctx context.Context, row ImportRow) (*InstitutionDraft, error) {
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
