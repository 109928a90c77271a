package importer

import (
	"context"
)

// genericProcessor is the catch-all for type keys without a dedicated
// variant. It carries the key explicitly, declares no fixed handled-type
// set, and its layout has no admin block.
type genericProcessor struct {
	baseProcessor
	typeKey string
	schema  ColumnSchema
}

func newGenericProcessor(base baseProcessor, typeKey string) *genericProcessor {
	return &genericProcessor{
		baseProcessor: base,
		typeKey:       typeKey,
		schema: ColumnSchema{
			DirectorCol: -1,
			PhoneCol:    baseColumnCount,
			EmailCol:    baseColumnCount + 1,
			AddressCol:  baseColumnCount + 2,
			DescCol:     baseColumnCount + 3,
			AdminStart:  -1,
			StatusCol:   baseColumnCount + 4,
		},
	}
}

func (p *genericProcessor) HandledTypeKeys() []string {
	return nil
}

func (p *genericProcessor) ColumnSchema() ColumnSchema {
	return p.schema
}

func (p *genericProcessor) ParseRow(ctx context.Context, row ImportRow) (*InstitutionDraft, error) {
	draft, err := p.parseCommon(ctx, row, p.typeKey)
	if err != nil {
		return nil, err
	}
	p.parseContact(row, p.schema, draft)
	p.parseStatus(row, p.schema, draft)
	return draft, nil
}
