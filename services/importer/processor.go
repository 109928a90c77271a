package importer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"institution-module/models"
	"institution-module/store"
)

// Base column positions shared by every type variant. The layout is a
// positional contract with existing spreadsheet templates; offsets past
// colInstitutionCode differ per variant.
const (
	colID = iota // ignored on import
	colName
	colShortName
	colParent
	colLevel
	colRegionCode
	colInstitutionCode
	baseColumnCount
)

// adminColumnCount is the fixed width of the administrator block
// (email, username, first name, last name, password, phone, notes)
const adminColumnCount = 7

// statusActiveTokens: blank or one of these means active, anything else inactive
var statusActiveTokens = map[string]bool{
	"":       true,
	"aktiv":  true,
	"active": true,
}

// ColumnSchema maps semantic fields to 0-based column offsets for one type
// variant. Offsets set to -1 are absent for that variant.
type ColumnSchema struct {
	Counts      []CountColumn // type-specific numeric columns, in order
	DirectorCol int
	PhoneCol    int
	EmailCol    int
	AddressCol  int
	DescCol     int
	AdminStart  int // first column of the admin block, -1 if no admin block
	StatusCol   int
}

// CountColumn is a named non-negative integer column
type CountColumn struct {
	Key   string // metadata key, e.g. "student_count"
	Label string
	Col   int
}

// AdminDraft is the optional administrator sub-record extracted from a row.
// Presence is keyed on a non-empty email.
type AdminDraft struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Phone     string
	Notes     string
}

// InstitutionDraft is one row mapped to semantic fields, ready to persist
type InstitutionDraft struct {
	RowNumber   int
	Institution models.Institution
	Admin       *AdminDraft
}

// TypeProcessor parses rows for one institution-type family
type TypeProcessor interface {
	ParseRow(ctx context.Context, row ImportRow) (*InstitutionDraft, error)
	ColumnSchema() ColumnSchema
	HandledTypeKeys() []string
}

// ProcessorFactory selects the processor variant for a type key. It is
// constructed per import run and holds no state shared between runs.
type ProcessorFactory struct {
	store    store.Store
	instType *models.InstitutionType
}

func NewProcessorFactory(s store.Store, instType *models.InstitutionType) *ProcessorFactory {
	return &ProcessorFactory{store: s, instType: instType}
}

// ForType returns the variant whose handled-type set contains key exactly;
// unknown keys fall through to the generic catch-all with the key passed on.
func (f *ProcessorFactory) ForType(key string) TypeProcessor {
	base := baseProcessor{store: f.store, instType: f.instType}

	variants := []TypeProcessor{
		newSchoolFamilyProcessor(base),
		newKindergartenProcessor(base),
		newAdministrativeOfficeProcessor(base),
	}

	for _, v := range variants {
		for _, handled := range v.HandledTypeKeys() {
			if handled == key {
				return v
			}
		}
	}

	return newGenericProcessor(base, key)
}

// baseProcessor carries the shared parsing behavior of every variant:
// required name, level resolution, parent lookup with hierarchy check,
// status parsing, and the admin block extraction.
type baseProcessor struct {
	store    store.Store
	instType *models.InstitutionType
}

var numericRef = regexp.MustCompile(`\d+`)

// parseCommon fills the fields every variant shares and enforces the
// required-field policy.
func (b baseProcessor) parseCommon(ctx context.Context, row ImportRow, typeKey string) (*InstitutionDraft, error) {
	name := row.Cell(colName)
	if name == "" {
		return nil, &MissingRequiredFieldError{Field: "name"}
	}

	level := b.instType.DefaultLevel
	if raw := row.Cell(colLevel); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("level must be a number, got %q", raw)
		}
		level = parsed
	}

	parentID, err := b.resolveParent(ctx, row.Cell(colParent), level)
	if err != nil {
		return nil, err
	}

	draft := &InstitutionDraft{
		RowNumber: row.RowNumber,
		Institution: models.Institution{
			Name:            name,
			ShortName:       row.Cell(colShortName),
			Type:            typeKey,
			ParentID:        parentID,
			Level:           level,
			RegionCode:      row.Cell(colRegionCode),
			InstitutionCode: row.Cell(colInstitutionCode),
			Metadata:        map[string]string{},
			IsActive:        true,
		},
	}

	return draft, nil
}

// resolveParent turns the raw parent cell into an institution id. Accepts
// "73" and "73 // Sektor" style values, falls back to a name lookup, and
// substitutes a level-appropriate default when the cell is blank. The
// parent's level must be strictly lower than the new row's level.
func (b baseProcessor) resolveParent(ctx context.Context, raw string, level int) (*int64, error) {
	if raw == "" {
		if level <= 1 {
			return nil, nil
		}
		// Best-effort default: level-4 institutions hang off the first
		// known level-3 institution, level-3 off level-2, and so on.
		parent, err := b.store.FirstActiveInstitutionByLevel(ctx, level-1)
		if err == store.ErrNotFound {
			return nil, &MissingRequiredFieldError{Field: "parent_id"}
		}
		if err != nil {
			return nil, err
		}
		return &parent.ID, nil
	}

	var parent *models.Institution

	if match := numericRef.FindString(raw); match != "" {
		id, _ := strconv.ParseInt(match, 10, 64)
		found, err := b.store.GetInstitution(ctx, id)
		if err != nil && err != store.ErrNotFound {
			return nil, err
		}
		parent = found
	}

	if parent == nil {
		found, err := b.store.FindInstitutionByNameLike(ctx, raw)
		if err != nil && err != store.ErrNotFound {
			return nil, err
		}
		parent = found
	}

	if parent == nil {
		return nil, &ParentNotFoundError{ParentRef: raw}
	}

	if parent.Level >= level {
		return nil, &InvalidHierarchyError{ParentLevel: parent.Level, Level: level}
	}

	return &parent.ID, nil
}

// parseCounts reads the variant's numeric metadata columns
func (b baseProcessor) parseCounts(row ImportRow, schema ColumnSchema, draft *InstitutionDraft) error {
	for _, c := range schema.Counts {
		raw := row.Cell(c.Col)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a number, got %q", c.Label, raw)
		}
		if value < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", c.Label, value)
		}
		draft.Institution.Metadata[c.Key] = strconv.Itoa(value)
	}
	return nil
}

// parseContact reads the variant's contact/location/description columns
func (b baseProcessor) parseContact(row ImportRow, schema ColumnSchema, draft *InstitutionDraft) {
	if schema.DirectorCol >= 0 {
		if v := row.Cell(schema.DirectorCol); v != "" {
			draft.Institution.Metadata["director_name"] = v
		}
	}
	if schema.PhoneCol >= 0 {
		draft.Institution.ContactInfo.Phone = row.Cell(schema.PhoneCol)
	}
	if schema.EmailCol >= 0 {
		draft.Institution.ContactInfo.Email = row.Cell(schema.EmailCol)
	}
	if schema.AddressCol >= 0 {
		draft.Institution.Location.Address = row.Cell(schema.AddressCol)
	}
	if schema.DescCol >= 0 {
		if v := row.Cell(schema.DescCol); v != "" {
			draft.Institution.Metadata["description"] = v
		}
	}
}

// parseAdminBlock extracts the 7-column admin sub-record, keyed on email
func (b baseProcessor) parseAdminBlock(row ImportRow, schema ColumnSchema, draft *InstitutionDraft) {
	if schema.AdminStart < 0 {
		return
	}
	email := row.Cell(schema.AdminStart)
	if email == "" {
		return
	}
	draft.Admin = &AdminDraft{
		Email:     email,
		Username:  row.Cell(schema.AdminStart + 1),
		FirstName: row.Cell(schema.AdminStart + 2),
		LastName:  row.Cell(schema.AdminStart + 3),
		Password:  row.Cell(schema.AdminStart + 4),
		Phone:     row.Cell(schema.AdminStart + 5),
		Notes:     row.Cell(schema.AdminStart + 6),
	}
}

// parseStatus applies the status column: blank or the active token keeps
// the row active, anything else deactivates it
func (b baseProcessor) parseStatus(row ImportRow, schema ColumnSchema, draft *InstitutionDraft) {
	token := strings.ToLower(row.Cell(schema.StatusCol))
	draft.Institution.IsActive = statusActiveTokens[token]
}
