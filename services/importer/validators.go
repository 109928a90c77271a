package importer

import (
	"context"
	"fmt"
	"strconv"

	"institution-module/models"
	"institution-module/store"
	"institution-module/utils"
)

// ValidationOutcome collects the findings for a single value or row.
// Errors fail the batch gate, warnings are informational only.
type ValidationOutcome struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func okOutcome() ValidationOutcome {
	return ValidationOutcome{Valid: true}
}

func (o *ValidationOutcome) addError(format string, args ...interface{}) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
	o.Valid = false
}

func (o *ValidationOutcome) addWarning(format string, args ...interface{}) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

func (o *ValidationOutcome) merge(other ValidationOutcome) {
	o.Errors = append(o.Errors, other.Errors...)
	o.Warnings = append(o.Warnings, other.Warnings...)
	if !other.Valid {
		o.Valid = false
	}
}

// ValidateName enforces the [3, 255] length window on a trimmed name
func ValidateName(name string) ValidationOutcome {
	out := okOutcome()
	if name == "" {
		out.addError("name is required")
		return out
	}
	if len(name) < 3 {
		out.addError("name must be at least 3 characters, got %d", len(name))
	}
	if len(name) > 255 {
		out.addError("name must be at most 255 characters, got %d", len(name))
	}
	return out
}

// ValidateLevel checks the raw level cell against the [1, 4] range. A blank
// cell is fine (the type default applies); a value differing from the type
// default is flagged but allowed.
func ValidateLevel(raw string, defaultLevel int) ValidationOutcome {
	out := okOutcome()
	if raw == "" {
		return out
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		out.addError("level must be a number, got %q", raw)
		return out
	}
	if level < 1 || level > 4 {
		out.addError("level must be between 1 and 4, got %d", level)
		return out
	}
	if level != defaultLevel {
		out.addWarning("level %d differs from the type default %d", level, defaultLevel)
	}
	return out
}

// ValidateCodes checks region, institution and UTIS code formats. Length
// violations are hard errors, a nonstandard region code only a warning.
func ValidateCodes(regionCode, institutionCode, utisCode string) ValidationOutcome {
	out := okOutcome()
	if regionCode != "" && !utils.IsValidRegionCode(regionCode) {
		out.addWarning("region code %q does not match the expected format (2-10 uppercase letters)", regionCode)
	}
	if len(institutionCode) > 50 {
		out.addError("institution code must be at most 50 characters, got %d", len(institutionCode))
	}
	if len(utisCode) > 50 {
		out.addError("UTIS code must be at most 50 characters, got %d", len(utisCode))
	}
	return out
}

// ValidateCount checks a numeric metadata cell: blank is fine, non-numeric
// or negative values are hard errors
func ValidateCount(label, raw string) ValidationOutcome {
	out := okOutcome()
	if raw == "" {
		return out
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		out.addError("%s must be a number, got %q", label, raw)
		return out
	}
	if value < 0 {
		out.addError("%s cannot be negative, got %d", label, value)
	}
	return out
}

// ValidateContact flags malformed phone/email values as warnings only.
// Cosmetically broken contact data must never block an import.
func ValidateContact(phone, email string) ValidationOutcome {
	out := okOutcome()
	if phone != "" && !utils.IsValidPhone(phone) {
		out.addWarning("phone %q does not look like a valid number", phone)
	}
	if email != "" && !utils.IsValidEmail(email) {
		out.addWarning("email %q does not look like a valid address", email)
	}
	return out
}

// BatchResult is the outcome of validating every data row before execution.
// RowResults is keyed by the visible spreadsheet row number.
type BatchResult struct {
	Valid      bool
	RowResults map[int]ValidationOutcome
}

// ErrorsByRow returns only the failing rows, keyed by row number
func (r *BatchResult) ErrorsByRow() map[int][]string {
	errs := make(map[int][]string)
	for row, out := range r.RowResults {
		if !out.Valid {
			errs[row] = out.Errors
		}
	}
	return errs
}

// BatchValidator runs the pure field checks plus the store-backed
// cross-reference checks over a whole batch. Any failing row blocks
// execution of the entire batch.
type BatchValidator struct {
	store    store.Store
	instType *models.InstitutionType
}

func NewBatchValidator(s store.Store, instType *models.InstitutionType) *BatchValidator {
	return &BatchValidator{store: s, instType: instType}
}

// ValidateBatch validates every non-sample row. Sample rows are excluded so
// template leftovers can never fail a real batch.
func (v *BatchValidator) ValidateBatch(ctx context.Context, rows []ImportRow, schema ColumnSchema) (*BatchResult, error) {
	result := &BatchResult{
		Valid:      true,
		RowResults: make(map[int]ValidationOutcome),
	}

	for _, row := range rows {
		if row.IsSample {
			continue
		}
		out, err := v.validateRow(ctx, row, schema)
		if err != nil {
			return nil, err
		}
		result.RowResults[row.RowNumber] = out
		if !out.Valid {
			result.Valid = false
		}
	}

	return result, nil
}

func (v *BatchValidator) validateRow(ctx context.Context, row ImportRow, schema ColumnSchema) (ValidationOutcome, error) {
	out := okOutcome()

	out.merge(ValidateName(row.Cell(colName)))
	out.merge(ValidateLevel(row.Cell(colLevel), v.instType.DefaultLevel))
	out.merge(ValidateCodes(row.Cell(colRegionCode), row.Cell(colInstitutionCode), ""))

	for _, c := range schema.Counts {
		out.merge(ValidateCount(c.Label, row.Cell(c.Col)))
	}

	phone, email := "", ""
	if schema.PhoneCol >= 0 {
		phone = row.Cell(schema.PhoneCol)
	}
	if schema.EmailCol >= 0 {
		email = row.Cell(schema.EmailCol)
	}
	out.merge(ValidateContact(phone, email))

	if err := v.checkCodes(ctx, row, &out); err != nil {
		return out, err
	}
	if err := v.checkParent(ctx, row, &out); err != nil {
		return out, err
	}

	return out, nil
}

// checkCodes runs the store-backed code checks: an existing institution code
// is a warning, a collision with a persisted UTIS code a hard error (UTIS
// codes are globally unique).
func (v *BatchValidator) checkCodes(ctx context.Context, row ImportRow, out *ValidationOutcome) error {
	code := row.Cell(colInstitutionCode)
	if code == "" {
		return nil
	}
	exists, err := v.store.InstitutionCodeExists(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		out.addWarning("institution code %q is already in use", code)
	}
	taken, err := v.store.UTISCodeExists(ctx, code)
	if err != nil {
		return err
	}
	if taken {
		out.addError("code %q is already registered as a UTIS code", code)
	}
	return nil
}

// checkParent verifies an explicit parent reference resolves and sits at a
// strictly lower level. Blank cells are left to the processor's default
// parent substitution.
func (v *BatchValidator) checkParent(ctx context.Context, row ImportRow, out *ValidationOutcome) error {
	raw := row.Cell(colParent)
	if raw == "" {
		return nil
	}

	var parent *models.Institution

	if match := numericRef.FindString(raw); match != "" {
		id, _ := strconv.ParseInt(match, 10, 64)
		found, err := v.store.GetInstitution(ctx, id)
		if err != nil && err != store.ErrNotFound {
			return err
		}
		parent = found
	}
	if parent == nil {
		found, err := v.store.FindInstitutionByNameLike(ctx, raw)
		if err != nil && err != store.ErrNotFound {
			return err
		}
		parent = found
	}
	if parent == nil {
		out.addError("parent institution %q not found", raw)
		return nil
	}

	level := v.instType.DefaultLevel
	if rawLevel := row.Cell(colLevel); rawLevel != "" {
		if parsed, err := strconv.Atoi(rawLevel); err == nil {
			level = parsed
		}
	}
	if parent.Level >= level {
		out.addError("parent level %d must be lower than institution level %d", parent.Level, level)
	}
	return nil
}
