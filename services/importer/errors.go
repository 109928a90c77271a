package importer

import (
	"errors"
	"fmt"
)

// Whole-run failures. These abort the import before any row is touched.
var (
	// ErrFileRead means the uploaded file could not be opened as a spreadsheet
	ErrFileRead = errors.New("spreadsheet file could not be read")

	// ErrHeaderNotFound means the file is structurally unreadable (no rows at all)
	ErrHeaderNotFound = errors.New("header row not found in spreadsheet")

	// ErrUnknownInstitutionType means the requested type key is not registered
	ErrUnknownInstitutionType = errors.New("unknown institution type")

	// ErrNoDataRows means the sheet contained a header but no data rows
	ErrNoDataRows = errors.New("no data rows found in spreadsheet")
)

// MissingRequiredFieldError is raised by a type processor when a required
// column is blank after trimming.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

// ParentNotFoundError is raised when a parent reference does not resolve to
// an existing institution.
type ParentNotFoundError struct {
	ParentRef string
}

func (e *ParentNotFoundError) Error() string {
	return fmt.Sprintf("parent institution not found: %q", e.ParentRef)
}

// InvalidHierarchyError is raised when the resolved parent's level is not
// strictly lower than the new institution's level.
type InvalidHierarchyError struct {
	ParentLevel int
	Level       int
}

func (e *InvalidHierarchyError) Error() string {
	return fmt.Sprintf("parent level %d must be lower than institution level %d", e.ParentLevel, e.Level)
}
