package importer

import (
	"context"
	"fmt"
	"io"
	"sort"

	"institution-module/logger"
	"institution-module/store"
)

// Options tune one import call
type Options struct {
	// DuplicateHandling overrides the default policy when set
	DuplicateHandling *DuplicateHandling
	// SkipDuplicateDetection disables the detection pass entirely
	SkipDuplicateDetection bool
	// CreateAdminAlways provisions an admin from the institution's contact
	// email even when the row has no admin block
	CreateAdminAlways bool
}

// ImportReport is the caller-facing summary of one import run
type ImportReport struct {
	Success       bool `json:"success"`
	TotalRows     int  `json:"total_rows"`
	SuccessCount  int  `json:"success_count"`
	FailedCount   int  `json:"failed_count"`
	SkippedCount  int  `json:"skipped_count"`
	SampleSkipped int  `json:"sample_skipped"`

	Messages []string `json:"messages,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	CreatedInstitutions []CreatedInstitution `json:"created_institutions,omitempty"`
	AdminStats          AdminStats           `json:"admin_stats"`

	// ValidationErrors is set instead of running any row when the batch
	// fails the pre-execution validation gate, keyed by row number
	ValidationErrors map[int][]string `json:"validation_errors,omitempty"`

	Duplicates map[int][]DuplicateRecommendation `json:"duplicates,omitempty"`
}

// Orchestrator wires the import pipeline end to end. One instance is safe
// for concurrent use; all per-run state lives in values created per call.
type Orchestrator struct {
	store store.Store
	admin *AdminCreator
}

func NewOrchestrator(s store.Store) *Orchestrator {
	return &Orchestrator{store: s, admin: NewAdminCreator()}
}

// WithCredentialSender wires the optional credential delivery hook through
// to the admin sub-operation
func (o *Orchestrator) WithCredentialSender(fn CredentialSender) *Orchestrator {
	o.admin.WithCredentialSender(fn)
	return o
}

// ImportInstitutionsByType runs the full pipeline for one uploaded
// spreadsheet: load, parse, batch-validate, duplicate-detect, execute.
// Whole-run failures return an error with no report; validation failures
// return a report carrying ValidationErrors; row failures are inside the
// report.
func (o *Orchestrator) ImportInstitutionsByType(ctx context.Context, file io.Reader, typeKey string, opts Options) (*ImportReport, error) {
	instType, err := o.store.GetInstitutionType(ctx, typeKey)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstitutionType, typeKey)
	}
	if err != nil {
		return nil, err
	}

	sheet, err := LoadSpreadsheet(file)
	if err != nil {
		return nil, err
	}

	rows := ParseRows(sheet)
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	logger.Info("import started: type=%s rows=%d", typeKey, len(rows))

	proc := NewProcessorFactory(o.store, instType).ForType(typeKey)
	schema := proc.ColumnSchema()

	validation, err := NewBatchValidator(o.store, instType).ValidateBatch(ctx, rows, schema)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		report := &ImportReport{
			TotalRows:        len(rows),
			ValidationErrors: validation.ErrorsByRow(),
		}
		logger.Warn("import aborted: type=%s rows=%d failed validation", typeKey, len(report.ValidationErrors))
		return report, nil
	}

	var duplicates *DuplicateReport
	if !opts.SkipDuplicateDetection {
		duplicates, err = NewDuplicateDetector(o.store).Detect(ctx, candidatesFromRows(rows))
		if err != nil {
			return nil, err
		}
	}

	policy := DefaultDuplicateHandling()
	if opts.DuplicateHandling != nil {
		policy = *opts.DuplicateHandling
	}

	state := newRunState()
	executor := NewExecutor(o.store, instType, typeKey, policy, o.admin)
	executor.SetCreateAdminAlways(opts.CreateAdminAlways)
	if err := executor.Execute(ctx, rows, duplicates, state); err != nil {
		return nil, err
	}

	report := buildReport(state, validation, duplicates)

	logger.Info("import completed: type=%s total=%d success=%d failed=%d skipped=%d samples=%d admins_created=%d admins_skipped=%d admin_errors=%d passwords_generated=%d",
		typeKey, report.TotalRows, report.SuccessCount, report.FailedCount,
		report.SkippedCount, report.SampleSkipped, report.AdminStats.Created,
		report.AdminStats.Skipped, report.AdminStats.Errors,
		report.AdminStats.PasswordsGenerated)

	return report, nil
}

// candidatesFromRows builds the duplicate-detection input, excluding sample
// rows so template leftovers never trip the detector
func candidatesFromRows(rows []ImportRow) []DuplicateCandidate {
	candidates := make([]DuplicateCandidate, 0, len(rows))
	for _, row := range rows {
		if row.IsSample {
			continue
		}
		candidates = append(candidates, DuplicateCandidate{
			Row:  row.RowNumber,
			Name: row.Cell(colName),
			Code: row.Cell(colInstitutionCode),
		})
	}
	return candidates
}

func buildReport(state *RunState, validation *BatchResult, duplicates *DuplicateReport) *ImportReport {
	report := &ImportReport{
		Success:             state.Failed == 0,
		TotalRows:           state.Total,
		SuccessCount:        state.Success,
		FailedCount:         state.Failed,
		SkippedCount:        state.Skipped,
		SampleSkipped:       state.SampleSkipped,
		Messages:            state.Messages,
		Errors:              state.Errors,
		Warnings:            state.Warnings,
		CreatedInstitutions: state.Created,
		AdminStats:          state.Admin,
	}

	// Validation warnings survive into the final report even on a clean
	// gate, appended in row order
	rowNumbers := make([]int, 0, len(validation.RowResults))
	for row := range validation.RowResults {
		rowNumbers = append(rowNumbers, row)
	}
	sort.Ints(rowNumbers)
	for _, row := range rowNumbers {
		for _, w := range validation.RowResults[row].Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("row %d: %s", row, w))
		}
	}

	if duplicates != nil && len(duplicates.Recommendations) > 0 {
		report.Duplicates = duplicates.Recommendations
	}

	return report
}
