package importer

import (
	"context"
	"fmt"

	"institution-module/logger"
	"institution-module/models"
	"institution-module/store"
)

// Execution strategy thresholds. Batches at or under the threshold run in
// one transaction; larger batches are partitioned into fixed-size chunks.
const (
	singleTxThreshold = 50
	chunkSize         = 25
)

// Executor runs the per-row pipeline under one of two transaction
// strategies. Row failures are caught and recorded; a bad row never rolls
// back rows already committed within the same call.
type Executor struct {
	store             store.Store
	instType          *models.InstitutionType
	typeKey           string
	policy            DuplicateHandling
	createAdminAlways bool
	admin             *AdminCreator
}

func NewExecutor(s store.Store, instType *models.InstitutionType, typeKey string, policy DuplicateHandling, admin *AdminCreator) *Executor {
	return &Executor{
		store:    s,
		instType: instType,
		typeKey:  typeKey,
		policy:   policy,
		admin:    admin,
	}
}

// SetCreateAdminAlways forces an admin sub-operation for rows without an
// admin block, using the institution's own contact email
func (e *Executor) SetCreateAdminAlways(v bool) {
	e.createAdminAlways = v
}

// Execute dispatches on batch size and fills state. Both strategies produce
// the same state shape; chunking is invisible in the output.
func (e *Executor) Execute(ctx context.Context, rows []ImportRow, duplicates *DuplicateReport, state *RunState) error {
	state.Total = len(rows)

	if len(rows) <= singleTxThreshold {
		logger.Debug("import executor: single-transaction strategy for %d rows", len(rows))
		return e.store.RunInTx(ctx, func(txStore store.Store) error {
			e.executeRows(ctx, txStore, rows, duplicates, state)
			return nil
		})
	}

	logger.Debug("import executor: chunked strategy for %d rows (chunk size %d)", len(rows), chunkSize)
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		if err := e.store.RunInTx(ctx, func(txStore store.Store) error {
			e.executeRows(ctx, txStore, chunk, duplicates, state)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// executeRows runs the per-row sequence against a transaction-bound store,
// so parent lookups see institutions created earlier in the same batch
func (e *Executor) executeRows(ctx context.Context, txStore store.Store, rows []ImportRow, duplicates *DuplicateReport, state *RunState) {
	proc := NewProcessorFactory(txStore, e.instType).ForType(e.typeKey)

	for _, row := range rows {
		e.executeRow(ctx, txStore, proc, row, duplicates, state)
	}
}

func (e *Executor) executeRow(ctx context.Context, txStore store.Store, proc TypeProcessor, row ImportRow, duplicates *DuplicateReport, state *RunState) {
	if row.IsSample {
		state.recordSampleSkip(row.RowNumber)
		return
	}

	recs := duplicates.ForRow(row.RowNumber)
	if e.shouldSkip(recs) {
		state.recordSkip(row.RowNumber, skipReason(recs))
		return
	}

	draft, err := proc.ParseRow(ctx, row)
	if err != nil {
		state.addRowError(row.RowNumber, err)
		logger.Error("import row %d failed: %v", row.RowNumber, err)
		return
	}

	if err := e.resolveConflicts(ctx, txStore, recs, draft); err != nil {
		state.addRowError(row.RowNumber, err)
		logger.Error("import row %d failed: %v", row.RowNumber, err)
		return
	}

	// The insert runs under its own savepoint so a constraint violation
	// (unique code, missing parent) fails only this row instead of
	// poisoning the batch transaction
	err = txStore.RunInSavepoint(ctx, func(rowStore store.Store) error {
		return rowStore.CreateInstitution(ctx, &draft.Institution)
	})
	if err != nil {
		state.addRowError(row.RowNumber, err)
		logger.Error("import row %d failed: %v", row.RowNumber, err)
		return
	}

	created := CreatedInstitution{
		Row:   row.RowNumber,
		ID:    draft.Institution.ID,
		Name:  draft.Institution.Name,
		Level: draft.Institution.Level,
	}

	adminDraft := draft.Admin
	if adminDraft == nil && e.createAdminAlways && draft.Institution.ContactInfo.Email != "" {
		adminDraft = &AdminDraft{Email: draft.Institution.ContactInfo.Email}
	}

	message := fmt.Sprintf("row %d: created %q (id=%d, level %d)", row.RowNumber, created.Name, created.ID, created.Level)

	if adminDraft != nil {
		result := e.admin.CreateAdminForInstitution(ctx, txStore, adminDraft, &draft.Institution)
		e.mergeAdminResult(result, row.RowNumber, &created, state)
		switch {
		case result.AdminCreated:
			message += fmt.Sprintf(", administrator %s <%s>", created.AdminUsername, created.AdminEmail)
		case result.Success && result.Message != "":
			// Skipped sub-operations (account already exists) keep their
			// explanation in the row message
			message += ", administrator skipped: " + result.Message
		}
	}

	state.Success++
	state.Created = append(state.Created, created)
	state.addMessage("%s", message)
}

// mergeAdminResult folds the admin sub-operation outcome into the run
// state. A failed sub-operation degrades to a row warning; the institution
// row itself stays successful.
func (e *Executor) mergeAdminResult(result AdminResult, rowNumber int, created *CreatedInstitution, state *RunState) {
	switch {
	case result.Success && result.AdminCreated:
		state.Admin.Created++
		created.AdminUsername = result.User.Username
		created.AdminEmail = result.User.Email
	case result.Success:
		state.Admin.Skipped++
	default:
		state.Admin.Errors++
		state.addRowWarning(rowNumber, "administrator not created: %s", result.Message)
	}
	if result.PasswordGenerated {
		state.Admin.PasswordsGenerated++
	}
}

// shouldSkip applies the caller's high-severity policy
func (e *Executor) shouldSkip(recs []DuplicateRecommendation) bool {
	if e.policy.HighSeverity != PolicySkip {
		return false
	}
	for _, rec := range recs {
		if rec.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

func skipReason(recs []DuplicateRecommendation) string {
	for _, rec := range recs {
		if rec.Severity == SeverityHigh {
			return rec.Message
		}
	}
	return "duplicate"
}

// resolveConflicts applies auto-rename/auto-generate resolutions to a
// parsed draft when the caller's policy asks for them
func (e *Executor) resolveConflicts(ctx context.Context, txStore store.Store, recs []DuplicateRecommendation, draft *InstitutionDraft) error {
	for _, rec := range recs {
		switch rec.Type {
		case DuplicateExact, DuplicateSimilar:
			if e.policy.NameConflict != PolicyAutoRename {
				continue
			}
			name, err := uniqueInstitutionName(ctx, txStore, draft.Institution.Name)
			if err != nil {
				return err
			}
			draft.Institution.Name = name
		case DuplicateCode:
			if e.policy.CodeConflict != PolicyAutoGenerate {
				continue
			}
			code, err := uniqueInstitutionCode(ctx, txStore, draft.Institution.InstitutionCode)
			if err != nil {
				return err
			}
			draft.Institution.InstitutionCode = code
		}
	}
	return nil
}
