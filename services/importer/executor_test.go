package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institution-module/models"
)

func seedSector(fake *fakeStore) {
	fake.seedInstitution(models.Institution{ID: 10, Name: "Sektor", Level: 3, IsActive: true})
}

func schoolRows(n int) []ImportRow {
	rows := make([]ImportRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, makeRow(3+i, map[int]string{
			colName:            fmt.Sprintf("Məktəb %03d", i+1),
			colParent:          "10",
			colLevel:           "4",
			colInstitutionCode: fmt.Sprintf("M%03d", i+1),
		}))
	}
	return rows
}

func newSchoolExecutor(t *testing.T, fake *fakeStore) *Executor {
	t.Helper()
	instType, err := fake.GetInstitutionType(context.Background(), models.TypeSecondarySchool)
	require.NoError(t, err)
	return NewExecutor(fake, instType, models.TypeSecondarySchool, DefaultDuplicateHandling(), NewAdminCreator())
}

func TestExecutorSingleTransactionAtBoundary(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), schoolRows(50), nil, state)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.txCount, "50 rows run in one transaction")
	assert.Equal(t, 50, state.Total)
	assert.Equal(t, 50, state.Success)
	assert.Zero(t, state.Failed)
}

func TestExecutorChunkedAboveBoundary(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), schoolRows(51), nil, state)
	require.NoError(t, err)

	assert.Equal(t, 3, fake.txCount, "51 rows run in three chunks of 25")
	assert.Equal(t, 51, state.Total)
	assert.Equal(t, 51, state.Success)
}

func TestExecutorStrategiesProduceIdenticalShape(t *testing.T) {
	run := func(n int) *RunState {
		fake := newFakeStore()
		seedSector(fake)
		state := newRunState()
		require.NoError(t, newSchoolExecutor(t, fake).Execute(context.Background(), schoolRows(n), nil, state))
		return state
	}

	single := run(50)
	chunked := run(51)

	assert.Equal(t, single.Success, single.Total)
	assert.Equal(t, chunked.Success, chunked.Total)
	assert.Len(t, single.Messages, single.Success)
	assert.Len(t, chunked.Messages, chunked.Success)
	assert.Len(t, single.Created, single.Success)
	assert.Len(t, chunked.Created, chunked.Success)
}

func TestExecutorRowFailureDoesNotAbortBatch(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)
	fake.failCreateName = "Məktəb 002"

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), schoolRows(3), nil, state)
	require.NoError(t, err)

	assert.Equal(t, 2, state.Success)
	assert.Equal(t, 1, state.Failed)
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "row 4")

	// Rows before and after the failed insert both persist: the savepoint
	// rollback keeps the shared transaction usable after the bad row
	_, err = fake.FindInstitutionByName(context.Background(), "Məktəb 001")
	assert.NoError(t, err)
	_, err = fake.FindInstitutionByName(context.Background(), "Məktəb 003")
	assert.NoError(t, err)
}

func TestExecutorAdminInsertFailureDoesNotPoisonBatch(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)
	fake.failUserEmail = "admin@edu.az"

	rows := []ImportRow{
		makeRow(3, map[int]string{colName: "Məktəb A", colParent: "10", colInstitutionCode: "MA1", 14: "admin@edu.az"}),
		makeRow(4, map[int]string{colName: "Məktəb B", colParent: "10", colInstitutionCode: "MB1"}),
	}

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), rows, nil, state)
	require.NoError(t, err)

	assert.Equal(t, 2, state.Success, "both institutions persist")
	assert.Zero(t, state.Failed)
	assert.Equal(t, 1, state.Admin.Errors)
	require.Len(t, state.Warnings, 1)
	assert.Contains(t, state.Warnings[0], "administrator not created")
	assert.Empty(t, fake.users)

	_, err = fake.FindInstitutionByName(context.Background(), "Məktəb B")
	assert.NoError(t, err)
}

func TestExecutorExistingAdminMessageKeptInRowMessage(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)
	fake.seedUser(models.User{Username: "existing", Email: "admin@edu.az"})

	rows := []ImportRow{makeRow(3, map[int]string{
		colName:   "Məktəb A",
		colParent: "10",
		14:        "admin@edu.az",
	})}

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), rows, nil, state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Success)
	assert.Equal(t, 1, state.Admin.Skipped)
	require.Len(t, state.Messages, 1)
	assert.Contains(t, state.Messages[0], "account admin@edu.az already exists")
}

func TestExecutorSampleRowsAreOnlySampleSkipped(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	rows := schoolRows(2)
	rows[0].IsSample = true

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), rows, nil, state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.SampleSkipped)
	assert.Equal(t, 1, state.Success)
	assert.Zero(t, state.Skipped)
	assert.Zero(t, state.Failed)
}

func TestExecutorSkipsHighSeverityDuplicates(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	duplicates := &DuplicateReport{Recommendations: map[int][]DuplicateRecommendation{
		4: {{Row: 4, Type: DuplicateExact, Severity: SeverityHigh, Message: "already exists"}},
	}}

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), schoolRows(2), duplicates, state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Success)
	assert.Equal(t, 1, state.Skipped)
}

func TestExecutorProceedPolicyIgnoresDuplicates(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)
	instType, _ := fake.GetInstitutionType(context.Background(), models.TypeSecondarySchool)

	policy := DuplicateHandling{HighSeverity: PolicyProceed, NameConflict: PolicyProceed, CodeConflict: PolicyProceed}
	executor := NewExecutor(fake, instType, models.TypeSecondarySchool, policy, NewAdminCreator())

	duplicates := &DuplicateReport{Recommendations: map[int][]DuplicateRecommendation{
		3: {{Row: 3, Type: DuplicateExact, Severity: SeverityHigh, Message: "already exists"}},
	}}

	state := newRunState()
	err := executor.Execute(context.Background(), schoolRows(1), duplicates, state)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Success)
	assert.Zero(t, state.Skipped)
}

func TestExecutorAutoRenameAndAutoGenerate(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)
	fake.seedInstitution(models.Institution{Name: "Məktəb 001", InstitutionCode: "M001", Level: 4, IsActive: true})
	instType, _ := fake.GetInstitutionType(context.Background(), models.TypeSecondarySchool)

	policy := DuplicateHandling{
		HighSeverity: PolicyProceed,
		NameConflict: PolicyAutoRename,
		CodeConflict: PolicyAutoGenerate,
	}
	executor := NewExecutor(fake, instType, models.TypeSecondarySchool, policy, NewAdminCreator())

	duplicates := &DuplicateReport{Recommendations: map[int][]DuplicateRecommendation{
		3: {
			{Row: 3, Type: DuplicateExact, Severity: SeverityHigh},
			{Row: 3, Type: DuplicateCode, Severity: SeverityHigh},
		},
	}}

	state := newRunState()
	err := executor.Execute(context.Background(), schoolRows(1), duplicates, state)
	require.NoError(t, err)
	require.Equal(t, 1, state.Success)

	created := state.Created[0]
	assert.Equal(t, "Məktəb 001 (2)", created.Name)

	inst, err := fake.GetInstitution(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "M001001", inst.InstitutionCode)
}

func TestExecutorAdminFailureDegradesToWarning(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	rows := []ImportRow{makeRow(3, map[int]string{
		colName:   "Məktəb A",
		colParent: "10",
		14:        "not-an-email",
	})}

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), rows, nil, state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Success, "institution row still succeeds")
	assert.Zero(t, state.Failed)
	assert.Equal(t, 1, state.Admin.Errors)
	require.Len(t, state.Warnings, 1)
	assert.Contains(t, state.Warnings[0], "administrator not created")
}

func TestExecutorAdminCreatedAndCounted(t *testing.T) {
	fake := newFakeStore()
	seedSector(fake)

	rows := []ImportRow{makeRow(3, map[int]string{
		colName:   "Məktəb A",
		colParent: "10",
		14:        "admin@edu.az",
		15:        "mekteb.admin",
		18:        "weak",
	})}

	state := newRunState()
	err := newSchoolExecutor(t, fake).Execute(context.Background(), rows, nil, state)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Admin.Created)
	assert.Equal(t, 1, state.Admin.PasswordsGenerated)
	require.Len(t, state.Created, 1)
	assert.Equal(t, "mekteb.admin", state.Created[0].AdminUsername)
	assert.Equal(t, "admin@edu.az", state.Created[0].AdminEmail)
}
