package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institution-module/models"
)

func TestDetectExactNameDuplicate(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "28 nömrəli məktəb", Level: 4, IsActive: true})

	report, err := NewDuplicateDetector(fake).Detect(context.Background(), []DuplicateCandidate{
		{Row: 3, Name: "28 Nömrəli Məktəb"},
	})
	require.NoError(t, err)

	recs := report.ForRow(3)
	require.Len(t, recs, 1)
	assert.Equal(t, DuplicateExact, recs[0].Type)
	assert.Equal(t, SeverityHigh, recs[0].Severity)
}

func TestDetectSimilarName(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "28 nömrəli məktəb", Level: 4, IsActive: true})

	report, err := NewDuplicateDetector(fake).Detect(context.Background(), []DuplicateCandidate{
		{Row: 3, Name: "28 nömrəli məktəb filialı"},
	})
	require.NoError(t, err)

	recs := report.ForRow(3)
	require.Len(t, recs, 1)
	assert.Equal(t, DuplicateSimilar, recs[0].Type)
	assert.Equal(t, SeverityMedium, recs[0].Severity)
}

func TestDetectIntraBatchDuplicate(t *testing.T) {
	fake := newFakeStore()

	report, err := NewDuplicateDetector(fake).Detect(context.Background(), []DuplicateCandidate{
		{Row: 3, Name: "Məktəb A"},
		{Row: 4, Name: "məktəb a"},
	})
	require.NoError(t, err)

	assert.Empty(t, report.ForRow(3))
	recs := report.ForRow(4)
	require.Len(t, recs, 1)
	assert.Equal(t, DuplicateExact, recs[0].Type)
}

func TestDetectCodeConflict(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "Köhnə məktəb", InstitutionCode: "MA1", Level: 4, IsActive: true})

	report, err := NewDuplicateDetector(fake).Detect(context.Background(), []DuplicateCandidate{
		{Row: 3, Name: "Məktəb A", Code: "MA1"},
		{Row: 4, Name: "Məktəb B", Code: "MB1"},
		{Row: 5, Name: "Məktəb C", Code: "MB1"},
	})
	require.NoError(t, err)

	require.Len(t, report.ForRow(3), 1)
	assert.Equal(t, DuplicateCode, report.ForRow(3)[0].Type)
	assert.Empty(t, report.ForRow(4))
	require.Len(t, report.ForRow(5), 1)
	assert.Equal(t, DuplicateCode, report.ForRow(5)[0].Type)
}

func TestDetectNeverMutates(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "Məktəb A", Level: 4, IsActive: true})
	before := len(fake.institutions)

	_, err := NewDuplicateDetector(fake).Detect(context.Background(), []DuplicateCandidate{
		{Row: 3, Name: "Məktəb A", Code: "X1"},
	})
	require.NoError(t, err)
	assert.Equal(t, before, len(fake.institutions))
}

func TestUniqueInstitutionName(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "Məktəb A", Level: 4, IsActive: true})
	fake.seedInstitution(models.Institution{Name: "Məktəb A (2)", Level: 4, IsActive: true})

	name, err := uniqueInstitutionName(context.Background(), fake, "Məktəb A")
	require.NoError(t, err)
	assert.Equal(t, "Məktəb A (3)", name)

	free, err := uniqueInstitutionName(context.Background(), fake, "Məktəb B")
	require.NoError(t, err)
	assert.Equal(t, "Məktəb B", free)
}

func TestUniqueInstitutionCode(t *testing.T) {
	fake := newFakeStore()
	fake.seedInstitution(models.Institution{Name: "A", InstitutionCode: "MA1", Level: 4, IsActive: true})
	fake.seedInstitution(models.Institution{Name: "B", InstitutionCode: "MA1001", Level: 4, IsActive: true})

	code, err := uniqueInstitutionCode(context.Background(), fake, "MA1")
	require.NoError(t, err)
	assert.Equal(t, "MA1002", code)
}
