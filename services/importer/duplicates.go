package importer

import (
	"context"
	"fmt"
	"strings"

	"institution-module/store"
)

// Recommendation types and severities
const (
	DuplicateExact   = "exact_duplicate"
	DuplicateSimilar = "similar_duplicate"
	DuplicateCode    = "code_conflict"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Duplicate-handling policy values supplied by the caller
const (
	PolicySkip         = "skip"
	PolicyProceed      = "proceed"
	PolicyAutoRename   = "auto_rename"
	PolicyAutoGenerate = "auto_generate"
)

// DuplicateHandling is the caller's per-conflict-class policy
type DuplicateHandling struct {
	HighSeverity string `json:"high_severity"`
	NameConflict string `json:"name_conflict"`
	CodeConflict string `json:"code_conflict"`
}

// DefaultDuplicateHandling skips high-severity duplicates and leaves the
// rest alone
func DefaultDuplicateHandling() DuplicateHandling {
	return DuplicateHandling{
		HighSeverity: PolicySkip,
		NameConflict: PolicyProceed,
		CodeConflict: PolicyProceed,
	}
}

// DuplicateRecommendation flags one conflict on one row
type DuplicateRecommendation struct {
	Row      int    `json:"row"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DuplicateReport holds every recommendation keyed by spreadsheet row number
type DuplicateReport struct {
	Recommendations map[int][]DuplicateRecommendation `json:"recommendations"`
}

func (r *DuplicateReport) ForRow(row int) []DuplicateRecommendation {
	if r == nil {
		return nil
	}
	return r.Recommendations[row]
}

func (r *DuplicateReport) add(rec DuplicateRecommendation) {
	r.Recommendations[rec.Row] = append(r.Recommendations[rec.Row], rec)
}

// DuplicateCandidate is the name/code pair the detector inspects per row
type DuplicateCandidate struct {
	Row  int
	Name string
	Code string
}

// DuplicateDetector flags candidate rows colliding with persisted
// institutions or with earlier rows of the same batch. Detection never
// mutates anything; resolution is the executor's business.
type DuplicateDetector struct {
	store store.Store
}

func NewDuplicateDetector(s store.Store) *DuplicateDetector {
	return &DuplicateDetector{store: s}
}

// Detect checks every candidate against the persisted institutions (exact
// name, normalized fuzzy name, code collision) and against the batch itself.
func (d *DuplicateDetector) Detect(ctx context.Context, candidates []DuplicateCandidate) (*DuplicateReport, error) {
	report := &DuplicateReport{
		Recommendations: make(map[int][]DuplicateRecommendation),
	}

	existingNames, err := d.store.ListInstitutionNames(ctx)
	if err != nil {
		return nil, err
	}
	normalizedExisting := make(map[string]string, len(existingNames))
	for _, name := range existingNames {
		normalizedExisting[normalizeName(name)] = name
	}

	seenNames := make(map[string]int)
	seenCodes := make(map[string]int)

	for _, c := range candidates {
		if c.Name != "" {
			d.checkName(c, normalizedExisting, seenNames, report)
		}
		if c.Code != "" {
			if err := d.checkCode(ctx, c, seenCodes, report); err != nil {
				return nil, err
			}
		}
	}

	return report, nil
}

func (d *DuplicateDetector) checkName(c DuplicateCandidate, existing map[string]string, seen map[string]int, report *DuplicateReport) {
	norm := normalizeName(c.Name)

	if firstRow, ok := seen[norm]; ok {
		report.add(DuplicateRecommendation{
			Row:      c.Row,
			Type:     DuplicateExact,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("name %q duplicates row %d in this file", c.Name, firstRow),
		})
		return
	}
	seen[norm] = c.Row

	if original, ok := existing[norm]; ok {
		report.add(DuplicateRecommendation{
			Row:      c.Row,
			Type:     DuplicateExact,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("an institution named %q already exists", original),
		})
		return
	}

	for existingNorm, original := range existing {
		if similarNames(norm, existingNorm) {
			report.add(DuplicateRecommendation{
				Row:      c.Row,
				Type:     DuplicateSimilar,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("name %q is similar to existing institution %q", c.Name, original),
			})
			return
		}
	}
}

func (d *DuplicateDetector) checkCode(ctx context.Context, c DuplicateCandidate, seen map[string]int, report *DuplicateReport) error {
	if firstRow, ok := seen[c.Code]; ok {
		report.add(DuplicateRecommendation{
			Row:      c.Row,
			Type:     DuplicateCode,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("code %q duplicates row %d in this file", c.Code, firstRow),
		})
		return nil
	}
	seen[c.Code] = c.Row

	exists, err := d.store.InstitutionCodeExists(ctx, c.Code)
	if err != nil {
		return err
	}
	if exists {
		report.add(DuplicateRecommendation{
			Row:      c.Row,
			Type:     DuplicateCode,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("code %q is already in use", c.Code),
		})
	}
	return nil
}

// normalizeName lowercases and collapses interior whitespace
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// similarNames treats containment of one normalized name in the other as
// similarity, ignoring very short names where containment is meaningless
func similarNames(a, b string) bool {
	if len(a) < 5 || len(b) < 5 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// uniqueInstitutionName appends " (n)" until no persisted institution
// carries the name. Used by the executor under the auto_rename policy.
func uniqueInstitutionName(ctx context.Context, s store.Store, name string) (string, error) {
	exists, err := s.InstitutionNameExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return name, nil
	}
	for n := 2; n <= 99; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		exists, err := s.InstitutionNameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not derive a unique name from %q", name)
}

// uniqueInstitutionCode appends a zero-padded counter until the code is
// free. Used by the executor under the auto_generate policy.
func uniqueInstitutionCode(ctx context.Context, s store.Store, base string) (string, error) {
	exists, err := s.InstitutionCodeExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	for n := 1; n <= 999; n++ {
		candidate := fmt.Sprintf("%s%03d", base, n)
		exists, err := s.InstitutionCodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not derive a unique code from %q", base)
}
