package models

// InstitutionType is read-only reference data describing one type key.
// DefaultLevel is the hierarchy depth a row of this type lands on unless
// the spreadsheet overrides it.
type InstitutionType struct {
	ID           int64  `json:"id"`
	Key          string `json:"key"`
	DefaultLevel int    `json:"default_level"`
	LabelAz      string `json:"label_az"`
}

// Well-known institution type keys seeded at boot
const (
	TypeMinistry           = "ministry"
	TypeRegionalDepartment = "regional_education_department"
	TypeSectorOffice       = "sector_education_office"
	TypeSecondarySchool    = "secondary_school"
	TypePrimarySchool      = "primary_school"
	TypeLyceum             = "lyceum"
	TypeGymnasium          = "gymnasium"
	TypeKindergarten       = "kindergarten"
)
