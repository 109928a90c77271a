package models

import (
	"time"
)

// ContactInfo holds the contact fields stored as JSONB on an institution
type ContactInfo struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Location holds the address fields stored as JSONB on an institution
type Location struct {
	Address string `json:"address,omitempty"`
}

// Institution represents one node in the institution hierarchy
// (ministry -> regional office -> sector office -> school/kindergarten)
type Institution struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name,omitempty"`
	Type            string            `json:"type"`
	ParentID        *int64            `json:"parent_id,omitempty"`
	Level           int               `json:"level"`
	RegionCode      string            `json:"region_code,omitempty"`
	InstitutionCode string            `json:"institution_code,omitempty"`
	UTISCode        string            `json:"utis_code,omitempty"`
	ContactInfo     ContactInfo       `json:"contact_info"`
	Location        Location          `json:"location"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// InstitutionResponse is the structured response for API responses
type InstitutionResponse struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name,omitempty"`
	Type            string            `json:"type"`
	ParentID        *int64            `json:"parent_id,omitempty"`
	Level           int               `json:"level"`
	RegionCode      string            `json:"region_code,omitempty"`
	InstitutionCode string            `json:"institution_code,omitempty"`
	UTISCode        string            `json:"utis_code,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Email           string            `json:"email,omitempty"`
	Address         string            `json:"address,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       string            `json:"created_at"`
}

// ToResponse converts Institution to InstitutionResponse with formatted timestamps
func (i *Institution) ToResponse() InstitutionResponse {
	return InstitutionResponse{
		ID:              i.ID,
		Name:            i.Name,
		ShortName:       i.ShortName,
		Type:            i.Type,
		ParentID:        i.ParentID,
		Level:           i.Level,
		RegionCode:      i.RegionCode,
		InstitutionCode: i.InstitutionCode,
		UTISCode:        i.UTISCode,
		Phone:           i.ContactInfo.Phone,
		Email:           i.ContactInfo.Email,
		Address:         i.Location.Address,
		Metadata:        i.Metadata,
		IsActive:        i.IsActive,
		CreatedAt:       i.CreatedAt.Format(time.RFC3339),
	}
}
