package importer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"institution-module/logger"
	"institution-module/models"
	"institution-module/store"
	"institution-module/utils"
)

// CredentialSender delivers first-login credentials to a freshly created
// administrator. Best-effort: failures are logged, never surfaced.
type CredentialSender func(user *models.User, institutionName string)

// AdminResult is the outcome of one admin sub-operation. Success refers to
// the sub-operation itself; the owning institution row never fails because
// of it.
type AdminResult struct {
	Success           bool
	AdminCreated      bool
	PasswordGenerated bool
	Message           string
	User              *models.User
}

// AdminCreator provisions administrator accounts for imported institutions.
// The store is passed per call so the executor can hand in its
// transaction-bound view.
type AdminCreator struct {
	sendCredentials CredentialSender
}

func NewAdminCreator() *AdminCreator {
	return &AdminCreator{}
}

// WithCredentialSender wires the optional credential mail hook
func (c *AdminCreator) WithCredentialSender(fn CredentialSender) *AdminCreator {
	c.sendCredentials = fn
	return c
}

var usernameCleaner = regexp.MustCompile(`[^a-z0-9._\-]+`)

const maxUsernameAttempts = 99

// Placeholder names for admin blocks that carry only an email, so the
// account and its credential mail never end up nameless
const (
	defaultAdminFirstName = "Qurum"
	defaultAdminLastName  = "Administratoru"
)

// CreateAdminForInstitution runs the admin sub-operation: email gate,
// existing-account short circuit, username resolution, password policy,
// persist. A blank email means no admin was requested, which is a success.
func (c *AdminCreator) CreateAdminForInstitution(ctx context.Context, s store.Store, draft *AdminDraft, inst *models.Institution) AdminResult {
	if draft == nil || draft.Email == "" {
		return AdminResult{Success: true, Message: "no administrator requested"}
	}

	if !utils.IsValidEmail(draft.Email) {
		return AdminResult{Success: false, Message: fmt.Sprintf("invalid administrator email %q", draft.Email)}
	}

	exists, err := s.UserEmailExists(ctx, draft.Email)
	if err != nil {
		return AdminResult{Success: false, Message: fmt.Sprintf("email lookup failed: %v", err)}
	}
	if exists {
		return AdminResult{Success: true, Message: fmt.Sprintf("account %s already exists", draft.Email)}
	}

	username, err := c.resolveUsername(ctx, s, draft)
	if err != nil {
		return AdminResult{Success: false, Message: err.Error()}
	}

	password := draft.Password
	generated := false
	if !CheckPasswordPolicy(password) {
		password, err = GeneratePassword()
		if err != nil {
			return AdminResult{Success: false, Message: fmt.Sprintf("password generation failed: %v", err)}
		}
		generated = true
		logger.Info("generated password for administrator %s (supplied password rejected by policy)", draft.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminResult{Success: false, Message: fmt.Sprintf("password hashing failed: %v", err)}
	}

	firstName := strings.TrimSpace(draft.FirstName)
	if firstName == "" {
		firstName = defaultAdminFirstName
	}
	lastName := strings.TrimSpace(draft.LastName)
	if lastName == "" {
		lastName = defaultAdminLastName
	}

	user := &models.User{
		Username:        username,
		Email:           draft.Email,
		PasswordHash:    string(hash),
		InitialPassword: password,
		FirstName:       firstName,
		LastName:        lastName,
		Phone:           draft.Phone,
		Notes:           draft.Notes,
		Role:            roleForTypeKey(inst.Type),
		InstitutionID:   inst.ID,
		IsActive:        true,
	}

	// Savepoint-scoped so a unique-constraint failure here cannot poison
	// the batch transaction holding the institution row
	err = s.RunInSavepoint(ctx, func(rowStore store.Store) error {
		return rowStore.CreateUser(ctx, user)
	})
	if err != nil {
		return AdminResult{Success: false, Message: fmt.Sprintf("account creation failed: %v", err)}
	}

	if c.sendCredentials != nil {
		c.sendCredentials(user, inst.Name)
	}

	return AdminResult{
		Success:           true,
		AdminCreated:      true,
		PasswordGenerated: generated,
		Message:           fmt.Sprintf("administrator %s created", username),
		User:              user,
	}
}

// resolveUsername slugifies the provided username or the email local part
// and retries with a zero-padded suffix until free, bounded at 99 attempts
func (c *AdminCreator) resolveUsername(ctx context.Context, s store.Store, draft *AdminDraft) (string, error) {
	base := slugifyUsername(draft.Username)
	if base == "" {
		local, _, _ := strings.Cut(draft.Email, "@")
		base = slugifyUsername(local)
	}
	if base == "" {
		base = "admin"
	}

	candidate := base
	for attempt := 1; attempt <= maxUsernameAttempts; attempt++ {
		taken, err := s.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("username lookup failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%02d", base, attempt)
	}
	return "", fmt.Errorf("could not derive a free username from %q", base)
}

func slugifyUsername(raw string) string {
	slug := usernameCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	return strings.Trim(slug, "._-")
}

// roleForTypeKey maps an institution type key to an administrator role.
// Unmapped types default to the school-admin role.
func roleForTypeKey(typeKey string) string {
	switch typeKey {
	case models.TypeRegionalDepartment:
		return models.RoleRegionAdmin
	case models.TypeSectorOffice:
		return models.RoleSectorAdmin
	default:
		return models.RoleSchoolAdmin
	}
}
