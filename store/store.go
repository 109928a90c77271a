package store

import (
	"context"
	"errors"

	"institution-module/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// ListFilter narrows institution listings
type ListFilter struct {
	Type  string
	Level int // 0 means any
}

// Store is the persistence port for the institution hierarchy and its
// administrator accounts. The SQL implementation lives in this package;
// tests substitute an in-memory one.
type Store interface {
	// Institutions
	GetInstitution(ctx context.Context, id int64) (*models.Institution, error)
	FindInstitutionByName(ctx context.Context, name string) (*models.Institution, error)
	FindInstitutionByNameLike(ctx context.Context, name string) (*models.Institution, error)
	InstitutionNameExists(ctx context.Context, name string) (bool, error)
	InstitutionCodeExists(ctx context.Context, code string) (bool, error)
	UTISCodeExists(ctx context.Context, code string) (bool, error)
	FirstActiveInstitutionByLevel(ctx context.Context, level int) (*models.Institution, error)
	ListInstitutionNames(ctx context.Context) ([]string, error)
	CreateInstitution(ctx context.Context, inst *models.Institution) error
	ListInstitutions(ctx context.Context, filter ListFilter) ([]models.Institution, error)

	// Administrator accounts
	UserEmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Institution types (read-only reference data)
	GetInstitutionType(ctx context.Context, key string) (*models.InstitutionType, error)
	ListInstitutionTypes(ctx context.Context) ([]models.InstitutionType, error)

	// RunInTx runs fn against a transaction-bound view of the store.
	// Nested calls reuse the ambient transaction.
	RunInTx(ctx context.Context, fn func(Store) error) error

	// RunInSavepoint runs fn under a savepoint on the ambient transaction,
	// so a failed statement is rolled back without aborting the rest of
	// the transaction. Outside a transaction it behaves like RunInTx.
	RunInSavepoint(ctx context.Context, fn func(Store) error) error
}
