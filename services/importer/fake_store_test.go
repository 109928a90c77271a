package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"institution-module/models"
	"institution-module/store"
)

// errTxAborted mirrors the Postgres behavior of refusing every statement
// after an earlier failure in the same transaction.
var errTxAborted = errors.New("pq: current transaction is aborted, commands ignored until end of transaction block")

// fakeStore is an in-memory Store for pipeline tests. It counts RunInTx
// invocations so strategy-selection tests can observe chunking, and it
// emulates transaction poisoning: a simulated insert failure leaves the
// store rejecting all statements until a savepoint rollback clears it.
type fakeStore struct {
	mu           sync.Mutex
	institutions []models.Institution
	users        []models.User
	types        map[string]models.InstitutionType
	nextInstID   int64
	nextUserID   int64

	txCount int
	aborted bool
	// failCreateName makes CreateInstitution fail for that exact name
	failCreateName string
	// failUserEmail makes CreateUser fail for that exact email
	failUserEmail string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		types: map[string]models.InstitutionType{
			models.TypeMinistry:           {ID: 1, Key: models.TypeMinistry, DefaultLevel: 1, LabelAz: "Nazirlik"},
			models.TypeRegionalDepartment: {ID: 2, Key: models.TypeRegionalDepartment, DefaultLevel: 2, LabelAz: "Regional idarə"},
			models.TypeSectorOffice:       {ID: 3, Key: models.TypeSectorOffice, DefaultLevel: 3, LabelAz: "Sektor"},
			models.TypeSecondarySchool:    {ID: 4, Key: models.TypeSecondarySchool, DefaultLevel: 4, LabelAz: "Tam orta məktəb"},
			models.TypeKindergarten:       {ID: 5, Key: models.TypeKindergarten, DefaultLevel: 4, LabelAz: "Uşaq bağçası"},
		},
		nextInstID: 100,
		nextUserID: 100,
	}
}

// stmtErr rejects the statement while the transaction is poisoned
func (f *fakeStore) stmtErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aborted {
		return errTxAborted
	}
	return nil
}

func (f *fakeStore) seedInstitution(inst models.Institution) *models.Institution {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inst.ID == 0 {
		f.nextInstID++
		inst.ID = f.nextInstID
	}
	f.institutions = append(f.institutions, inst)
	return &f.institutions[len(f.institutions)-1]
}

func (f *fakeStore) seedUser(user models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		f.nextUserID++
		user.ID = f.nextUserID
	}
	f.users = append(f.users, user)
}

func (f *fakeStore) GetInstitution(ctx context.Context, id int64) (*models.Institution, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].ID == id {
			inst := f.institutions[i]
			return &inst, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindInstitutionByName(ctx context.Context, name string) (*models.Institution, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].Name == name {
			inst := f.institutions[i]
			return &inst, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindInstitutionByNameLike(ctx context.Context, name string) (*models.Institution, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(name)
	for i := range f.institutions {
		if strings.Contains(strings.ToLower(f.institutions[i].Name), needle) {
			inst := f.institutions[i]
			return &inst, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) InstitutionNameExists(ctx context.Context, name string) (bool, error) {
	if err := f.stmtErr(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InstitutionCodeExists(ctx context.Context, code string) (bool, error) {
	if err := f.stmtErr(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].InstitutionCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UTISCodeExists(ctx context.Context, code string) (bool, error) {
	if err := f.stmtErr(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].UTISCode != "" && f.institutions[i].UTISCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FirstActiveInstitutionByLevel(ctx context.Context, level int) (*models.Institution, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.institutions {
		if f.institutions[i].Level == level && f.institutions[i].IsActive {
			inst := f.institutions[i]
			return &inst, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListInstitutionNames(ctx context.Context) ([]string, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.institutions))
	for i := range f.institutions {
		names = append(names, f.institutions[i].Name)
	}
	return names, nil
}

func (f *fakeStore) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	if err := f.stmtErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateName != "" && inst.Name == f.failCreateName {
		f.aborted = true
		return fmt.Errorf("simulated insert failure for %q", inst.Name)
	}
	f.nextInstID++
	inst.ID = f.nextInstID
	f.institutions = append(f.institutions, *inst)
	return nil
}

func (f *fakeStore) ListInstitutions(ctx context.Context, filter store.ListFilter) ([]models.Institution, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Institution
	for i := range f.institutions {
		inst := f.institutions[i]
		if filter.Type != "" && inst.Type != filter.Type {
			continue
		}
		if filter.Level != 0 && inst.Level != filter.Level {
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

func (f *fakeStore) UserEmailExists(ctx context.Context, email string) (bool, error) {
	if err := f.stmtErr(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if err := f.stmtErr(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := f.stmtErr(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUserEmail != "" && user.Email == f.failUserEmail {
		f.aborted = true
		return fmt.Errorf("simulated insert failure for %q", user.Email)
	}
	f.nextUserID++
	user.ID = f.nextUserID
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeStore) GetInstitutionType(ctx context.Context, key string) (*models.InstitutionType, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.types[key]; ok {
		return &t, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListInstitutionTypes(ctx context.Context) ([]models.InstitutionType, error) {
	if err := f.stmtErr(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.InstitutionType
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) RunInTx(ctx context.Context, fn func(store.Store) error) error {
	f.mu.Lock()
	f.txCount++
	f.mu.Unlock()
	return fn(f)
}

// RunInSavepoint mirrors the SQL store's abort recovery: a failing fn
// leaves the surrounding transaction usable again.
func (f *fakeStore) RunInSavepoint(ctx context.Context, fn func(store.Store) error) error {
	if err := f.stmtErr(); err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.mu.Lock()
		f.aborted = false
		f.mu.Unlock()
		return err
	}
	return nil
}
