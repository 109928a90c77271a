package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"institution-module/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SQLStore implements Store on top of PostgreSQL
type SQLStore struct {
	db *sql.DB
	q  querier
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	// Already inside a transaction: reuse it
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// savepointSeq keeps generated savepoint names unique within a transaction
var savepointSeq uint64

// RunInSavepoint gives fn its own abort scope inside the ambient
// transaction. Postgres refuses every statement after the first error in a
// transaction, so without a savepoint one bad row would doom the whole
// batch; rolling back to the savepoint keeps the transaction usable.
func (s *SQLStore) RunInSavepoint(ctx context.Context, fn func(Store) error) error {
	tx, ok := s.q.(*sql.Tx)
	if !ok {
		return s.RunInTx(ctx, fn)
	}

	name := fmt.Sprintf("sp_%d", atomic.AddUint64(&savepointSeq, 1))
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(s); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

const institutionColumns = `
	id, name, COALESCE(short_name, ''), type, parent_id, level,
	COALESCE(region_code, ''), COALESCE(institution_code, ''), COALESCE(utis_code, ''),
	COALESCE(contact_info, '{}'), COALESCE(location, '{}'), COALESCE(metadata, '{}'),
	is_active, created_at, updated_at`

func (s *SQLStore) GetInstitution(ctx context.Context, id int64) (*models.Institution, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions WHERE id = $1`, id)
	return scanInstitution(row)
}

func (s *SQLStore) FindInstitutionByName(ctx context.Context, name string) (*models.Institution, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions WHERE name = $1 LIMIT 1`, name)
	return scanInstitution(row)
}

func (s *SQLStore) FindInstitutionByNameLike(ctx context.Context, name string) (*models.Institution, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions
		 WHERE (name ILIKE '%' || $1 || '%' OR short_name ILIKE '%' || $1 || '%')
		 AND is_active = TRUE
		 ORDER BY id ASC LIMIT 1`, name)
	return scanInstitution(row)
}

func (s *SQLStore) InstitutionNameExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM institutions WHERE name = $1`, name)
}

func (s *SQLStore) InstitutionCodeExists(ctx context.Context, code string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM institutions WHERE institution_code = $1`, code)
}

func (s *SQLStore) UTISCodeExists(ctx context.Context, code string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM institutions WHERE utis_code = $1`, code)
}

func (s *SQLStore) FirstActiveInstitutionByLevel(ctx context.Context, level int) (*models.Institution, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions
		 WHERE level = $1 AND is_active = TRUE ORDER BY id ASC LIMIT 1`, level)
	return scanInstitution(row)
}

func (s *SQLStore) ListInstitutionNames(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT name FROM institutions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLStore) CreateInstitution(ctx context.Context, inst *models.Institution) error {
	contactInfo, err := json.Marshal(inst.ContactInfo)
	if err != nil {
		return err
	}
	location, err := json.Marshal(inst.Location)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(inst.Metadata)
	if err != nil {
		return err
	}

	now := time.Now()

	query := `
		INSERT INTO institutions (
			name, short_name, type, parent_id, level,
			region_code, institution_code, utis_code,
			contact_info, location, metadata, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err = s.q.QueryRowContext(
		ctx,
		query,
		inst.Name,
		inst.ShortName,
		inst.Type,
		inst.ParentID,
		inst.Level,
		inst.RegionCode,
		inst.InstitutionCode,
		inst.UTISCode,
		contactInfo,
		location,
		metadata,
		inst.IsActive,
		now,
		now,
	).Scan(&inst.ID)
	if err != nil {
		return err
	}

	inst.CreatedAt = now
	inst.UpdatedAt = now
	return nil
}

func (s *SQLStore) ListInstitutions(ctx context.Context, filter ListFilter) ([]models.Institution, error) {
	query := `SELECT ` + institutionColumns + ` FROM institutions WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Type != "" {
		argCount++
		query += fmt.Sprintf(" AND type = $%d", argCount)
		args = append(args, filter.Type)
	}

	if filter.Level > 0 {
		argCount++
		query += fmt.Sprintf(" AND level = $%d", argCount)
		args = append(args, filter.Level)
	}

	query += " ORDER BY id ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	institutions := []models.Institution{}
	for rows.Next() {
		inst, err := scanInstitutionRows(rows)
		if err != nil {
			return nil, err
		}
		institutions = append(institutions, *inst)
	}
	return institutions, rows.Err()
}

func (s *SQLStore) UserEmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email)
}

func (s *SQLStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, username)
}

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()

	query := `
		INSERT INTO users (
			username, email, password_hash, initial_password,
			first_name, last_name, phone, notes, role,
			institution_id, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := s.q.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.InitialPassword,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Notes,
		user.Role,
		user.InstitutionID,
		user.IsActive,
		now,
	).Scan(&user.ID)
	if err != nil {
		return err
	}

	user.CreatedAt = now
	return nil
}

func (s *SQLStore) GetInstitutionType(ctx context.Context, key string) (*models.InstitutionType, error) {
	var t models.InstitutionType
	err := s.q.QueryRowContext(ctx,
		`SELECT id, key, default_level, COALESCE(label_az, '')
		 FROM institution_types WHERE key = $1`, key).
		Scan(&t.ID, &t.Key, &t.DefaultLevel, &t.LabelAz)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) ListInstitutionTypes(ctx context.Context) ([]models.InstitutionType, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, key, default_level, COALESCE(label_az, '') FROM institution_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []models.InstitutionType{}
	for rows.Next() {
		var t models.InstitutionType
		if err := rows.Scan(&t.ID, &t.Key, &t.DefaultLevel, &t.LabelAz); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *SQLStore) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int
	if err := s.q.QueryRowContext(ctx, query, arg).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstitution(row *sql.Row) (*models.Institution, error) {
	inst, err := scanInstitutionRows(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return inst, err
}

func scanInstitutionRows(r rowScanner) (*models.Institution, error) {
	var inst models.Institution
	var parentID sql.NullInt64
	var contactInfo, location, metadata []byte

	err := r.Scan(
		&inst.ID, &inst.Name, &inst.ShortName, &inst.Type, &parentID, &inst.Level,
		&inst.RegionCode, &inst.InstitutionCode, &inst.UTISCode,
		&contactInfo, &location, &metadata,
		&inst.IsActive, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		inst.ParentID = &parentID.Int64
	}
	if len(contactInfo) > 0 {
		if err := json.Unmarshal(contactInfo, &inst.ContactInfo); err != nil {
			return nil, fmt.Errorf("error decoding contact_info: %w", err)
		}
	}
	if len(location) > 0 {
		if err := json.Unmarshal(location, &inst.Location); err != nil {
			return nil, fmt.Errorf("error decoding location: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &inst.Metadata); err != nil {
			return nil, fmt.Errorf("error decoding metadata: %w", err)
		}
	}

	return &inst, nil
}
