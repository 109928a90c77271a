package db

import (
	"database/sql"
	"fmt"
	"institution-module/config"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	typeTable := `
	CREATE TABLE IF NOT EXISTS institution_types (
		id SERIAL PRIMARY KEY,
		key TEXT UNIQUE NOT NULL,
		default_level INTEGER NOT NULL DEFAULT 4,
		label_az TEXT
	);`

	institutionTable := `
	CREATE TABLE IF NOT EXISTS institutions (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		short_name TEXT,
		type TEXT NOT NULL,
		parent_id INTEGER,
		level INTEGER NOT NULL DEFAULT 1,
		region_code TEXT,
		institution_code TEXT,
		utis_code TEXT,
		contact_info JSONB,
		location JSONB,
		metadata JSONB,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		CONSTRAINT fk_parent
			FOREIGN KEY (parent_id)
			REFERENCES institutions(id)
			ON DELETE SET NULL
	);`

	// UTIS codes are globally unique; partial index so blank codes don't collide
	utisIndex := `
	CREATE UNIQUE INDEX IF NOT EXISTS uq_institutions_utis_code
		ON institutions (utis_code) WHERE utis_code <> '';`

	userTable := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		initial_password TEXT,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		notes TEXT,
		role TEXT NOT NULL,
		institution_id INTEGER,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

		CONSTRAINT fk_institution
			FOREIGN KEY (institution_id)
			REFERENCES institutions(id)
			ON DELETE SET NULL
	);`

	// Types first, then institutions, then users referencing institutions
	if _, err := DB.Exec(typeTable); err != nil {
		return fmt.Errorf("error creating institution_types table: %w", err)
	}

	if _, err := DB.Exec(institutionTable); err != nil {
		return fmt.Errorf("error creating institutions table: %w", err)
	}

	if _, err := DB.Exec(utisIndex); err != nil {
		return fmt.Errorf("error creating utis_code index: %w", err)
	}

	if _, err := DB.Exec(userTable); err != nil {
		return fmt.Errorf("error creating users table: %w", err)
	}

	return seedInstitutionTypes()
}

// seedInstitutionTypes inserts the reference type rows if missing
func seedInstitutionTypes() error {
	types := []struct {
		key   string
		level int
		label string
	}{
		{"ministry", 1, "Nazirlik"},
		{"regional_education_department", 2, "Regional Təhsil İdarəsi"},
		{"sector_education_office", 3, "Sektor Təhsil Şöbəsi"},
		{"secondary_school", 4, "Tam Orta Məktəb"},
		{"primary_school", 4, "İbtidai Məktəb"},
		{"lyceum", 4, "Lisey"},
		{"gymnasium", 4, "Gimnaziya"},
		{"kindergarten", 4, "Uşaq Bağçası"},
	}

	for _, t := range types {
		_, err := DB.Exec(
			`INSERT INTO institution_types (key, default_level, label_az)
			 SELECT $1, $2, $3
			 WHERE NOT EXISTS (SELECT 1 FROM institution_types WHERE key = $1)`,
			t.key, t.level, t.label,
		)
		if err != nil {
			log.Println("Warning: Error seeding institution type:", err)
		}
	}

	return nil
}
