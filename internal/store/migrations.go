package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS climate_readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date DATE NOT NULL,
    rainfall REAL NOT NULL,
    temperature REAL NOT NULL,
    humidity REAL NOT NULL,
    source_file TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(date, source_file)
);

CREATE TABLE IF NOT EXISTS dengue_cases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date DATE NOT NULL,
    barangay TEXT NOT NULL,
    cases INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(date, barangay)
);

CREATE TABLE IF NOT EXISTS case_reports (
    id TEXT PRIMARY KEY,
    barangay TEXT NOT NULL,
    name TEXT,
    age TEXT,
    sex TEXT,
    address TEXT,
    date_reported TEXT,
    time_reported TEXT,
    reported_by TEXT,
    fever BOOLEAN DEFAULT FALSE,
    headache BOOLEAN DEFAULT FALSE,
    muscle_pain BOOLEAN DEFAULT FALSE,
    rash BOOLEAN DEFAULT FALSE,
    nausea BOOLEAN DEFAULT FALSE,
    abdominal_pain BOOLEAN DEFAULT FALSE,
    bleeding BOOLEAN DEFAULT FALSE,
    symptom_onset_date TEXT,
    risk_red BOOLEAN DEFAULT FALSE,
    risk_yellow BOOLEAN DEFAULT FALSE,
    risk_green BOOLEAN DEFAULT FALSE,
    referred_to_facility BOOLEAN DEFAULT FALSE,
    advised_monitoring BOOLEAN DEFAULT FALSE,
    notified_family BOOLEAN DEFAULT FALSE,
    remarks TEXT,
    reported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_climate_date ON climate_readings(date);
CREATE INDEX IF NOT EXISTS idx_cases_date ON dengue_cases(date);
CREATE INDEX IF NOT EXISTS idx_cases_barangay ON dengue_cases(barangay);
CREATE INDEX IF NOT EXISTS idx_reports_reported_at ON case_reports(reported_at);
`,
	},
	{
		Version:     2,
		Description: "Track CSV uploads",
		SQL: `
CREATE TABLE IF NOT EXISTS uploads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT NOT NULL,
    kind TEXT NOT NULL,
    rows INTEGER NOT NULL,
    uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d (%s)", m.Version, m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		log.Printf("migrations: completed %d", m.Version)
	}

	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
