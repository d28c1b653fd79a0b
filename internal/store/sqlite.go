package store

import (
	"database/sql"
	"time"

	"github.com/denguess/denguess/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertClimateReading(r models.ClimateReading) error {
	_, err := s.db.Exec(`
		INSERT INTO climate_readings (date, rainfall, temperature, humidity, source_file)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, source_file) DO NOTHING
	`, r.Date, r.Rainfall, r.Temperature, r.Humidity, r.SourceFile)
	return err
}

func (s *Store) GetClimateReadings() ([]models.ClimateReading, error) {
	rows, err := s.db.Query(`
		SELECT id, date, rainfall, temperature, humidity, source_file, created_at
		FROM climate_readings
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.ClimateReading
	for rows.Next() {
		var r models.ClimateReading
		if err := rows.Scan(&r.ID, &r.Date, &r.Rainfall, &r.Temperature, &r.Humidity, &r.SourceFile, &r.CreatedAt); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *Store) CountClimateReadings() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM climate_readings`).Scan(&n)
	return n, err
}

func (s *Store) InsertDengueCase(c models.DengueCase) error {
	_, err := s.db.Exec(`
		INSERT INTO dengue_cases (date, barangay, cases)
		VALUES (?, ?, ?)
		ON CONFLICT(date, barangay) DO UPDATE SET cases = excluded.cases
	`, c.Date, c.Barangay, c.Cases)
	return err
}

func (s *Store) GetDengueCases(start, end time.Time) ([]models.DengueCase, error) {
	rows, err := s.db.Query(`
		SELECT id, date, barangay, cases, created_at
		FROM dengue_cases
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []models.DengueCase
	for rows.Next() {
		var c models.DengueCase
		if err := rows.Scan(&c.ID, &c.Date, &c.Barangay, &c.Cases, &c.CreatedAt); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (s *Store) RecordUpload(u models.Upload) error {
	_, err := s.db.Exec(`
		INSERT INTO uploads (filename, kind, rows, uploaded_at)
		VALUES (?, ?, ?, ?)
	`, u.Filename, u.Kind, u.Rows, u.UploadedAt)
	return err
}

func (s *Store) GetUploads() ([]models.Upload, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, kind, rows, uploaded_at
		FROM uploads
		ORDER BY uploaded_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.Kind, &u.Rows, &u.UploadedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (s *Store) InsertCaseReport(r models.CaseReport) error {
	_, err := s.db.Exec(`
		INSERT INTO case_reports (
			id, barangay, name, age, sex, address,
			date_reported, time_reported, reported_by,
			fever, headache, muscle_pain, rash, nausea, abdominal_pain, bleeding,
			symptom_onset_date,
			risk_red, risk_yellow, risk_green,
			referred_to_facility, advised_monitoring, notified_family,
			remarks, reported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Barangay, r.Name, r.Age, r.Sex, r.Address,
		r.DateReported, r.TimeReported, r.ReportedBy,
		r.Fever, r.Headache, r.MusclePain, r.Rash, r.Nausea, r.AbdominalPain, r.Bleeding,
		r.SymptomOnsetDate,
		r.RiskRed, r.RiskYellow, r.RiskGreen,
		r.ReferredToFacility, r.AdvisedMonitoring, r.NotifiedFamily,
		r.Remarks, r.ReportedAt)
	return err
}

// GetCaseReports returns all case reports, most recent first.
func (s *Store) GetCaseReports() ([]models.CaseReport, error) {
	rows, err := s.db.Query(`
		SELECT id, barangay, name, age, sex, address,
			date_reported, time_reported, reported_by,
			fever, headache, muscle_pain, rash, nausea, abdominal_pain, bleeding,
			symptom_onset_date,
			risk_red, risk_yellow, risk_green,
			referred_to_facility, advised_monitoring, notified_family,
			remarks, reported_at
		FROM case_reports
		ORDER BY reported_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.CaseReport
	for rows.Next() {
		var r models.CaseReport
		if err := rows.Scan(&r.ID, &r.Barangay, &r.Name, &r.Age, &r.Sex, &r.Address,
			&r.DateReported, &r.TimeReported, &r.ReportedBy,
			&r.Fever, &r.Headache, &r.MusclePain, &r.Rash, &r.Nausea, &r.AbdominalPain, &r.Bleeding,
			&r.SymptomOnsetDate,
			&r.RiskRed, &r.RiskYellow, &r.RiskGreen,
			&r.ReferredToFacility, &r.AdvisedMonitoring, &r.NotifiedFamily,
			&r.Remarks, &r.ReportedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
