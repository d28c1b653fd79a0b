package models

import (
	"database/sql"
	"time"
)

// Climate is a single (rainfall, temperature, humidity) triple. Units are
// mm, °C and % relative humidity throughout.
type Climate struct {
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type ClimateReading struct {
	ID          int64
	Date        time.Time
	Rainfall    float64
	Temperature float64
	Humidity    float64
	SourceFile  string
	CreatedAt   time.Time
}

type DengueCase struct {
	ID        int64
	Date      time.Time
	Barangay  string
	Cases     int
	CreatedAt time.Time
}

type Upload struct {
	ID         int64
	Filename   string
	Kind       string // "climate" or "dengue"
	Rows       int
	UploadedAt time.Time
}

// CaseReport is a community dengue case report as submitted from the field.
// Free-text fields are stored verbatim; symptom and action fields are flags.
type CaseReport struct {
	ID       string
	Barangay string

	Name    string
	Age     string
	Sex     string
	Address string

	DateReported string
	TimeReported string
	ReportedBy   string

	Fever         bool
	Headache      bool
	MusclePain    bool
	Rash          bool
	Nausea        bool
	AbdominalPain bool
	Bleeding      bool

	SymptomOnsetDate sql.NullString

	RiskRed    bool
	RiskYellow bool
	RiskGreen  bool

	ReferredToFacility bool
	AdvisedMonitoring  bool
	NotifiedFamily     bool

	Remarks    sql.NullString
	ReportedAt time.Time
}
