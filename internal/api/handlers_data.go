package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/ingest"
	"github.com/denguess/denguess/internal/insights"
	"github.com/denguess/denguess/internal/metrics"
	"github.com/denguess/denguess/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":      "denguess",
		"version":      "1.0.0",
		"message":      "dengue outbreak forecasting API",
		"model_loaded": s.forest != nil,
		"endpoints": []string{
			"/health", "/barangays", "/model/info",
			"/predict", "/predict/batch", "/predict/all-barangays", "/predict/weekly/{barangay}",
			"/upload/climate", "/upload/dengue", "/uploads",
			"/report-case", "/case-reports", "/insights", "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	readings, err := s.store.CountClimateReadings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	status := "ok"
	modelLoaded := s.forest != nil
	if !modelLoaded {
		status = "degraded"
	}

	health := map[string]any{
		"status":           status,
		"model_loaded":     modelLoaded,
		"climate_readings": readings,
		"baselines_loaded": s.baselines.Get() != nil,
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

func (s *Server) handleBarangays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"barangays": features.Barangays})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if s.forest == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"model_loaded": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model_loaded":    true,
		"model_type":      s.forest.ModelType(),
		"num_trees":       s.forest.NumTrees(),
		"num_features":    len(s.forest.FeatureNames()),
		"schema_version":  s.forest.SchemaVersion(),
		"encoder_classes": s.forest.EncoderClasses(),
	})
}

const maxUploadBytes = 10 << 20

func (s *Server) handleUploadClimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	file, header, err := uploadFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	result, err := ingest.ParseClimateCSV(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted := 0
	for _, reading := range result.Readings {
		if err := s.store.InsertClimateReading(reading); err != nil {
			log.Printf("upload: insert climate reading: %v", err)
			continue
		}
		inserted++
	}
	metrics.ClimateRowsIngested.WithLabelValues("climate").Add(float64(inserted))

	if err := s.store.RecordUpload(models.Upload{
		Filename:   header.Filename,
		Kind:       "climate",
		Rows:       inserted,
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		log.Printf("upload: record upload: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":      header.Filename,
		"rows_inserted": inserted,
		"rows_dropped":  result.Dropped,
		"rows_flagged":  result.Flagged,
	})
}

func (s *Server) handleUploadDengue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	file, header, err := uploadFile(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	result, err := ingest.ParseDengueCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted := 0
	for _, c := range result.Cases {
		if err := s.store.InsertDengueCase(c); err != nil {
			log.Printf("upload: insert dengue case: %v", err)
			continue
		}
		inserted++
	}
	metrics.ClimateRowsIngested.WithLabelValues("dengue").Add(float64(inserted))

	if err := s.store.RecordUpload(models.Upload{
		Filename:   header.Filename,
		Kind:       "dengue",
		Rows:       inserted,
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		log.Printf("upload: record upload: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":      header.Filename,
		"rows_inserted": inserted,
		"rows_dropped":  result.Dropped,
	})
}

func uploadFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, errors.New("multipart form with a file field is required")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("multipart form with a file field is required")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		file.Close()
		return nil, nil, errors.New("only .csv uploads are accepted")
	}
	return file, header, nil
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.store.GetUploads()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type uploadJSON struct {
		Filename   string    `json:"filename"`
		Kind       string    `json:"kind"`
		Rows       int       `json:"rows"`
		UploadedAt time.Time `json:"uploaded_at"`
	}
	out := make([]uploadJSON, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, uploadJSON{Filename: u.Filename, Kind: u.Kind, Rows: u.Rows, UploadedAt: u.UploadedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": out})
}

type caseReportRequest struct {
	Barangay string `json:"barangay"`
	Name     string `json:"name"`
	Age      string `json:"age"`
	Sex      string `json:"sex"`
	Address  string `json:"address"`

	DateReported string `json:"date_reported"`
	TimeReported string `json:"time_reported"`
	ReportedBy   string `json:"reported_by"`

	Fever         bool `json:"fever"`
	Headache      bool `json:"headache"`
	MusclePain    bool `json:"muscle_pain"`
	Rash          bool `json:"rash"`
	Nausea        bool `json:"nausea"`
	AbdominalPain bool `json:"abdominal_pain"`
	Bleeding      bool `json:"bleeding"`

	SymptomOnsetDate string `json:"symptom_onset_date"`

	RiskRed    bool `json:"risk_red"`
	RiskYellow bool `json:"risk_yellow"`
	RiskGreen  bool `json:"risk_green"`

	ReferredToFacility bool `json:"referred_to_facility"`
	AdvisedMonitoring  bool `json:"advised_monitoring"`
	NotifiedFamily     bool `json:"notified_family"`

	Remarks string `json:"remarks"`
}

func (s *Server) handleReportCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req caseReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Barangay) == "" {
		writeError(w, http.StatusBadRequest, "barangay is required")
		return
	}

	report := models.CaseReport{
		ID:       uuid.NewString(),
		Barangay: features.NormalizeBarangay(req.Barangay),

		Name:    req.Name,
		Age:     req.Age,
		Sex:     req.Sex,
		Address: req.Address,

		DateReported: req.DateReported,
		TimeReported: req.TimeReported,
		ReportedBy:   req.ReportedBy,

		Fever:         req.Fever,
		Headache:      req.Headache,
		MusclePain:    req.MusclePain,
		Rash:          req.Rash,
		Nausea:        req.Nausea,
		AbdominalPain: req.AbdominalPain,
		Bleeding:      req.Bleeding,

		SymptomOnsetDate: nullString(req.SymptomOnsetDate),

		RiskRed:    req.RiskRed,
		RiskYellow: req.RiskYellow,
		RiskGreen:  req.RiskGreen,

		ReferredToFacility: req.ReferredToFacility,
		AdvisedMonitoring:  req.AdvisedMonitoring,
		NotifiedFamily:     req.NotifiedFamily,

		Remarks:    nullString(req.Remarks),
		ReportedAt: time.Now().UTC(),
	}

	if err := s.store.InsertCaseReport(report); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.CaseReportsTotal.WithLabelValues(report.Barangay).Inc()

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       report.ID,
		"barangay": report.Barangay,
		"status":   "recorded",
	})
}

// handleCaseReports aggregates the report log for the dashboard: totals by
// barangay, risk tier, symptom and date, plus the most recent submissions.
func (s *Server) handleCaseReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.GetCaseReports()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byBarangay := make(map[string]int)
	byRisk := map[string]int{"red": 0, "yellow": 0, "green": 0}
	symptoms := map[string]int{
		"fever": 0, "headache": 0, "muscle_pain": 0, "rash": 0,
		"nausea": 0, "abdominal_pain": 0, "bleeding": 0,
	}
	byDate := make(map[string]int)
	actions := map[string]int{"referred_to_facility": 0, "advised_monitoring": 0, "notified_family": 0}

	for _, rep := range reports {
		byBarangay[rep.Barangay]++
		byDate[rep.ReportedAt.Format("2006-01-02")]++

		if rep.RiskRed {
			byRisk["red"]++
		}
		if rep.RiskYellow {
			byRisk["yellow"]++
		}
		if rep.RiskGreen {
			byRisk["green"]++
		}

		if rep.Fever {
			symptoms["fever"]++
		}
		if rep.Headache {
			symptoms["headache"]++
		}
		if rep.MusclePain {
			symptoms["muscle_pain"]++
		}
		if rep.Rash {
			symptoms["rash"]++
		}
		if rep.Nausea {
			symptoms["nausea"]++
		}
		if rep.AbdominalPain {
			symptoms["abdominal_pain"]++
		}
		if rep.Bleeding {
			symptoms["bleeding"]++
		}

		if rep.ReferredToFacility {
			actions["referred_to_facility"]++
		}
		if rep.AdvisedMonitoring {
			actions["advised_monitoring"]++
		}
		if rep.NotifiedFamily {
			actions["notified_family"]++
		}
	}

	type recentReport struct {
		ID         string    `json:"id"`
		Barangay   string    `json:"barangay"`
		ReportedBy string    `json:"reported_by"`
		ReportedAt time.Time `json:"reported_at"`
		RiskRed    bool      `json:"risk_red"`
	}
	const recentLimit = 10
	recent := make([]recentReport, 0, recentLimit)
	for _, rep := range reports {
		if len(recent) == recentLimit {
			break
		}
		recent = append(recent, recentReport{
			ID:         rep.ID,
			Barangay:   rep.Barangay,
			ReportedBy: rep.ReportedBy,
			ReportedAt: rep.ReportedAt,
			RiskRed:    rep.RiskRed,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":          len(reports),
		"by_barangay":    byBarangay,
		"by_risk":        byRisk,
		"symptom_counts": symptoms,
		"by_date":        byDate,
		"actions":        actions,
		"recent":         recent,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	riskLevel := r.URL.Query().Get("risk_level")
	if riskLevel == "" {
		riskLevel = "Moderate"
	}

	source := "seasonal"
	var tips []string
	if s.insights != nil {
		tips = s.insights.Generate(r.Context(), now, riskLevel)
		source = "llm"
	} else {
		tips = insights.Seasonal(now)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"insights":     tips,
		"generated_by": source,
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}
