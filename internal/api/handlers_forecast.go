package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/denguess/denguess/internal/climate"
	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/forecast"
	"github.com/denguess/denguess/internal/models"
)

type predictRequest struct {
	Barangay    string  `json:"barangay"`
	Date        string  `json:"date"`
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type climateUsed struct {
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Source      string  `json:"source"`
}

type weekPrediction struct {
	Week                string      `json:"week"`
	Risk                string      `json:"risk"`
	Probability         float64     `json:"probability"`
	OutbreakProbability float64     `json:"outbreak_probability"`
	ClimateUsed         climateUsed `json:"climate_used"`
}

type modelInfo struct {
	ModelLoaded bool   `json:"model_loaded"`
	ModelType   string `json:"model_type,omitempty"`
	NumTrees    int    `json:"num_trees,omitempty"`
}

type predictResponse struct {
	Barangay       string           `json:"barangay"`
	WeeklyForecast []weekPrediction `json:"weekly_forecast"`
	ModelInfo      modelInfo        `json:"model_info"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Warning        string           `json:"warning,omitempty"`
}

// validate checks request bounds. Wider than the baseline filter on purpose:
// the service accepts any physically possible input and lets the model judge,
// rejecting only nonsense.
func (p predictRequest) validate() error {
	if strings.TrimSpace(p.Barangay) == "" {
		return fmt.Errorf("barangay is required")
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if p.Rainfall < 0 {
		return fmt.Errorf("rainfall must be >= 0")
	}
	if p.Temperature < 0 || p.Temperature > 50 {
		return fmt.Errorf("temperature must be between 0 and 50")
	}
	if p.Humidity < 0 || p.Humidity > 100 {
		return fmt.Errorf("humidity must be between 0 and 100")
	}
	return nil
}

// runForecast executes the 4-week pipeline for one request. Never fails: an
// unparseable date inside the pipeline degrades to a full fallback forecast.
func (s *Server) runForecast(req predictRequest) predictResponse {
	normalized := features.NormalizeBarangay(req.Barangay)
	resp := predictResponse{
		Barangay:    normalized,
		ModelInfo:   s.modelInfo(),
		GeneratedAt: time.Now().UTC(),
	}
	if !features.KnownBarangay(req.Barangay) {
		resp.Warning = fmt.Sprintf("unrecognized barangay %q, default encoding used", req.Barangay)
	}

	base := models.Climate{
		Rainfall:    req.Rainfall,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
	}

	var weeks []forecast.WeekResult
	start, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		weeks = forecast.FallbackForecast(time.Now().UTC(), base)
	} else {
		weeks = s.engine.Forecast(normalized, start, base)
	}

	resp.WeeklyForecast = make([]weekPrediction, 0, len(weeks))
	for _, wk := range weeks {
		p := round4(wk.Probability)
		resp.WeeklyForecast = append(resp.WeeklyForecast, weekPrediction{
			Week:                wk.Week,
			Risk:                wk.Risk,
			Probability:         p,
			OutbreakProbability: p,
			ClimateUsed: climateUsed{
				Rainfall:    round1(wk.Climate.Rainfall),
				Temperature: round1(wk.Climate.Temperature),
				Humidity:    round1(wk.Climate.Humidity),
				Source:      string(wk.Source),
			},
		})
	}
	return resp
}

func (s *Server) modelInfo() modelInfo {
	if s.forest == nil {
		return modelInfo{}
	}
	return modelInfo{
		ModelLoaded: true,
		ModelType:   s.forest.ModelType(),
		NumTrees:    s.forest.NumTrees(),
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.runForecast(req))
}

// handlePredictBatch runs every request concurrently and preserves input
// order. Invalid items become fallback responses with a warning rather than
// failing the batch.
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var reqs []predictRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body, want an array of requests")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch")
		return
	}
	const maxBatch = 100
	if len(reqs) > maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch too large, max %d", maxBatch))
		return
	}

	results := make([]predictResponse, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req predictRequest) {
			defer wg.Done()
			if err := req.validate(); err != nil {
				base := s.currentClimate()
				resp := s.runForecast(predictRequest{
					Barangay:    req.Barangay,
					Date:        req.Date,
					Rainfall:    base.Rainfall,
					Temperature: base.Temperature,
					Humidity:    base.Humidity,
				})
				resp.Warning = err.Error()
				results[i] = resp
				return
			}
			results[i] = s.runForecast(req)
		}(i, req)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handlePredictAll forecasts every canonical barangay from shared climate
// inputs. The body is optional; missing fields default to today's date and
// the current baseline climate.
func (s *Server) handlePredictAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		Date        string   `json:"date"`
		Rainfall    *float64 `json:"rainfall"`
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date := time.Now().UTC().Format("2006-01-02")
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = req.Date
	}

	base := s.currentClimate()
	if req.Rainfall != nil {
		base.Rainfall = *req.Rainfall
	}
	if req.Temperature != nil {
		base.Temperature = *req.Temperature
	}
	if req.Humidity != nil {
		base.Humidity = *req.Humidity
	}

	results := make([]predictResponse, len(features.Barangays))
	var wg sync.WaitGroup
	for i, barangay := range features.Barangays {
		wg.Add(1)
		go func(i int, barangay string) {
			defer wg.Done()
			results[i] = s.runForecast(predictRequest{
				Barangay:    barangay,
				Date:        date,
				Rainfall:    base.Rainfall,
				Temperature: base.Temperature,
				Humidity:    base.Humidity,
			})
		}(i, barangay)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"date":      date,
		"forecasts": results,
	})
}

// handlePredictWeekly serves GET /predict/weekly/{barangay}: a compact
// week-start-date to risk-level map, with optional start_date and climate
// overrides in the query string.
func (s *Server) handlePredictWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	barangay := strings.TrimPrefix(r.URL.Path, "/predict/weekly/")
	if barangay == "" || strings.Contains(barangay, "/") {
		writeError(w, http.StatusBadRequest, "barangay path segment required")
		return
	}

	start := time.Now().UTC()
	if d := r.URL.Query().Get("start_date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		start = parsed
	}

	base := s.currentClimate()
	var err error
	if base.Rainfall, err = queryFloat(r, "rainfall", base.Rainfall); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if base.Temperature, err = queryFloat(r, "temperature", base.Temperature); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if base.Humidity, err = queryFloat(r, "humidity", base.Humidity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	normalized := features.NormalizeBarangay(barangay)
	weeks := s.engine.Forecast(normalized, start, base)

	predictions := make(map[string]string, len(weeks))
	for i, wk := range weeks {
		predictions[start.AddDate(0, 0, 7*i).Format("2006-01-02")] = wk.Risk
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"barangay":           normalized,
		"weekly_predictions": predictions,
	})
}

// currentClimate is the baseline climate for the current week, falling back
// through the monthly baseline to the fixed default.
func (s *Server) currentClimate() models.Climate {
	now := time.Now().UTC()
	base := climate.DefaultClimate
	if b := s.baselines.Get(); b != nil {
		_, week := now.ISOWeek()
		if c, ok := b.Weekly[week]; ok {
			base = c
		} else if c, ok := b.Monthly[int(now.Month())]; ok {
			base = c
		}
	}
	return base
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
