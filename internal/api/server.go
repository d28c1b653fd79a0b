// Package api exposes the forecasting pipeline over HTTP: prediction
// endpoints for the dashboard, CSV uploads, community case reports and
// operational surfaces.
package api

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/denguess/denguess/internal/climate"
	"github.com/denguess/denguess/internal/forecast"
	"github.com/denguess/denguess/internal/insights"
	"github.com/denguess/denguess/internal/model"
	"github.com/denguess/denguess/internal/store"
)

type Server struct {
	store     *store.Store
	engine    *forecast.Engine
	forest    *model.Forest
	baselines *climate.BaselineCache
	insights  *insights.Generator
	port      string
}

// NewServer wires the HTTP layer. forest may be nil when no model artifact is
// loaded; prediction endpoints then serve fallback forecasts. The LLM insight
// generator is optional and disabled without an API key.
func NewServer(st *store.Store, engine *forecast.Engine, forest *model.Forest, baselines *climate.BaselineCache, port string) *Server {
	var gen *insights.Generator
	if g, err := insights.NewGenerator(); err != nil {
		log.Printf("LLM insights disabled: %v", err)
	} else {
		gen = g
	}

	return &Server{
		store:     st,
		engine:    engine,
		forest:    forest,
		baselines: baselines,
		insights:  gen,
		port:      port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/barangays", s.handleBarangays)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/predict/batch", s.handlePredictBatch)
	mux.HandleFunc("/predict/all-barangays", s.handlePredictAll)
	mux.HandleFunc("/predict/weekly/", s.handlePredictWeekly)
	mux.HandleFunc("/upload/climate", s.handleUploadClimate)
	mux.HandleFunc("/upload/dengue", s.handleUploadDengue)
	mux.HandleFunc("/uploads", s.handleUploads)
	mux.HandleFunc("/report-case", s.handleReportCase)
	mux.HandleFunc("/case-reports", s.handleCaseReports)
	mux.HandleFunc("/insights", s.handleInsights)
	mux.Handle("/metrics", promhttp.Handler())

	// The dashboard is served from a different origin.
	return cors.AllowAll().Handler(mux)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
