package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "denguess_predictions_total",
			Help: "Total per-week outbreak predictions served",
		},
		[]string{"barangay", "risk"},
	)

	ForecastFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "denguess_forecast_fallbacks_total",
			Help: "Forecast results replaced with fallback records",
		},
		[]string{"scope"},
	)

	PredictLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "denguess_predict_latency_seconds",
			Help:    "Classifier predict_proba latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ClimateRowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "denguess_rows_ingested_total",
			Help: "Rows ingested into the store by kind",
		},
		[]string{"kind"},
	)

	CaseReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "denguess_case_reports_total",
			Help: "Case reports submitted",
		},
		[]string{"barangay"},
	)
)
