// Package forecast drives the 4-week outbreak risk forecast: week 0 from
// caller-supplied climate, weeks 1-3 from historical baselines, each week
// pushed through the feature builder and classifier. Failures degrade to
// tagged fallback results instead of aborting the batch.
package forecast

import (
	"fmt"
	"log"
	"time"

	"github.com/denguess/denguess/internal/climate"
	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/metrics"
	"github.com/denguess/denguess/internal/model"
	"github.com/denguess/denguess/internal/models"
)

// Weeks in every forecast.
const Weeks = 4

// Provenance tags where a week's climate values came from.
type Provenance string

const (
	ProvenanceCurrent    Provenance = "current"
	ProvenanceHistorical Provenance = "historical_average"
	ProvenanceFallback   Provenance = "fallback"
)

type WeekResult struct {
	Week        string
	Risk        string
	Probability float64
	Climate     models.Climate
	Source      Provenance
}

// Engine holds the shared, read-only pipeline dependencies. Construct once
// at startup and pass by reference; there is no hidden global state.
type Engine struct {
	builder    *features.Builder
	estimator  *climate.Estimator
	classifier model.Classifier
}

func NewEngine(builder *features.Builder, estimator *climate.Estimator, classifier model.Classifier) *Engine {
	return &Engine{builder: builder, estimator: estimator, classifier: classifier}
}

// Forecast returns exactly 4 week results starting at startDate. A week that
// cannot be processed end to end becomes a fallback record built from the
// caller's base climate; the rest of the batch continues.
func (e *Engine) Forecast(barangay string, startDate time.Time, base models.Climate) []WeekResult {
	results := make([]WeekResult, 0, Weeks)

	for week := 0; week < Weeks; week++ {
		weekStart := startDate.AddDate(0, 0, 7*week)

		result, err := e.forecastWeek(barangay, weekStart, base, week)
		if err != nil {
			log.Printf("forecast: %s week %d: %v", barangay, week, err)
			metrics.ForecastFallbacks.WithLabelValues("week").Inc()
			result = fallbackWeek(weekStart, base)
		}
		results = append(results, result)
	}

	return results
}

func (e *Engine) forecastWeek(barangay string, weekStart time.Time, base models.Climate, week int) (WeekResult, error) {
	if e.classifier == nil {
		return WeekResult{}, fmt.Errorf("no classifier loaded")
	}

	var used models.Climate
	var source Provenance
	if week == 0 {
		used = base
		source = ProvenanceCurrent
	} else {
		used = climate.Clamp(e.estimator.Estimate(weekStart, &base, week))
		source = ProvenanceHistorical
	}

	vector := e.builder.Build(used, barangay, weekStart)

	start := time.Now()
	_, outbreak, err := e.classifier.PredictProba(vector)
	metrics.PredictLatency.Observe(time.Since(start).Seconds())
	if err != nil || outbreak < 0 || outbreak > 1 {
		if err != nil {
			log.Printf("forecast: predict %s week %d: %v", barangay, week, err)
		}
		outbreak = FallbackProbability
	}

	risk := RiskLevel(outbreak)
	metrics.PredictionsTotal.WithLabelValues(barangay, risk).Inc()

	return WeekResult{
		Week:        FormatWeekRange(weekStart),
		Risk:        risk,
		Probability: outbreak,
		Climate:     used,
		Source:      source,
	}, nil
}

// FallbackForecast builds a full 4-week fallback response from the base
// climate alone. Used at the boundary when the whole pipeline cannot run.
func FallbackForecast(startDate time.Time, base models.Climate) []WeekResult {
	metrics.ForecastFallbacks.WithLabelValues("pipeline").Inc()
	results := make([]WeekResult, 0, Weeks)
	for week := 0; week < Weeks; week++ {
		results = append(results, fallbackWeek(startDate.AddDate(0, 0, 7*week), base))
	}
	return results
}

func fallbackWeek(weekStart time.Time, base models.Climate) WeekResult {
	return WeekResult{
		Week:        FormatWeekRange(weekStart),
		Risk:        RiskModerate,
		Probability: FallbackProbability,
		Climate:     base,
		Source:      ProvenanceFallback,
	}
}

// FormatWeekRange renders a 7-day week for display, e.g. "January 06–12" or
// "January 30 – February 05" when the week crosses a month boundary.
func FormatWeekRange(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s–%s", start.Format("January 02"), end.Format("02"))
	}
	return fmt.Sprintf("%s – %s", start.Format("January 02"), end.Format("January 02"))
}
