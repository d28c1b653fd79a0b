// Package climate derives weekly and monthly climate baselines from the
// historical corpus and estimates climate for future dates from them.
package climate

import (
	"math"
	"sync"

	"github.com/denguess/denguess/internal/models"
)

// Physically plausible ranges for this region. Readings outside are dropped
// before baseline computation, never clamped.
const (
	MinRainfall    = 0.0
	MaxRainfall    = 500.0
	MinTemperature = 20.0
	MaxTemperature = 35.0
	MinHumidity    = 40.0
	MaxHumidity    = 100.0
)

// DefaultClimate is returned when no baseline data is available at all.
var DefaultClimate = models.Climate{Rainfall: 100.0, Temperature: 28.0, Humidity: 75.0}

// Baselines holds mean climate keyed by ISO week-of-year and calendar month,
// each rounded to 2 decimals.
type Baselines struct {
	Weekly  map[int]models.Climate // ISO week 1-53
	Monthly map[int]models.Climate // 1-12
}

// ValidReading reports whether a reading falls inside the plausible ranges.
func ValidReading(r models.ClimateReading) bool {
	return r.Rainfall >= MinRainfall && r.Rainfall <= MaxRainfall &&
		r.Temperature >= MinTemperature && r.Temperature <= MaxTemperature &&
		r.Humidity >= MinHumidity && r.Humidity <= MaxHumidity
}

// FilterValid drops out-of-range readings.
func FilterValid(readings []models.ClimateReading) []models.ClimateReading {
	var valid []models.ClimateReading
	for _, r := range readings {
		if ValidReading(r) {
			valid = append(valid, r)
		}
	}
	return valid
}

// ComputeBaselines filters the readings and computes the weekly and monthly
// mean climate. Returns nil when no valid readings remain.
func ComputeBaselines(readings []models.ClimateReading) *Baselines {
	valid := FilterValid(readings)
	if len(valid) == 0 {
		return nil
	}

	type sums struct {
		rainfall, temperature, humidity float64
		n                               int
	}
	weekly := make(map[int]*sums)
	monthly := make(map[int]*sums)

	add := func(group map[int]*sums, key int, r models.ClimateReading) {
		s, ok := group[key]
		if !ok {
			s = &sums{}
			group[key] = s
		}
		s.rainfall += r.Rainfall
		s.temperature += r.Temperature
		s.humidity += r.Humidity
		s.n++
	}

	for _, r := range valid {
		_, week := r.Date.ISOWeek()
		add(weekly, week, r)
		add(monthly, int(r.Date.Month()), r)
	}

	b := &Baselines{
		Weekly:  make(map[int]models.Climate, len(weekly)),
		Monthly: make(map[int]models.Climate, len(monthly)),
	}
	for week, s := range weekly {
		b.Weekly[week] = meanClimate(s.rainfall, s.temperature, s.humidity, s.n)
	}
	for month, s := range monthly {
		b.Monthly[month] = meanClimate(s.rainfall, s.temperature, s.humidity, s.n)
	}
	return b
}

func meanClimate(rainfall, temperature, humidity float64, n int) models.Climate {
	return models.Climate{
		Rainfall:    round2(rainfall / float64(n)),
		Temperature: round2(temperature / float64(n)),
		Humidity:    round2(humidity / float64(n)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Source provides the historical climate corpus.
type Source interface {
	GetClimateReadings() ([]models.ClimateReading, error)
}

// BaselineCache computes baselines from the source once per process and
// serves cached reads afterwards. A failed or empty load caches nil, so the
// estimator falls back to defaults for the process lifetime.
type BaselineCache struct {
	source    Source
	once      sync.Once
	baselines *Baselines
}

func NewBaselineCache(source Source) *BaselineCache {
	return &BaselineCache{source: source}
}

func (c *BaselineCache) Get() *Baselines {
	c.once.Do(func() {
		if c.source == nil {
			return
		}
		readings, err := c.source.GetClimateReadings()
		if err != nil {
			return
		}
		c.baselines = ComputeBaselines(readings)
	})
	return c.baselines
}
