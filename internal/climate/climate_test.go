package climate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denguess/denguess/internal/models"
)

func reading(date time.Time, rainfall, temperature, humidity float64) models.ClimateReading {
	return models.ClimateReading{Date: date, Rainfall: rainfall, Temperature: temperature, Humidity: humidity}
}

func TestFilterValid(t *testing.T) {
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		r    models.ClimateReading
		keep bool
	}{
		{"in range", reading(date, 100, 28, 75), true},
		{"rainfall low bound", reading(date, 0, 28, 75), true},
		{"rainfall high bound", reading(date, 500, 28, 75), true},
		{"rainfall too high", reading(date, 500.1, 28, 75), false},
		{"negative rainfall", reading(date, -1, 28, 75), false},
		{"temperature too low", reading(date, 100, 19.9, 75), false},
		{"temperature too high", reading(date, 100, 35.1, 75), false},
		{"humidity too low", reading(date, 100, 28, 39.9), false},
		{"humidity too high", reading(date, 100, 28, 100.1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterValid([]models.ClimateReading{tt.r})
			if tt.keep {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestComputeBaselines_MeansRoundedTo2Decimals(t *testing.T) {
	// Two readings in the same ISO week and month.
	d1 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	b := ComputeBaselines([]models.ClimateReading{
		reading(d1, 100, 28.1, 75),
		reading(d2, 101, 28.2, 76.005),
	})
	require.NotNil(t, b)

	_, week := d1.ISOWeek()
	weekly, ok := b.Weekly[week]
	require.True(t, ok)
	assert.Equal(t, 100.5, weekly.Rainfall)
	assert.Equal(t, 28.15, weekly.Temperature)
	assert.Equal(t, 75.5, weekly.Humidity)

	monthly, ok := b.Monthly[1]
	require.True(t, ok)
	assert.Equal(t, 100.5, monthly.Rainfall)
}

func TestComputeBaselines_AllInvalidReturnsNil(t *testing.T) {
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	b := ComputeBaselines([]models.ClimateReading{
		reading(date, 9999, 28, 75),
		reading(date, 100, 10, 75),
	})
	assert.Nil(t, b)
}

func TestComputeBaselines_Empty(t *testing.T) {
	assert.Nil(t, ComputeBaselines(nil))
}

type fakeSource struct {
	readings []models.ClimateReading
	err      error
	calls    int
}

func (f *fakeSource) GetClimateReadings() ([]models.ClimateReading, error) {
	f.calls++
	return f.readings, f.err
}

func cacheFor(readings ...models.ClimateReading) *BaselineCache {
	return NewBaselineCache(&fakeSource{readings: readings})
}

func TestBaselineCache_ComputesOnce(t *testing.T) {
	src := &fakeSource{readings: []models.ClimateReading{
		reading(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 100, 28, 75),
	}}
	cache := NewBaselineCache(src)

	first := cache.Get()
	second := cache.Get()
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestBaselineCache_SourceErrorCachesNil(t *testing.T) {
	src := &fakeSource{err: errors.New("no such table")}
	cache := NewBaselineCache(src)

	assert.Nil(t, cache.Get())
	assert.Nil(t, cache.Get())
	assert.Equal(t, 1, src.calls)
}

func TestEstimate_WeeklyHitNoDrift(t *testing.T) {
	target := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	e := NewEstimator(cacheFor(reading(target, 120, 29, 80)))

	got := e.Estimate(target, nil, 0)
	assert.Equal(t, models.Climate{Rainfall: 120, Temperature: 29, Humidity: 80}, got)
}

func TestEstimate_WeeklyHitWithDrift(t *testing.T) {
	target := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	e := NewEstimator(cacheFor(reading(target, 100, 28, 75)))

	for _, offset := range []int{1, 2, 3} {
		w := float64(offset)
		got := e.Estimate(target, nil, offset)
		assert.InDelta(t, 100*(1+0.03*w), got.Rainfall, 1e-9, "offset %d", offset)
		assert.InDelta(t, 28+0.2*w, got.Temperature, 1e-9, "offset %d", offset)
		assert.InDelta(t, 75+0.3*w, got.Humidity, 1e-9, "offset %d", offset)
	}
}

func TestEstimate_MonthlyFallback(t *testing.T) {
	// Baselines cover ISO week 2 and January. Target is a different week of
	// the same month, so the monthly tier must serve it.
	e := NewEstimator(cacheFor(reading(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 100, 28, 75)))
	target := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	got := e.Estimate(target, nil, 0)
	assert.Equal(t, models.Climate{Rainfall: 100, Temperature: 28, Humidity: 75}, got)

	drifted := e.Estimate(target, nil, 2)
	assert.InDelta(t, 100*(1+0.05*2), drifted.Rainfall, 1e-9)
	assert.InDelta(t, 28+0.3*2, drifted.Temperature, 1e-9)
	assert.InDelta(t, 75+0.5*2, drifted.Humidity, 1e-9)
}

func TestEstimate_NoTierHitUsesBaseClimate(t *testing.T) {
	// Baselines exist but cover neither the target week nor month.
	e := NewEstimator(cacheFor(reading(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 100, 28, 75)))
	target := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	base := &models.Climate{Rainfall: 80, Temperature: 27, Humidity: 70}

	got := e.Estimate(target, base, 2)
	assert.InDelta(t, 80*(1+0.03*2), got.Rainfall, 1e-9)
	assert.InDelta(t, 27+0.2*2, got.Temperature, 1e-9)
	assert.InDelta(t, 70+0.4*2, got.Humidity, 1e-9)
}

func TestEstimate_NoBaselines(t *testing.T) {
	e := NewEstimator(NewBaselineCache(&fakeSource{}))
	target := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("base climate with gentle drift", func(t *testing.T) {
		base := &models.Climate{Rainfall: 80, Temperature: 27, Humidity: 70}
		got := e.Estimate(target, base, 3)
		assert.InDelta(t, 80*(1+0.02*3), got.Rainfall, 1e-9)
		assert.InDelta(t, 27+0.1*3, got.Temperature, 1e-9)
		assert.InDelta(t, 70+0.5*3, got.Humidity, 1e-9)
	})

	t.Run("no base climate returns default", func(t *testing.T) {
		got := e.Estimate(target, nil, 3)
		assert.Equal(t, DefaultClimate, got)
	})
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   models.Climate
		want models.Climate
	}{
		{"in range untouched", models.Climate{Rainfall: 100, Temperature: 28, Humidity: 75}, models.Climate{Rainfall: 100, Temperature: 28, Humidity: 75}},
		{"negative rainfall", models.Climate{Rainfall: -5, Temperature: 28, Humidity: 75}, models.Climate{Rainfall: 0, Temperature: 28, Humidity: 75}},
		{"cold", models.Climate{Rainfall: 100, Temperature: 12, Humidity: 75}, models.Climate{Rainfall: 100, Temperature: 20, Humidity: 75}},
		{"hot", models.Climate{Rainfall: 100, Temperature: 40, Humidity: 75}, models.Climate{Rainfall: 100, Temperature: 35, Humidity: 75}},
		{"dry", models.Climate{Rainfall: 100, Temperature: 28, Humidity: 10}, models.Climate{Rainfall: 100, Temperature: 28, Humidity: 40}},
		{"saturated", models.Climate{Rainfall: 100, Temperature: 28, Humidity: 120}, models.Climate{Rainfall: 100, Temperature: 28, Humidity: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.in))
		})
	}
}
