package climate

import (
	"time"

	"github.com/denguess/denguess/internal/models"
)

// Per-week drift applied to estimated climate for forecast weeks beyond the
// first, so that multi-week forecasts differ even when the underlying
// baseline does not vary. The tier that produced the value decides how strong
// the drift is: weekly baselines drift gently, monthly baselines and
// base-climate fallbacks more.
type drift struct {
	rainfall    float64 // multiplicative, per week
	temperature float64 // additive °C, per week
	humidity    float64 // additive %, per week
}

var (
	weeklyDrift     = drift{rainfall: 0.03, temperature: 0.2, humidity: 0.3}
	monthlyDrift    = drift{rainfall: 0.05, temperature: 0.3, humidity: 0.5}
	noBaselineDrift = drift{rainfall: 0.02, temperature: 0.1, humidity: 0.5}
	fallbackDrift   = drift{rainfall: 0.03, temperature: 0.2, humidity: 0.4}
)

func (d drift) apply(c models.Climate, weekOffset int) models.Climate {
	if weekOffset <= 0 {
		return c
	}
	w := float64(weekOffset)
	return models.Climate{
		Rainfall:    c.Rainfall * (1 + w*d.rainfall),
		Temperature: c.Temperature + w*d.temperature,
		Humidity:    c.Humidity + w*d.humidity,
	}
}

// Estimator imputes climate for a target date from cached baselines.
type Estimator struct {
	cache *BaselineCache
}

func NewEstimator(cache *BaselineCache) *Estimator {
	return &Estimator{cache: cache}
}

// Estimate returns the estimated climate for targetDate. Lookup order:
// weekly baseline, then monthly, then the caller-supplied base climate, then
// the fixed default. weekOffset > 0 applies progressive drift so forecast
// weeks 2-4 are not identical.
func (e *Estimator) Estimate(targetDate time.Time, base *models.Climate, weekOffset int) models.Climate {
	baselines := e.cache.Get()

	if baselines == nil {
		if base != nil {
			return noBaselineDrift.apply(*base, weekOffset)
		}
		return DefaultClimate
	}

	_, week := targetDate.ISOWeek()
	if c, ok := baselines.Weekly[week]; ok {
		return weeklyDrift.apply(c, weekOffset)
	}

	if c, ok := baselines.Monthly[int(targetDate.Month())]; ok {
		return monthlyDrift.apply(c, weekOffset)
	}

	if base != nil {
		return fallbackDrift.apply(*base, weekOffset)
	}
	return DefaultClimate
}

// Clamp bounds an estimated climate to physically sensible values before it
// is fed to the feature builder.
func Clamp(c models.Climate) models.Climate {
	if c.Rainfall < 0 {
		c.Rainfall = 0
	}
	if c.Temperature < MinTemperature {
		c.Temperature = MinTemperature
	}
	if c.Temperature > MaxTemperature {
		c.Temperature = MaxTemperature
	}
	if c.Humidity < MinHumidity {
		c.Humidity = MinHumidity
	}
	if c.Humidity > MaxHumidity {
		c.Humidity = MaxHumidity
	}
	return c
}
