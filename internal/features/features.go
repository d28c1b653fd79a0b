// Package features expands a climate triple, barangay and date into the
// engineered feature vector the outbreak classifier was trained on. Column
// identity and order are part of the model contract: the builder's output is
// reindexed against the feature-name list persisted with the model, and any
// training-time feature it cannot derive (the location case-history columns)
// is zero-filled.
package features

import (
	"math"
	"time"

	"github.com/denguess/denguess/internal/models"
)

// SchemaVersion identifies the engineered feature schema. Model artifacts
// record the version they were trained against; loading fails on mismatch so
// a schema drift cannot silently zero-fill its way into production.
const SchemaVersion = 3

const eps = 1e-6

// Vector is an ordered, named numeric record.
type Vector struct {
	names  []string
	values []float64
	index  map[string]int
}

func newVector(capacity int) *Vector {
	return &Vector{
		names:  make([]string, 0, capacity),
		values: make([]float64, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

func (v *Vector) set(name string, value float64) {
	if i, ok := v.index[name]; ok {
		v.values[i] = value
		return
	}
	v.index[name] = len(v.names)
	v.names = append(v.names, name)
	v.values = append(v.values, value)
}

func (v *Vector) Get(name string) (float64, bool) {
	i, ok := v.index[name]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

func (v *Vector) Names() []string   { return v.names }
func (v *Vector) Values() []float64 { return v.values }
func (v *Vector) Len() int          { return len(v.names) }

// Reindex returns a vector with exactly the given columns in the given
// order. Columns the source vector lacks are filled with 0.
func (v *Vector) Reindex(names []string) *Vector {
	out := newVector(len(names))
	for _, name := range names {
		value, _ := v.Get(name)
		out.set(name, value)
	}
	return out
}

// Builder derives the full engineered feature vector.
type Builder struct {
	encoder      *Encoder
	featureNames []string
}

// NewBuilder wires a barangay encoder and the persisted feature-name list.
// A nil featureNames keeps the build order as-is (training exports always
// carry the list, so this only happens in tests and ad-hoc tooling).
func NewBuilder(encoder *Encoder, featureNames []string) *Builder {
	if encoder == nil {
		encoder = FallbackEncoder()
	}
	return &Builder{encoder: encoder, featureNames: featureNames}
}

// Build expands the inputs into the engineered schema and reindexes the
// result against the persisted feature-name list.
func (b *Builder) Build(c models.Climate, barangay string, date time.Time) *Vector {
	rainfall, temperature, humidity := c.Rainfall, c.Temperature, c.Humidity

	code, _ := b.encoder.Encode(barangay)

	v := newVector(40)
	v.set("rainfall", rainfall)
	v.set("temperature", temperature)
	v.set("humidity", humidity)
	v.set("barangay_encoded", float64(code))

	month := int(date.Month())
	dayOfYear := date.YearDay()
	// Not calendar quarters: the model was trained against this exact
	// formula, so it stays.
	quarter := dayOfYear/91 + 1

	v.set("month", float64(month))
	v.set("quarter", float64(quarter))
	v.set("day_of_year", float64(dayOfYear))
	v.set("month_sin", math.Sin(2*math.Pi*float64(month)/12))
	v.set("month_cos", math.Cos(2*math.Pi*float64(month)/12))
	v.set("day_of_year_sin", math.Sin(2*math.Pi*float64(dayOfYear)/365))
	v.set("day_of_year_cos", math.Cos(2*math.Pi*float64(dayOfYear)/365))

	v.set("temp_rainfall_interaction", temperature*rainfall)
	v.set("temp_humidity_interaction", temperature*humidity)
	v.set("rainfall_humidity_interaction", rainfall*humidity)
	v.set("temp_rainfall_humidity_interaction", temperature*rainfall*humidity)

	v.set("rainfall_squared", rainfall*rainfall)
	v.set("temperature_squared", temperature*temperature)
	v.set("humidity_squared", humidity*humidity)
	v.set("rainfall_sqrt", math.Sqrt(rainfall+eps))
	v.set("temperature_sqrt", math.Sqrt(temperature+eps))

	v.set("rainfall_temp_ratio", rainfall/(temperature+eps))
	v.set("humidity_temp_ratio", humidity/(temperature+eps))
	v.set("rainfall_humidity_ratio", rainfall/(humidity+eps))

	v.set("mosquito_breeding_index", (temperature-20)*(humidity/100)*(rainfall/100))
	v.set("dengue_risk_index", (temperature/30)*(humidity/80)*math.Log1p(rainfall/10))

	v.set("is_rainy_season", boolFeature(month >= 6 && month <= 11))
	v.set("is_dry_season", boolFeature(month == 12 || month <= 5))
	v.set("is_peak_season", boolFeature(month >= 7 && month <= 9))

	v.set("temp_optimal", boolFeature(temperature >= 25 && temperature <= 30))
	v.set("temp_high", boolFeature(temperature > 30))
	v.set("temp_low", boolFeature(temperature < 25))

	v.set("humidity_optimal", boolFeature(humidity >= 60 && humidity <= 80))
	v.set("humidity_high", boolFeature(humidity > 80))
	v.set("humidity_low", boolFeature(humidity < 60))

	v.set("rainfall_high", boolFeature(rainfall > 100))
	v.set("rainfall_moderate", boolFeature(rainfall >= 50 && rainfall <= 100))
	v.set("rainfall_low", boolFeature(rainfall < 50))

	v.set("high_risk_combination", boolFeature(
		temperature >= 25 && temperature <= 30 &&
			humidity >= 60 && humidity <= 80 &&
			rainfall > 100))

	if b.featureNames != nil {
		return v.Reindex(b.featureNames)
	}
	return v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
