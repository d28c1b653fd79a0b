package ingest

import (
	"encoding/json"

	"github.com/denguess/denguess/internal/climate"
	"github.com/denguess/denguess/internal/models"
)

const (
	FlagRainfallOutOfRange    = "rainfall_out_of_range"
	FlagTemperatureOutOfRange = "temperature_out_of_range"
	FlagHumidityOutOfRange    = "humidity_out_of_range"
)

// ValidateReading flags values outside the plausible local climate envelope.
// Flagged readings are still stored; baselines exclude them later.
func ValidateReading(r models.ClimateReading) []string {
	var flags []string

	if r.Rainfall < climate.MinRainfall || r.Rainfall > climate.MaxRainfall {
		flags = append(flags, FlagRainfallOutOfRange)
	}
	if r.Temperature < climate.MinTemperature || r.Temperature > climate.MaxTemperature {
		flags = append(flags, FlagTemperatureOutOfRange)
	}
	if r.Humidity < climate.MinHumidity || r.Humidity > climate.MaxHumidity {
		flags = append(flags, FlagHumidityOutOfRange)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
