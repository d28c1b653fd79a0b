package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denguess/denguess/internal/models"
)

func TestParseClimateCSV(t *testing.T) {
	csv := strings.Join([]string{
		"date,rainfall,temperature,humidity",
		"2025-01-06,120.5,28.3,80",
		"2025/01/07,0,27.1,75.5",
		"not-a-date,10,28,70",
		"2025-01-08,abc,28,70",
		"2025-01-09,600,28,70",
	}, "\n")

	result, err := ParseClimateCSV(strings.NewReader(csv), "station.csv")
	require.NoError(t, err)

	require.Len(t, result.Readings, 3)
	assert.Equal(t, 2, result.Dropped)
	assert.Equal(t, 1, result.Flagged)

	first := result.Readings[0]
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 120.5, first.Rainfall)
	assert.Equal(t, 28.3, first.Temperature)
	assert.Equal(t, 80.0, first.Humidity)
	assert.Equal(t, "station.csv", first.SourceFile)
}

func TestParseClimateCSV_ColumnOrderAndExtras(t *testing.T) {
	csv := strings.Join([]string{
		"station,humidity,date,temperature,rainfall",
		"PAG-01,82,2025-03-10,29.5,45.2",
	}, "\n")

	result, err := ParseClimateCSV(strings.NewReader(csv), "reordered.csv")
	require.NoError(t, err)
	require.Len(t, result.Readings, 1)
	assert.Equal(t, 45.2, result.Readings[0].Rainfall)
	assert.Equal(t, 82.0, result.Readings[0].Humidity)
}

func TestParseClimateCSV_MissingColumns(t *testing.T) {
	csv := "date,rainfall\n2025-01-06,10"
	_, err := ParseClimateCSV(strings.NewReader(csv), "bad.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
	assert.Contains(t, err.Error(), "humidity")
}

func TestParseDengueCSV(t *testing.T) {
	csv := strings.Join([]string{
		"date,barangay,cases",
		"2025-01-06,santo niño,5",
		"2025-01-06, Zone II ,0",
		"2025-01-06,GPS,-1",
		"2025-01-06,Morales,three",
	}, "\n")

	result, err := ParseDengueCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, result.Cases, 2)
	assert.Equal(t, 2, result.Dropped)
	assert.Equal(t, "Sto. Niño", result.Cases[0].Barangay)
	assert.Equal(t, 5, result.Cases[0].Cases)
	assert.Equal(t, "Zone II", result.Cases[1].Barangay)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseClimateCSV(strings.NewReader(""), "empty.csv")
	require.Error(t, err)

	_, err = ParseDengueCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestValidateReading(t *testing.T) {
	tests := []struct {
		name    string
		reading models.ClimateReading
		want    []string
	}{
		{
			name:    "in range",
			reading: models.ClimateReading{Rainfall: 100, Temperature: 28, Humidity: 75},
			want:    nil,
		},
		{
			name:    "rainfall too high",
			reading: models.ClimateReading{Rainfall: 501, Temperature: 28, Humidity: 75},
			want:    []string{FlagRainfallOutOfRange},
		},
		{
			name:    "everything off",
			reading: models.ClimateReading{Rainfall: -1, Temperature: 19, Humidity: 101},
			want:    []string{FlagRainfallOutOfRange, FlagTemperatureOutOfRange, FlagHumidityOutOfRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateReading(tt.reading))
		})
	}
}

func TestQualityFlagsToJSON(t *testing.T) {
	assert.Equal(t, "", QualityFlagsToJSON(nil))
	assert.Equal(t, `["humidity_out_of_range"]`, QualityFlagsToJSON([]string{FlagHumidityOutOfRange}))
}
