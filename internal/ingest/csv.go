// Package ingest parses climate and dengue-case CSVs into store records,
// from uploads or from the weather bureau's FTP drop.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/denguess/denguess/internal/features"
	"github.com/denguess/denguess/internal/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ClimateResult is the outcome of parsing a climate CSV. Rows with
// unparseable dates or numbers are dropped and counted; out-of-range values
// are kept (the normalizer filters them at baseline time) but flagged.
type ClimateResult struct {
	Readings []models.ClimateReading
	Dropped  int
	Flagged  int
}

// ParseClimateCSV reads rows with date, rainfall, temperature and humidity
// columns (any order, extra columns ignored).
func ParseClimateCSV(r io.Reader, sourceFile string) (*ClimateResult, error) {
	rows, idx, err := readCSV(r, []string{"date", "rainfall", "temperature", "humidity"})
	if err != nil {
		return nil, err
	}

	result := &ClimateResult{}
	for _, row := range rows {
		date, err := parseDate(row[idx["date"]])
		if err != nil {
			result.Dropped++
			continue
		}
		rainfall, err1 := strconv.ParseFloat(strings.TrimSpace(row[idx["rainfall"]]), 64)
		temperature, err2 := strconv.ParseFloat(strings.TrimSpace(row[idx["temperature"]]), 64)
		humidity, err3 := strconv.ParseFloat(strings.TrimSpace(row[idx["humidity"]]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			result.Dropped++
			continue
		}

		reading := models.ClimateReading{
			Date:        date,
			Rainfall:    rainfall,
			Temperature: temperature,
			Humidity:    humidity,
			SourceFile:  sourceFile,
		}
		if len(ValidateReading(reading)) > 0 {
			result.Flagged++
		}
		result.Readings = append(result.Readings, reading)
	}
	return result, nil
}

// DengueResult is the outcome of parsing a dengue-case CSV.
type DengueResult struct {
	Cases   []models.DengueCase
	Dropped int
}

// ParseDengueCSV reads rows with date, barangay and cases columns. Barangay
// names are normalized to their canonical spelling.
func ParseDengueCSV(r io.Reader) (*DengueResult, error) {
	rows, idx, err := readCSV(r, []string{"date", "barangay", "cases"})
	if err != nil {
		return nil, err
	}

	result := &DengueResult{}
	for _, row := range rows {
		date, err := parseDate(row[idx["date"]])
		if err != nil {
			result.Dropped++
			continue
		}
		cases, err := strconv.Atoi(strings.TrimSpace(row[idx["cases"]]))
		if err != nil || cases < 0 {
			result.Dropped++
			continue
		}
		result.Cases = append(result.Cases, models.DengueCase{
			Date:     date,
			Barangay: features.NormalizeBarangay(row[idx["barangay"]]),
			Cases:    cases,
		})
	}
	return result, nil
}

// readCSV reads all records and maps the required column names to indices.
func readCSV(r io.Reader, required []string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv")
	}

	idx := make(map[string]int)
	for i, name := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("csv missing columns: %s", strings.Join(missing, ", "))
	}

	var rows [][]string
	for _, row := range records[1:] {
		if len(row) <= maxIndex(idx, required) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, idx, nil
}

func maxIndex(idx map[string]int, required []string) int {
	max := 0
	for _, name := range required {
		if idx[name] > max {
			max = idx[name]
		}
	}
	return max
}
