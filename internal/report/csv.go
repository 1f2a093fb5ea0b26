package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/carbovista/backend/internal/domain"
)

// Carbon class thresholds in kg per pixel.
const (
	HighCarbonKg   = 60.0
	MediumCarbonKg = 30.0
)

// CarbonClass labels a per-pixel prediction High, Medium or Low.
func CarbonClass(kg float64) string {
	switch {
	case kg >= HighCarbonKg:
		return "High"
	case kg >= MediumCarbonKg:
		return "Medium"
	default:
		return "Low"
	}
}

// CSVHeader is the column row of the pixel table.
var CSVHeader = []string{"lon", "lat", "carbon_kg", "carbon_class"}

// WriteCSV writes a '#'-commented metadata block, a blank line, then the
// per-pixel table. carbon_kg is written at full precision so it always
// agrees with carbon_class.
func WriteCSV(w io.Writer, stats domain.StatsSummary, results []domain.PredictionResult, generated time.Time) error {
	meta := []struct{ key, value string }{
		{"CarboVista Tree Carbon Report", ""},
		{"Analysis ID", stats.AnalysisID},
		{"Location", stats.AOIAddress},
		{"AOI Area (km2)", strconv.FormatFloat(stats.AOIAreaKm2, 'f', 4, 64)},
		{"Analysis Period", stats.StartDate + " to " + stats.EndDate},
		{"Analysed Pixels", strconv.Itoa(stats.NPixels)},
		{"Mean Tree Carbon (kg C)", strconv.FormatFloat(stats.MeanACD, 'f', 2, 64)},
		{"Total Carbon (kg C)", strconv.FormatFloat(stats.TotalCarbon, 'f', 2, 64)},
		{"Total Carbon (t C)", strconv.FormatFloat(stats.TotalCarbonT, 'f', 3, 64)},
		{"CO2e (t)", strconv.FormatFloat(stats.CO2eTonnes, 'f', 3, 64)},
		{"Carbon Value (RM)", strconv.FormatFloat(stats.CarbonValueRM, 'f', 2, 64)},
		{"Confidence", strconv.FormatFloat(stats.ConfidenceScore, 'f', 2, 64)},
		{"Generated", generated.UTC().Format(time.RFC3339)},
	}
	for _, m := range meta {
		line := "# " + m.key
		if m.value != "" {
			line += ": " + m.value
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("report: failed to write csv metadata: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("report: failed to write csv metadata: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("report: failed to write csv header: %w", err)
	}
	for _, r := range results {
		rec := []string{
			strconv.FormatFloat(r.Lon, 'f', 6, 64),
			strconv.FormatFloat(r.Lat, 'f', 6, 64),
			strconv.FormatFloat(r.CarbonKg, 'f', -1, 64),
			CarbonClass(r.CarbonKg),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: failed to flush csv: %w", err)
	}
	return nil
}
