package service

import (
	"math"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/geo"
	"github.com/carbovista/backend/pkg/utils"
)

const (
	// CO2PerCarbon converts a mass of carbon to CO2-equivalent.
	CO2PerCarbon = 3.67

	// DefaultCarbonPriceRM is the reference price per tonne CO2e.
	DefaultCarbonPriceRM = 50.0
)

// Confidence is exp(-std/mean) clamped to [0, 1], or 0 when mean <= 0.
func Confidence(mean, std float64) float64 {
	if mean <= 0 {
		return 0
	}
	return utils.Clamp(math.Exp(-std/mean), 0, 1)
}

// Aggregate turns per-pixel predictions into AOI totals. The sample mean is
// extrapolated over every 10 m pixel of the AOI bounding box, not summed
// over the sampled pixels only. Vegetated area is taken to be the whole AOI.
//
// Derived figures are left unrounded so total, CO2e and value stay exact
// functions of area and mean; renderers round for display.
func Aggregate(results []domain.PredictionResult, areaKm2, pricePerTonne float64) domain.StatsSummary {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.CarbonKg
	}

	mean := utils.Mean(values)
	std := utils.StdDev(values, 1)
	lo, hi := utils.MinMax(values)

	areaHa := areaKm2 * 100
	estimated := areaHa * 10000 / geo.PixelAreaM2
	total := mean * estimated
	co2e := total * CO2PerCarbon / 1000

	density := 0.0
	if areaHa > 0 {
		density = total / areaHa
	}

	return domain.StatsSummary{
		NPixels:         len(results),
		MeanACD:         mean,
		MinACD:          lo,
		MaxACD:          hi,
		StdACD:          std,
		AOIAreaKm2:      areaKm2,
		AreaHa:          areaHa,
		EstimatedPixels: estimated,
		TotalCarbon:     total,
		TotalCarbonT:    total / 1000,
		CarbonDensity:   density,
		CO2eTonnes:      co2e,
		CarbonValueRM:   co2e * pricePerTonne,
		ConfidenceScore: utils.RoundTo(Confidence(mean, std), 2),
	}
}
