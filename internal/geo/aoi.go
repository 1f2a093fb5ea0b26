// Package geo holds the AOI geometry checks that run before any remote
// imagery call: bounding-box area, the area ceiling and the pixel density
// estimate.
package geo

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"

	"github.com/carbovista/backend/internal/domain"
)

const (
	// MetersPerDegree is the planar approximation of one degree of latitude.
	MetersPerDegree = 111320.0

	// MaxAOIAreaKm2 is the bounding-box area ceiling for a single request.
	MaxAOIAreaKm2 = 2.0

	// PixelAreaM2 is the footprint of one 10m x 10m Sentinel-2 pixel.
	PixelAreaM2 = 100.0

	// MaxEstimatedPixels bounds the expected pixel count of a sampling call.
	MaxEstimatedPixels = 8000.0
)

// Extent is an axis-aligned lon/lat bounding box.
type Extent struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Center returns the bbox midpoint as (lon, lat).
func (e Extent) Center() (float64, float64) {
	return (e.MinLon + e.MaxLon) / 2, (e.MinLat + e.MaxLat) / 2
}

// AreaKm2 is the planar bbox area: the latitude extent and the
// cos(mean latitude) scaled longitude extent converted to meters, multiplied,
// then divided by 1e6.
func (e Extent) AreaKm2() float64 {
	meanLat := (e.MinLat + e.MaxLat) / 2
	heightM := (e.MaxLat - e.MinLat) * MetersPerDegree
	widthM := (e.MaxLon - e.MinLon) * MetersPerDegree * math.Cos(meanLat*math.Pi/180)
	return math.Abs(heightM*widthM) / 1e6
}

// Polygon converts the AOI ring into a go-geom polygon.
func Polygon(aoi domain.AOI) (*geom.Polygon, error) {
	ring := make([]geom.Coord, len(aoi.Ring))
	for i, p := range aoi.Ring {
		ring[i] = geom.Coord{p[0], p[1]}
	}
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
	if err != nil {
		return nil, fmt.Errorf("geo: invalid AOI ring: %w", err)
	}
	return poly, nil
}

// ExtentOf returns the bounding box of the AOI.
func ExtentOf(aoi domain.AOI) (Extent, error) {
	poly, err := Polygon(aoi)
	if err != nil {
		return Extent{}, err
	}
	b := poly.Bounds()
	return Extent{
		MinLon: b.Min(0),
		MinLat: b.Min(1),
		MaxLon: b.Max(0),
		MaxLat: b.Max(1),
	}, nil
}

// Validate checks the AOI against the area ceiling and returns its bbox area.
func Validate(aoi domain.AOI) (float64, error) {
	ext, err := ExtentOf(aoi)
	if err != nil {
		return 0, domain.NewValidationError("%v", err)
	}
	area := ext.AreaKm2()
	if area > MaxAOIAreaKm2 {
		return area, domain.NewValidationError("AOI too large (%.2f km²). Max is %.1f km².", area, MaxAOIAreaKm2)
	}
	return area, nil
}

// EstimatePixels is the expected number of pixels covering areaKm2.
func EstimatePixels(areaKm2 float64) float64 {
	return areaKm2 * 1e6 / PixelAreaM2
}

// CheckDensity fails with a DensityError when the AOI would need more pixels
// than a single sampling call can safely process. The estimate is advisory:
// the remote sampler caps its own output.
func CheckDensity(areaKm2 float64) error {
	est := EstimatePixels(areaKm2)
	if est > MaxEstimatedPixels {
		return &domain.DensityError{EstimatedPixels: est, Limit: MaxEstimatedPixels}
	}
	return nil
}

// Contains reports whether (lon, lat) falls inside the AOI ring (even-odd rule).
func Contains(aoi domain.AOI, lon, lat float64) bool {
	ring := aoi.Ring
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
