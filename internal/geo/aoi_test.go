package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/domain"
)

func square(lon, lat, size float64) domain.AOI {
	aoi, err := domain.ParseAOI([][][]float64{{
		{lon, lat},
		{lon + size, lat},
		{lon + size, lat + size},
		{lon, lat + size},
		{lon, lat},
	}})
	if err != nil {
		panic(err)
	}
	return aoi
}

func TestExtentAreaKm2_MatchesFormula(t *testing.T) {
	aoi := square(101.0, 2.9995, 0.001)

	ext, err := ExtentOf(aoi)
	require.NoError(t, err)

	meanLat := (ext.MinLat + ext.MaxLat) / 2
	expected := (0.001 * 111320) * (0.001 * 111320 * math.Cos(meanLat*math.Pi/180)) / 1e6
	assert.InDelta(t, expected, ext.AreaKm2(), 1e-12)
	assert.InDelta(t, 0.012375, ext.AreaKm2(), 1e-5)
}

func TestExtentCenter(t *testing.T) {
	ext := Extent{MinLon: 101.684, MinLat: 3.134, MaxLon: 101.690, MaxLat: 3.138}
	lon, lat := ext.Center()
	assert.InDelta(t, 101.687, lon, 1e-9)
	assert.InDelta(t, 3.136, lat, 1e-9)
}

func TestValidate_AcceptsSmallAOI(t *testing.T) {
	area, err := Validate(square(101.684, 3.134, 0.004))
	require.NoError(t, err)
	assert.Less(t, area, MaxAOIAreaKm2)
}

func TestValidate_RejectsLargeAOI(t *testing.T) {
	// ~0.02 deg square near the equator is roughly 4.96 km²
	area, err := Validate(square(101.6, 3.1, 0.02))
	require.Error(t, err)
	assert.Greater(t, area, MaxAOIAreaKm2)

	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), "AOI too large")
}

func TestCheckDensity(t *testing.T) {
	assert.NoError(t, CheckDensity(0.08))
	assert.NoError(t, CheckDensity(0.8))

	err := CheckDensity(0.81)
	var de *domain.DensityError
	require.True(t, errors.As(err, &de))
	assert.InDelta(t, 8100, de.EstimatedPixels, 1e-6)
}

func TestEstimatePixels(t *testing.T) {
	assert.InDelta(t, 10000, EstimatePixels(1), 1e-9)
	assert.InDelta(t, 0, EstimatePixels(0), 1e-9)
}

func TestContains(t *testing.T) {
	aoi := square(0, 0, 1)
	assert.True(t, Contains(aoi, 0.5, 0.5))
	assert.False(t, Contains(aoi, 1.5, 0.5))
	assert.False(t, Contains(aoi, -0.1, 0.5))
}
