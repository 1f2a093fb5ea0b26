package imagery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/geo"
)

func TestSyntheticSamplerProducesVegetatedPixelsInsideAOI(t *testing.T) {
	aoi := testAOI(t)
	req, err := NewRequest(aoi, "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)

	samples, err := NewSyntheticSampler().Sample(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	for _, s := range samples {
		assert.True(t, geo.Contains(aoi, s.Lon, s.Lat))
		assert.Len(t, s.Features, 12)
		assert.True(t, Vegetated(s.Features, req.NDVIThreshold))
	}
}

func TestSyntheticSamplerDeterministic(t *testing.T) {
	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)

	a, err := NewSyntheticSampler().Sample(context.Background(), req)
	require.NoError(t, err)
	b, err := NewSyntheticSampler().Sample(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := NewRequest(testAOI(t), "2023-01-01", "2023-06-30").Build()
	require.NoError(t, err)
	c, err := NewSyntheticSampler().Sample(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSyntheticSamplerRespectsCap(t *testing.T) {
	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").WithMaxPixels(10).Build()
	require.NoError(t, err)

	samples, err := NewSyntheticSampler().Sample(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(samples), 10)
}

func TestSyntheticSamplerKeepsRequestedBands(t *testing.T) {
	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)
	req.Bands = []string{"B8"}
	req.Indices = []IndexSpec{{Name: NDVI, Expression: IndexExpressions[NDVI]}}

	samples, err := NewSyntheticSampler().Sample(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Len(t, s.Features, 2)
		assert.Contains(t, s.Features, "B8")
		assert.Contains(t, s.Features, NDVI)
	}
}
