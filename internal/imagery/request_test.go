package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/domain"
)

func testAOI(t *testing.T) domain.AOI {
	t.Helper()
	aoi, err := domain.ParseAOI([][][]float64{{
		{101.0, 3.0}, {101.001, 3.0}, {101.001, 3.001}, {101.0, 3.001}, {101.0, 3.0},
	}})
	require.NoError(t, err)
	return aoi
}

func TestBuildDefaults(t *testing.T) {
	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)

	assert.Equal(t, DefaultCollection, req.Collection)
	assert.Equal(t, []int{3, 8, 9, 10}, req.MaskedSCL)
	assert.Equal(t, 1.0/10000, req.ReflectanceScale)
	assert.Equal(t, 10.0, req.ScaleM)
	assert.Equal(t, 0.25, req.NDVIThreshold)
	assert.Equal(t, 5000, req.NumPixels)
	assert.Equal(t, "median", req.Reducer)
	assert.True(t, req.Geometries)
	assert.Equal(t,
		[]string{"B2", "B3", "B4", "B8", "B11", "B12", "GNDVI", "VARI", "BSI", "NDBI", "NBR", "NDVI"},
		req.OutputBands())
	assert.Len(t, req.Region[0], 5)
}

func TestBuildOptions(t *testing.T) {
	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-02-01").
		WithScale(20).
		WithNDVIThreshold(0.3).
		WithMaxPixels(100).
		WithSeed(7).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 20.0, req.ScaleM)
	assert.Equal(t, 0.3, req.NDVIThreshold)
	assert.Equal(t, 100, req.NumPixels)
	assert.Equal(t, int64(7), req.Seed)
}

func TestBuildRejectsBadInput(t *testing.T) {
	aoi := testAOI(t)
	cases := map[string]*RequestBuilder{
		"missing start": NewRequest(aoi, "", "2024-01-01"),
		"missing aoi":   NewRequest(domain.AOI{}, "2024-01-01", "2024-02-01"),
		"bad format":    NewRequest(aoi, "01/01/2024", "2024-02-01"),
		"bad end":       NewRequest(aoi, "2024-01-01", "2024-13-01"),
		"reversed":      NewRequest(aoi, "2024-03-01", "2024-02-01"),
		"equal":         NewRequest(aoi, "2024-03-01", "2024-03-01"),
		"zero scale":    NewRequest(aoi, "2024-01-01", "2024-02-01").WithScale(0),
		"zero pixels":   NewRequest(aoi, "2024-01-01", "2024-02-01").WithMaxPixels(0),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build()
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
