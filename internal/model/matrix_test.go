package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/domain"
)

func f64(v float64) *float64 { return &v }

func pixel(lon, lat float64, features map[string]*float64) domain.PixelSample {
	return domain.PixelSample{Lon: lon, Lat: lat, Features: features}
}

func TestBuildMatrix_OrdersColumnsAndDropsIncompleteRows(t *testing.T) {
	samples := []domain.PixelSample{
		pixel(1, 1, map[string]*float64{"B8": f64(0.3), "NDVI": f64(0.6)}),
		pixel(2, 2, map[string]*float64{"B8": nil, "NDVI": f64(0.7)}),
		pixel(3, 3, map[string]*float64{"B8": f64(0.2), "NDVI": f64(math.NaN())}),
		pixel(4, 4, map[string]*float64{"B8": f64(0.4), "NDVI": f64(0.8), "extra": f64(1)}),
	}

	m, err := BuildMatrix([]string{"NDVI", "B8"}, samples)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0.6, 0.3}, {0.8, 0.4}}, m.Rows)
	assert.Equal(t, 2, m.Dropped)
	require.Len(t, m.Pixels, 2)
	assert.Equal(t, 1.0, m.Pixels[0].Lon)
	assert.Equal(t, 4.0, m.Pixels[1].Lon)
}

func TestBuildMatrix_MissingColumn(t *testing.T) {
	samples := []domain.PixelSample{
		pixel(1, 1, map[string]*float64{"NDVI": f64(0.6)}),
	}

	_, err := BuildMatrix([]string{"NDVI", "B8"}, samples)
	var se *domain.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"B8"}, se.Missing)
}

func TestBuildMatrix_EmptyInputs(t *testing.T) {
	_, err := BuildMatrix([]string{"NDVI"}, nil)
	var ee *domain.EmptyResultError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "No valid vegetation pixels found", err.Error())

	_, err = BuildMatrix([]string{"NDVI"}, []domain.PixelSample{
		pixel(1, 1, map[string]*float64{"NDVI": nil}),
	})
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "All pixels invalid after filtering", err.Error())
}

func TestRowFromMap(t *testing.T) {
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"B8": 0.31, "NDVI": "0.62", "other": true}`), &body))

	row, err := RowFromMap([]string{"NDVI", "B8"}, body)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.62, 0.31}, row)
}

func TestRowFromMap_MissingKeys(t *testing.T) {
	_, err := RowFromMap([]string{"NDVI", "B8", "B4"}, map[string]any{"NDVI": 0.5})

	var se *domain.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"B4", "B8"}, se.Missing)
	assert.Contains(t, err.Error(), "missing required features")
}

func TestRowFromMap_BadValues(t *testing.T) {
	for _, v := range []any{nil, "abc", []any{1}, map[string]any{}} {
		_, err := RowFromMap([]string{"NDVI"}, map[string]any{"NDVI": v})
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve), "value %v", v)
	}
}
