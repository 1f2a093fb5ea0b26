package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/carbovista/backend/internal/domain"
)

// Matrix is a feature matrix in model column order, together with the pixels
// each row came from.
type Matrix struct {
	Rows    [][]float64
	Pixels  []domain.PixelSample
	Dropped int
}

// BuildMatrix selects columns from samples in the given order. A column that
// no sample carries is a SchemaError. Rows with any missing or non-finite
// value are dropped and only counted.
func BuildMatrix(columns []string, samples []domain.PixelSample) (Matrix, error) {
	if len(samples) == 0 {
		return Matrix{}, domain.NewEmptyResultError("No valid vegetation pixels found")
	}

	var missing []string
	for _, col := range columns {
		found := false
		for i := range samples {
			if _, ok := samples[i].Features[col]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Matrix{}, &domain.SchemaError{Missing: missing}
	}

	m := Matrix{
		Rows:   make([][]float64, 0, len(samples)),
		Pixels: make([]domain.PixelSample, 0, len(samples)),
	}
	for _, s := range samples {
		row, ok := selectRow(columns, s.Features)
		if !ok {
			m.Dropped++
			continue
		}
		m.Rows = append(m.Rows, row)
		m.Pixels = append(m.Pixels, s)
	}

	if len(m.Rows) == 0 {
		return m, domain.NewEmptyResultError("All pixels invalid after filtering")
	}
	return m, nil
}

func selectRow(columns []string, features map[string]*float64) ([]float64, bool) {
	row := make([]float64, len(columns))
	for j, col := range columns {
		v := features[col]
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, false
		}
		row[j] = *v
	}
	return row, true
}

// RowFromMap builds one feature row from a flat name→value object such as a
// decoded JSON body.
func RowFromMap(columns []string, values map[string]any) ([]float64, error) {
	var missing []string
	for _, col := range columns {
		if _, ok := values[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &domain.SchemaError{Missing: missing}
	}

	row := make([]float64, len(columns))
	for j, col := range columns {
		v, err := toFloat(values[col])
		if err != nil {
			return nil, domain.NewValidationError("feature %q: %v", col, err)
		}
		row[j] = v
	}
	return row, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value is not finite")
	}
	return f, nil
}
