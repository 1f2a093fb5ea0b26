package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, RoundTo(1.2345, 2))
	assert.Equal(t, 45.0, RoundTo(45.004, 2))
}

func TestStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, StdDev(values, 0), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(values, 1), 1e-12)
	assert.Equal(t, 0.0, StdDev([]float64{3}, 1))
	assert.Equal(t, 0.0, StdDev(nil, 0))
}

func TestMeanMinMax(t *testing.T) {
	values := []float64{10, 30, 20}
	assert.InDelta(t, 20.0, Mean(values), 1e-12)
	lo, hi := MinMax(values)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 30.0, hi)
}
