package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsMasked(t *testing.T) {
	for _, scl := range []int{3, 8, 9, 10} {
		assert.True(t, Bands{SCL: scl}.Masked(), "scl %d", scl)
	}
	for _, scl := range []int{0, 4, 5, 6, 7, 11} {
		assert.False(t, Bands{SCL: scl}.Masked(), "scl %d", scl)
	}
}

func TestBandsScaled(t *testing.T) {
	b := Bands{B2: 1000, B3: 2000, B4: 3000, B8: 4000, B11: 5000, B12: 6000, SCL: 4}.Scaled()
	assert.InDelta(t, 0.1, b.B2, 1e-12)
	assert.InDelta(t, 0.4, b.B8, 1e-12)
	assert.InDelta(t, 0.6, b.B12, 1e-12)
	assert.Equal(t, 4, b.SCL)
}

func TestBandsFeatures(t *testing.T) {
	b := Bands{B2: 0.05, B3: 0.08, B4: 0.06, B8: 0.4, B11: 0.2, B12: 0.1}
	f := b.Features()
	require.Len(t, f, 12)

	for name, want := range map[string]float64{
		"B2":  0.05,
		"B8":  0.4,
		NDVI:  (0.4 - 0.06) / (0.4 + 0.06),
		GNDVI: (0.4 - 0.08) / (0.4 + 0.08),
		VARI:  (0.08 - 0.06) / (0.08 + 0.06 - 0.05),
		BSI:   ((0.2 + 0.06) - (0.4 + 0.05)) / ((0.2 + 0.06) + (0.4 + 0.05)),
		NDBI:  (0.2 - 0.4) / (0.2 + 0.4),
		NBR:   (0.4 - 0.1) / (0.4 + 0.1),
	} {
		require.NotNil(t, f[name], name)
		assert.InDelta(t, want, *f[name], 1e-12, name)
	}
}

func TestBandsFeaturesZeroDenominator(t *testing.T) {
	f := Bands{}.Features()
	assert.Nil(t, f[NDVI])
	assert.Nil(t, f[VARI])
	require.NotNil(t, f["B4"])
	assert.Equal(t, 0.0, *f["B4"])
}

func TestVegetated(t *testing.T) {
	v := func(x float64) *float64 { return &x }
	assert.True(t, Vegetated(map[string]*float64{NDVI: v(0.25)}, 0.25))
	assert.False(t, Vegetated(map[string]*float64{NDVI: v(0.2499)}, 0.25))
	assert.False(t, Vegetated(map[string]*float64{NDVI: nil}, 0.25))
	assert.False(t, Vegetated(map[string]*float64{}, 0.25))
}
