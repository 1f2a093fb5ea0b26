package imagery

// Bands is one Sentinel-2 L2A pixel: surface reflectance of the six bands
// used by the model plus the scene classification (SCL) class.
type Bands struct {
	B2  float64
	B3  float64
	B4  float64
	B8  float64
	B11 float64
	B12 float64
	SCL int
}

// ReflectanceScale converts L2A digital numbers to reflectance.
const ReflectanceScale = 1.0 / 10000

// SCL classes removed before compositing.
const (
	SCLCloudShadow = 3
	SCLCloudMedium = 8
	SCLCloudHigh   = 9
	SCLSnow        = 10
)

// MaskedSCLClasses lists the scene classes treated as cloud, shadow or snow.
var MaskedSCLClasses = []int{SCLCloudShadow, SCLCloudMedium, SCLCloudHigh, SCLSnow}

// Index names in model vocabulary.
const (
	NDVI  = "NDVI"
	GNDVI = "GNDVI"
	VARI  = "VARI"
	BSI   = "BSI"
	NDBI  = "NDBI"
	NBR   = "NBR"
)

// BandNames are the raw reflectance bands requested from the provider.
var BandNames = []string{"B2", "B3", "B4", "B8", "B11", "B12"}

// IndexNames are the derived indices, in composite band order.
var IndexNames = []string{GNDVI, VARI, BSI, NDBI, NBR, NDVI}

// IndexExpressions documents each index as provider band arithmetic.
var IndexExpressions = map[string]string{
	NDVI:  "(B8 - B4) / (B8 + B4)",
	GNDVI: "(B8 - B3) / (B8 + B3)",
	VARI:  "(B3 - B4) / (B3 + B4 - B2)",
	BSI:   "((B11 + B4) - (B8 + B2)) / ((B11 + B4) + (B8 + B2))",
	NDBI:  "(B11 - B8) / (B11 + B8)",
	NBR:   "(B8 - B12) / (B8 + B12)",
}

// Masked reports whether the pixel's SCL class is cloud, shadow or snow.
func (b Bands) Masked() bool {
	for _, c := range MaskedSCLClasses {
		if b.SCL == c {
			return true
		}
	}
	return false
}

// Scaled returns the bands multiplied by ReflectanceScale.
func (b Bands) Scaled() Bands {
	return Bands{
		B2:  b.B2 * ReflectanceScale,
		B3:  b.B3 * ReflectanceScale,
		B4:  b.B4 * ReflectanceScale,
		B8:  b.B8 * ReflectanceScale,
		B11: b.B11 * ReflectanceScale,
		B12: b.B12 * ReflectanceScale,
		SCL: b.SCL,
	}
}

// Features returns the six bands and six indices keyed by name. An index
// with a zero denominator is nil.
func (b Bands) Features() map[string]*float64 {
	out := map[string]*float64{
		"B2":  value(b.B2),
		"B3":  value(b.B3),
		"B4":  value(b.B4),
		"B8":  value(b.B8),
		"B11": value(b.B11),
		"B12": value(b.B12),
	}
	out[NDVI] = normalizedDifference(b.B8, b.B4)
	out[GNDVI] = normalizedDifference(b.B8, b.B3)
	out[VARI] = ratio(b.B3-b.B4, b.B3+b.B4-b.B2)
	out[BSI] = ratio((b.B11+b.B4)-(b.B8+b.B2), (b.B11+b.B4)+(b.B8+b.B2))
	out[NDBI] = normalizedDifference(b.B11, b.B8)
	out[NBR] = normalizedDifference(b.B8, b.B12)
	return out
}

// Vegetated reports whether NDVI is defined and at or above threshold.
func Vegetated(features map[string]*float64, threshold float64) bool {
	ndvi := features[NDVI]
	return ndvi != nil && *ndvi >= threshold
}

func normalizedDifference(a, b float64) *float64 {
	return ratio(a-b, a+b)
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return value(num / den)
}

func value(v float64) *float64 { return &v }
