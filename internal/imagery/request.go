package imagery

import (
	"time"

	"github.com/carbovista/backend/internal/domain"
)

// Defaults for a Sentinel-2 sampling request.
const (
	DefaultCollection    = "COPERNICUS/S2_SR_HARMONIZED"
	DefaultScaleM        = 10.0
	DefaultNDVIThreshold = 0.25
	DefaultMaxPixels     = 5000
	DefaultCRS           = "EPSG:4326"
)

// IndexSpec is a named band-arithmetic expression.
type IndexSpec struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// SampleRequest fully describes one bounded pixel sample: the source
// collection, filters, per-image transforms, the composite and the sample
// size. It is a plain value; nothing is evaluated until a Sampler runs it.
type SampleRequest struct {
	Collection       string        `json:"collection"`
	Region           [][][]float64 `json:"region"`
	StartDate        string        `json:"start_date"`
	EndDate          string        `json:"end_date"`
	MaskedSCL        []int         `json:"masked_scl"`
	ReflectanceScale float64       `json:"reflectance_scale"`
	Bands            []string      `json:"bands"`
	Indices          []IndexSpec   `json:"indices"`
	NDVIThreshold    float64       `json:"ndvi_threshold"`
	Reducer          string        `json:"reducer"`
	CRS              string        `json:"crs"`
	ScaleM           float64       `json:"scale_m"`
	NumPixels        int           `json:"num_pixels"`
	Seed             int64         `json:"seed,omitempty"`
	Geometries       bool          `json:"geometries"`
}

// OutputBands is the composite band selection, bands first then indices.
func (r SampleRequest) OutputBands() []string {
	out := append([]string(nil), r.Bands...)
	for _, idx := range r.Indices {
		out = append(out, idx.Name)
	}
	return out
}

// RequestBuilder assembles a SampleRequest.
type RequestBuilder struct {
	aoi       domain.AOI
	start     string
	end       string
	scale     float64
	threshold float64
	maxPixels int
	seed      int64
}

// NewRequest starts a request for aoi over [start, end).
func NewRequest(aoi domain.AOI, start, end string) *RequestBuilder {
	return &RequestBuilder{
		aoi:       aoi,
		start:     start,
		end:       end,
		scale:     DefaultScaleM,
		threshold: DefaultNDVIThreshold,
		maxPixels: DefaultMaxPixels,
	}
}

// WithScale sets the sampling resolution in meters.
func (b *RequestBuilder) WithScale(m float64) *RequestBuilder {
	b.scale = m
	return b
}

// WithNDVIThreshold sets the vegetation cut-off.
func (b *RequestBuilder) WithNDVIThreshold(t float64) *RequestBuilder {
	b.threshold = t
	return b
}

// WithMaxPixels caps the number of sampled pixels.
func (b *RequestBuilder) WithMaxPixels(n int) *RequestBuilder {
	b.maxPixels = n
	return b
}

// WithSeed fixes the provider's random sampler.
func (b *RequestBuilder) WithSeed(seed int64) *RequestBuilder {
	b.seed = seed
	return b
}

// Build validates the inputs and returns the request.
func (b *RequestBuilder) Build() (SampleRequest, error) {
	if len(b.aoi.Ring) == 0 || b.start == "" || b.end == "" {
		return SampleRequest{}, domain.NewValidationError("Missing AOI or date range")
	}
	start, err := time.Parse(domain.DateLayout, b.start)
	if err != nil {
		return SampleRequest{}, domain.NewValidationError("Invalid start_date %q. Use YYYY-MM-DD", b.start)
	}
	end, err := time.Parse(domain.DateLayout, b.end)
	if err != nil {
		return SampleRequest{}, domain.NewValidationError("Invalid end_date %q. Use YYYY-MM-DD", b.end)
	}
	if !start.Before(end) {
		return SampleRequest{}, domain.NewValidationError("start_date must be before end_date")
	}
	if b.scale <= 0 {
		return SampleRequest{}, domain.NewValidationError("scale must be positive")
	}
	if b.maxPixels <= 0 {
		return SampleRequest{}, domain.NewValidationError("max pixels must be positive")
	}

	indices := make([]IndexSpec, 0, len(IndexNames))
	for _, name := range IndexNames {
		indices = append(indices, IndexSpec{Name: name, Expression: IndexExpressions[name]})
	}

	return SampleRequest{
		Collection:       DefaultCollection,
		Region:           b.aoi.Coordinates(),
		StartDate:        b.start,
		EndDate:          b.end,
		MaskedSCL:        append([]int(nil), MaskedSCLClasses...),
		ReflectanceScale: ReflectanceScale,
		Bands:            append([]string(nil), BandNames...),
		Indices:          indices,
		NDVIThreshold:    b.threshold,
		Reducer:          "median",
		CRS:              DefaultCRS,
		ScaleM:           b.scale,
		NumPixels:        b.maxPixels,
		Seed:             b.seed,
		Geometries:       true,
	}, nil
}
