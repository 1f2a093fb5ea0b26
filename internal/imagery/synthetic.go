package imagery

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/geo"
)

// SyntheticSampler stands in for the remote imagery service when none is
// configured. It draws pseudo-random positions inside the AOI, synthesises
// L2A digital numbers for them and runs them through the same mask, scale,
// index and NDVI steps the remote composite applies. Output is
// deterministic for a given request.
type SyntheticSampler struct{}

// NewSyntheticSampler creates the offline sampler.
func NewSyntheticSampler() *SyntheticSampler {
	return &SyntheticSampler{}
}

// Sample implements Sampler.
func (s *SyntheticSampler) Sample(ctx context.Context, req SampleRequest) ([]domain.PixelSample, error) {
	aoi, err := domain.ParseAOI(req.Region)
	if err != nil {
		return nil, err
	}
	ext, err := geo.ExtentOf(aoi)
	if err != nil {
		return nil, err
	}

	candidates := int(geo.EstimatePixels(ext.AreaKm2()))
	if candidates > req.NumPixels {
		candidates = req.NumPixels
	}

	outputs := req.OutputBands()
	rng := rand.New(rand.NewSource(seedFor(req)))
	samples := make([]domain.PixelSample, 0, candidates)
	for i := 0; i < candidates; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lon := ext.MinLon + rng.Float64()*(ext.MaxLon-ext.MinLon)
		lat := ext.MinLat + rng.Float64()*(ext.MaxLat-ext.MinLat)
		if !geo.Contains(aoi, lon, lat) {
			continue
		}

		raw := syntheticBands(rng, lon, lat)
		if raw.Masked() {
			continue
		}
		features := raw.Scaled().Features()
		if !Vegetated(features, req.NDVIThreshold) {
			continue
		}
		samples = append(samples, domain.PixelSample{Lon: lon, Lat: lat, Features: selectBands(features, outputs)})
	}
	return samples, nil
}

// selectBands keeps only the requested output bands. An empty selection
// keeps everything.
func selectBands(features map[string]*float64, names []string) map[string]*float64 {
	if len(names) == 0 {
		return features
	}
	out := make(map[string]*float64, len(names))
	for _, name := range names {
		if v, ok := features[name]; ok {
			out[name] = v
		}
	}
	return out
}

// syntheticBands returns digital numbers for a pixel whose canopy cover
// varies smoothly across the landscape with per-pixel noise.
func syntheticBands(rng *rand.Rand, lon, lat float64) Bands {
	cover := 0.55 + 0.3*math.Sin(lon*4000)*math.Cos(lat*4000) + rng.NormFloat64()*0.1
	cover = math.Max(0, math.Min(1, cover))
	bare := 1 - cover

	scl := 4
	switch p := rng.Float64(); {
	case p < 0.04:
		scl = SCLCloudMedium
	case p < 0.06:
		scl = SCLCloudShadow
	}

	jitter := func(v float64) float64 { return math.Max(1, v*(1+rng.NormFloat64()*0.05)) }
	return Bands{
		B2:  jitter(200 + 400*bare),
		B3:  jitter(450 + 500*bare),
		B4:  jitter(250 + 1200*bare),
		B8:  jitter(1800 + 2600*cover),
		B11: jitter(900 + 1600*bare),
		B12: jitter(400 + 1300*bare),
		SCL: scl,
	}
}

func seedFor(req SampleRequest) int64 {
	if req.Seed != 0 {
		return req.Seed
	}
	h := fnv.New64a()
	h.Write([]byte(req.StartDate))
	h.Write([]byte(req.EndDate))
	for _, ring := range req.Region {
		for _, p := range ring {
			for _, c := range p {
				var b [8]byte
				bits := math.Float64bits(c)
				for i := range b {
					b[i] = byte(bits >> (8 * i))
				}
				h.Write(b[:])
			}
		}
	}
	return int64(h.Sum64())
}
