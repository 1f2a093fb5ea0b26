package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/domain"
)

// HTTPSampler sends sampling requests to a remote imagery service that
// evaluates them against the Sentinel-2 archive and answers with a GeoJSON
// FeatureCollection of point features, one per sampled pixel.
type HTTPSampler struct {
	serviceURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPSampler creates a sampler for the service at serviceURL.
func NewHTTPSampler(serviceURL string, timeout time.Duration, logger *zap.Logger) *HTTPSampler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSampler{
		serviceURL: serviceURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Sample posts req to <serviceURL>/sample.
func (s *HTTPSampler) Sample(ctx context.Context, req SampleRequest) ([]domain.PixelSample, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("imagery: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/sample", s.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagery: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("imagery: sample request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("imagery: sampler returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("imagery: failed to decode feature collection: %w", err)
	}

	samples, skipped := DecodeFeatures(fc.Features)
	if len(samples) > req.NumPixels {
		samples = samples[:req.NumPixels]
	}

	s.logger.Debug("imagery sample complete",
		zap.Int("features", len(fc.Features)),
		zap.Int("samples", len(samples)),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return samples, nil
}

// Health checks the imagery service.
func (s *HTTPSampler) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", s.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("imagery: failed to create health request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagery: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("imagery: health check returned status %d", resp.StatusCode)
	}
	return nil
}

// DecodeFeatures converts point features into pixel samples. Features
// without a point geometry are skipped and counted. Non-numeric or
// non-finite property values are kept as nil so the row filter drops them.
func DecodeFeatures(features []*geojson.Feature) ([]domain.PixelSample, int) {
	samples := make([]domain.PixelSample, 0, len(features))
	skipped := 0
	for _, f := range features {
		if f == nil {
			skipped++
			continue
		}
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt == nil || len(pt.FlatCoords()) < 2 {
			skipped++
			continue
		}
		values := make(map[string]*float64, len(f.Properties))
		for k, v := range f.Properties {
			values[k] = numeric(v)
		}
		samples = append(samples, domain.PixelSample{
			Lon:      pt.X(),
			Lat:      pt.Y(),
			Features: values,
		})
	}
	return samples, skipped
}

func numeric(v interface{}) *float64 {
	x, ok := v.(float64)
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
