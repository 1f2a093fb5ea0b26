package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/metrics"
)

// UnknownLocation is returned whenever reverse geocoding cannot answer.
const UnknownLocation = "Unknown location"

// AddressCache stores resolved addresses by coordinate key.
type AddressCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, address string, ttl time.Duration) error
}

// Geocoder resolves a coordinate to a human-readable address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) string
}

// NominatimGeocoder calls a Nominatim-compatible /reverse endpoint.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	cache      AddressCache
	ttl        time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNominatimGeocoder creates a geocoder. cache may be nil.
func NewNominatimGeocoder(baseURL, userAgent string, cache AddressCache, ttl time.Duration, logger *zap.Logger) *NominatimGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		cache:     cache,
		ttl:       ttl,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// nominatimResponse is the subset of the jsonv2 reverse response we use
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// CacheKey is the cache key for a coordinate, rounded to 3 decimals.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("revgeo:%.3f:%.3f", lat, lon)
}

// Reverse returns the address at (lat, lon), or UnknownLocation on any
// failure. Failures are logged and never returned.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) string {
	if g.baseURL == "" {
		return UnknownLocation
	}

	key := CacheKey(lat, lon)
	if g.cache != nil {
		addr, ok, err := g.cache.Get(ctx, key)
		switch {
		case err != nil:
			g.logger.Warn("geocode cache read failed", zap.Error(err))
		case ok:
			metrics.GeocodeCacheHitsTotal.Inc()
			return addr
		default:
			metrics.GeocodeCacheMissesTotal.Inc()
		}
	}

	addr, err := g.lookup(ctx, lat, lon)
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		g.logger.Warn("reverse geocode failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return UnknownLocation
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, addr, g.ttl); err != nil {
			g.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}
	return addr
}

func (g *NominatimGeocoder) lookup(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	endpoint := fmt.Sprintf("%s/reverse?%s", g.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("geocoder: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder: status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("geocoder: failed to decode response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("geocoder: %s", body.Error)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("geocoder: empty display_name")
	}
	return body.DisplayName, nil
}

// StaticGeocoder always answers with the same address.
type StaticGeocoder string

// Reverse implements Geocoder.
func (s StaticGeocoder) Reverse(context.Context, float64, float64) string { return string(s) }
