package imagery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [101.0005, 3.0005]},
     "properties": {"NDVI": 0.71, "B8": 0.32, "B4": null}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [101.0007, 3.0002]},
     "properties": {"NDVI": 0.55, "B8": "n/a"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
     "properties": {"NDVI": 0.9}}
  ]
}`

func TestHTTPSamplerSample(t *testing.T) {
	var got SampleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sample", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)

	samples, err := NewHTTPSampler(srv.URL, time.Second, nil).Sample(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", got.StartDate)
	assert.Equal(t, []int{3, 8, 9, 10}, got.MaskedSCL)

	require.Len(t, samples, 2)
	assert.InDelta(t, 101.0005, samples[0].Lon, 1e-12)
	assert.InDelta(t, 3.0005, samples[0].Lat, 1e-12)
	require.NotNil(t, samples[0].Features["NDVI"])
	assert.Equal(t, 0.71, *samples[0].Features["NDVI"])
	assert.Nil(t, samples[0].Features["B4"])
	assert.Nil(t, samples[1].Features["B8"])
}

func TestHTTPSamplerCapsPixels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").WithMaxPixels(1).Build()
	require.NoError(t, err)

	samples, err := NewHTTPSampler(srv.URL, time.Second, nil).Sample(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestHTTPSamplerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	req, err := NewRequest(testAOI(t), "2024-01-01", "2024-06-30").Build()
	require.NoError(t, err)

	_, err = NewHTTPSampler(srv.URL, time.Second, nil).Sample(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHTTPSamplerHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPSampler(srv.URL, time.Second, nil).Health(context.Background()))
}
