package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/imagery"
	"github.com/carbovista/backend/internal/model"
)

// testForest predicts 20 when NDVI <= 0.5 and 25 otherwise; the two trees
// disagree by 10 above the split and by 20 below it.
func testForest(t *testing.T) *model.Forest {
	t.Helper()
	f, err := model.New(model.Artifact{
		Name:     "Test Forest",
		Features: []string{"NDVI", "B8"},
		Estimators: []model.Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         []float64{0, 10, 20},
			},
			{
				ChildrenLeft:  []int{-1},
				ChildrenRight: []int{-1},
				Feature:       []int{-2},
				Threshold:     []float64{-2},
				Value:         []float64{30},
			},
		},
	})
	require.NoError(t, err)
	return f
}

func f64(v float64) *float64 { return &v }

func pixel(lon, lat float64, ndvi, b8 *float64) domain.PixelSample {
	return domain.PixelSample{Lon: lon, Lat: lat, Features: map[string]*float64{"NDVI": ndvi, "B8": b8}}
}

// smallAOI is a ~0.012 km² square near the equator.
func smallAOI() [][][]float64 {
	return [][][]float64{{
		{101.0, 3.0}, {101.001, 3.0}, {101.001, 3.001}, {101.0, 3.001}, {101.0, 3.0},
	}}
}

type fakeSampler struct {
	mu      sync.Mutex
	calls   []imagery.SampleRequest
	byStart map[string][]domain.PixelSample
	samples []domain.PixelSample
	err     error
}

func (f *fakeSampler) Sample(ctx context.Context, req imagery.SampleRequest) ([]domain.PixelSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.byStart[req.StartDate]; ok {
		return s, nil
	}
	return f.samples, nil
}

func (f *fakeSampler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memRepo struct {
	mu          sync.Mutex
	analyses    []domain.AnalysisLog
	predictions []domain.PointPrediction
	failWith    error
}

func (r *memRepo) SaveAnalysisLog(ctx context.Context, entry domain.AnalysisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.analyses = append(r.analyses, entry)
	return nil
}

func (r *memRepo) SavePredictionLog(ctx context.Context, features map[string]float64, resp domain.PointPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.predictions = append(r.predictions, resp)
	return nil
}

func (r *memRepo) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]domain.AnalysisLog, 0, limit)
	for i := len(r.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.analyses[i])
	}
	return out, nil
}

func (r *memRepo) Health(ctx context.Context) error { return nil }

type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, address string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = address
	c.ttls[key] = ttl
	return nil
}

var errBoom = errors.New("boom")
