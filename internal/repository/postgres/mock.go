package postgres

import (
	"context"
	"sync"

	"github.com/carbovista/backend/internal/domain"
)

// mockCapacity bounds the in-memory history.
const mockCapacity = 100

// MockRepository implements domain.AuditRepository in memory for demo mode
// (no DATABASE_URL). It keeps the most recent analyses only.
type MockRepository struct {
	mu          sync.Mutex
	analyses    []domain.AnalysisLog
	predictions int
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveAnalysisLog keeps entry in memory
func (r *MockRepository) SaveAnalysisLog(ctx context.Context, entry domain.AnalysisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, entry)
	if len(r.analyses) > mockCapacity {
		r.analyses = r.analyses[len(r.analyses)-mockCapacity:]
	}
	return nil
}

// SavePredictionLog only counts predictions in mock mode
func (r *MockRepository) SavePredictionLog(ctx context.Context, features map[string]float64, resp domain.PointPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions++
	return nil
}

// RecentAnalyses returns up to limit entries, newest first
func (r *MockRepository) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AnalysisLog, 0, limit)
	for i := len(r.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.analyses[i])
	}
	return out, nil
}

// PredictionCount reports how many predictions were logged
func (r *MockRepository) PredictionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.predictions
}

// Health always succeeds in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
