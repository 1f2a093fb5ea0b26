package domain

import "context"

// AuditRepository defines the interface for request audit persistence.
// The pipeline only writes to it; reads serve the history endpoint.
type AuditRepository interface {
	// SaveAnalysisLog persists an AOI analysis outcome
	SaveAnalysisLog(ctx context.Context, entry AnalysisLog) error

	// SavePredictionLog persists a point prediction request/response
	SavePredictionLog(ctx context.Context, features map[string]float64, resp PointPrediction) error

	// RecentAnalyses returns the newest analysis logs, newest first
	RecentAnalyses(ctx context.Context, limit int) ([]AnalysisLog, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
