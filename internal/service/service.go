package service

import (
	"github.com/carbovista/backend/internal/domain"
)

// AuditRepository is re-exported from domain for convenience
type AuditRepository = domain.AuditRepository

// Predictor is the loaded ensemble model.
type Predictor interface {
	Name() string
	Features() []string
	Predict(x []float64) (float64, error)
	EstimatorPredictions(x []float64) ([]float64, error)
}
