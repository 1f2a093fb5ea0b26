package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/metrics"
	"github.com/carbovista/backend/internal/model"
	"github.com/carbovista/backend/pkg/utils"
)

// ciZ is the two-sided 95% normal quantile.
const ciZ = 1.96

// PredictionService answers single feature-vector predictions with an
// ensemble spread estimate.
type PredictionService struct {
	model  Predictor
	repo   AuditRepository
	logger *zap.Logger

	wgBg sync.WaitGroup
}

// NewPredictionService creates a new prediction service
func NewPredictionService(m Predictor, repo AuditRepository, logger *zap.Logger) *PredictionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{model: m, repo: repo, logger: logger}
}

// WaitBackground blocks until pending audit writes complete.
func (s *PredictionService) WaitBackground() {
	s.wgBg.Wait()
}

// Predict evaluates every estimator on the given features and returns the
// mean, a 95% interval floored at zero and the exp(-std/mean) confidence,
// all rounded to 2 decimals. std is the population spread across trees.
func (s *PredictionService) Predict(ctx context.Context, values map[string]any) (domain.PointPrediction, error) {
	columns := s.model.Features()
	row, err := model.RowFromMap(columns, values)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return domain.PointPrediction{}, err
	}

	preds, err := s.model.EstimatorPredictions(row)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("error").Inc()
		return domain.PointPrediction{}, fmt.Errorf("prediction: %w", err)
	}

	mean := utils.Mean(preds)
	std := utils.StdDev(preds, 0)
	lower := math.Max(0, mean-ciZ*std)
	upper := mean + ciZ*std

	resp := domain.PointPrediction{
		PredictedACDKg:  utils.RoundTo(mean, 2),
		ConfidenceScore: utils.RoundTo(Confidence(mean, std), 2),
		ExpectedRangeKg: [2]float64{utils.RoundTo(lower, 2), utils.RoundTo(upper, 2)},
	}
	metrics.PredictionsTotal.WithLabelValues("ok").Inc()

	features := make(map[string]float64, len(columns))
	for i, name := range columns {
		features[name] = row[i]
	}
	s.saveInBackground(features, resp)

	return resp, nil
}

func (s *PredictionService) saveInBackground(features map[string]float64, resp domain.PointPrediction) {
	if s.repo == nil {
		return
	}
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SavePredictionLog(bgCtx, features, resp); err != nil {
			metrics.AuditFailTotal.Inc()
			s.logger.Warn("failed to save prediction log", zap.Error(err))
		}
	}()
}
