package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbovista/backend/internal/domain"
)

func TestPredictionServicePredict(t *testing.T) {
	repo := &memRepo{}
	svc := NewPredictionService(testForest(t), repo, nil)

	got, err := svc.Predict(context.Background(), map[string]any{"NDVI": 0.9, "B8": 0.3, "extra": "ignored"})
	require.NoError(t, err)

	// trees say 20 and 30: mean 25, population std 5
	assert.Equal(t, 25.0, got.PredictedACDKg)
	assert.Equal(t, 0.82, got.ConfidenceScore)
	assert.Equal(t, [2]float64{15.2, 34.8}, got.ExpectedRangeKg)

	svc.WaitBackground()
	require.Len(t, repo.predictions, 1)
	assert.Equal(t, got, repo.predictions[0])
}

func TestPredictionServiceFloorsInterval(t *testing.T) {
	svc := NewPredictionService(testForest(t), nil, nil)

	// trees say 10 and 30: mean 20, std 10, lower bound 20-19.6 = 0.4
	got, err := svc.Predict(context.Background(), map[string]any{"NDVI": 0.1, "B8": 0.3})
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.PredictedACDKg)
	assert.Equal(t, 0.4, got.ExpectedRangeKg[0])
	assert.Equal(t, 39.6, got.ExpectedRangeKg[1])
	assert.Equal(t, 0.61, got.ConfidenceScore)
}

func TestPredictionServiceErrors(t *testing.T) {
	svc := NewPredictionService(testForest(t), nil, nil)

	_, err := svc.Predict(context.Background(), map[string]any{"NDVI": 0.9})
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"B8"}, schemaErr.Missing)

	_, err = svc.Predict(context.Background(), map[string]any{"NDVI": "green", "B8": 0.3})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPredictionServiceAuditFailureDoesNotFail(t *testing.T) {
	repo := &memRepo{failWith: errBoom}
	svc := NewPredictionService(testForest(t), repo, nil)

	_, err := svc.Predict(context.Background(), map[string]any{"NDVI": 0.9, "B8": 0.3})
	assert.NoError(t, err)
	svc.WaitBackground()
}
