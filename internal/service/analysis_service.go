package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/geo"
	"github.com/carbovista/backend/internal/imagery"
	"github.com/carbovista/backend/internal/metrics"
	"github.com/carbovista/backend/internal/model"
	"github.com/carbovista/backend/pkg/utils"
)

// AnalysisOptions tunes the AOI pipeline.
type AnalysisOptions struct {
	PricePerTonne float64
	MaxPixels     int
}

// AnalysisService runs the AOI pipeline: geometry checks, imagery
// sampling, per-pixel inference, aggregation and reverse geocoding.
type AnalysisService struct {
	model    Predictor
	sampler  imagery.Sampler
	geocoder Geocoder
	repo     AuditRepository
	logger   *zap.Logger
	opts     AnalysisOptions

	wgBg sync.WaitGroup // tracks background audit writes for graceful shutdown
}

// NewAnalysisService creates a new analysis service. geocoder and repo may
// be nil.
func NewAnalysisService(
	m Predictor,
	sampler imagery.Sampler,
	geocoder Geocoder,
	repo AuditRepository,
	logger *zap.Logger,
	opts AnalysisOptions,
) *AnalysisService {
	if geocoder == nil {
		geocoder = StaticGeocoder(UnknownLocation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PricePerTonne <= 0 {
		opts.PricePerTonne = DefaultCarbonPriceRM
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = imagery.DefaultMaxPixels
	}
	return &AnalysisService{
		model:    m,
		sampler:  sampler,
		geocoder: geocoder,
		repo:     repo,
		logger:   logger,
		opts:     opts,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *AnalysisService) WaitBackground() {
	s.wgBg.Wait()
}

// plan is a validated AOI + period ready for sampling.
type plan struct {
	aoi     domain.AOI
	areaKm2 float64
	extent  geo.Extent
	request imagery.SampleRequest
}

// checkAOI runs every geometry check that must pass before any remote call.
func (s *AnalysisService) checkAOI(coords [][][]float64) (domain.AOI, float64, geo.Extent, error) {
	aoi, err := domain.ParseAOI(coords)
	if err != nil {
		return domain.AOI{}, 0, geo.Extent{}, err
	}
	area, err := geo.Validate(aoi)
	if err != nil {
		return domain.AOI{}, 0, geo.Extent{}, err
	}
	if err := geo.CheckDensity(area); err != nil {
		return domain.AOI{}, 0, geo.Extent{}, err
	}
	ext, err := geo.ExtentOf(aoi)
	if err != nil {
		return domain.AOI{}, 0, geo.Extent{}, err
	}
	return aoi, area, ext, nil
}

func (s *AnalysisService) newPlan(aoi domain.AOI, area float64, ext geo.Extent, p domain.Period) (plan, error) {
	req, err := imagery.NewRequest(aoi, p.StartDate, p.EndDate).
		WithMaxPixels(s.opts.MaxPixels).
		Build()
	if err != nil {
		return plan{}, err
	}
	return plan{aoi: aoi, areaKm2: area, extent: ext, request: req}, nil
}

// Run analyses one AOI over one period.
func (s *AnalysisService) Run(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	start := time.Now()
	period := domain.Period{StartDate: req.StartDate, EndDate: req.EndDate}

	result, err := s.run(ctx, req.AOI, period)
	s.record(result, period, req.AOI, err, time.Since(start))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

func (s *AnalysisService) run(ctx context.Context, coords [][][]float64, period domain.Period) (domain.AnalysisResult, error) {
	if len(coords) == 0 || period.StartDate == "" || period.EndDate == "" {
		return domain.AnalysisResult{}, domain.NewValidationError("Missing AOI or date range")
	}
	aoi, area, ext, err := s.checkAOI(coords)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	p, err := s.newPlan(aoi, area, ext, period)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	result, err := s.execute(ctx, p)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result.Stats.AOIAddress = s.geocoder.Reverse(ctx, result.Stats.CentroidLat, result.Stats.CentroidLon)
	return result, nil
}

// execute samples imagery for p, predicts every complete pixel and
// aggregates the result.
func (s *AnalysisService) execute(ctx context.Context, p plan) (domain.AnalysisResult, error) {
	t0 := time.Now()
	samples, err := s.sampler.Sample(ctx, p.request)
	metrics.ImageryDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("analysis: imagery sampling failed: %w", err)
	}

	matrix, err := model.BuildMatrix(s.model.Features(), samples)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	results := make([]domain.PredictionResult, len(matrix.Rows))
	for i, row := range matrix.Rows {
		kg, err := s.model.Predict(row)
		if err != nil {
			return domain.AnalysisResult{}, fmt.Errorf("analysis: inference failed: %w", err)
		}
		px := matrix.Pixels[i]
		results[i] = domain.PredictionResult{Lon: px.Lon, Lat: px.Lat, CarbonKg: kg}
	}

	stats := Aggregate(results, p.areaKm2, s.opts.PricePerTonne)
	stats.AnalysisID = uuid.NewString()
	stats.DroppedPixels = matrix.Dropped
	stats.CentroidLon, stats.CentroidLat = p.extent.Center()
	stats.StartDate = p.request.StartDate
	stats.EndDate = p.request.EndDate
	stats.AOIAddress = UnknownLocation

	metrics.PixelsSampled.Observe(float64(len(results)))
	metrics.PixelsDroppedTotal.Add(float64(matrix.Dropped))

	s.logger.Info("analysis complete",
		zap.String("analysis_id", stats.AnalysisID),
		zap.Int("pixels", stats.NPixels),
		zap.Int("dropped", stats.DroppedPixels),
		zap.Float64("area_km2", stats.AOIAreaKm2),
		zap.Float64("mean_acd", stats.MeanACD),
	)
	return domain.AnalysisResult{Stats: stats, Results: results}, nil
}

// Compare analyses the same AOI over two periods. Every geometry and date
// check runs before either period is sampled. Both periods are then
// sampled concurrently.
func (s *AnalysisService) Compare(ctx context.Context, req domain.ComparisonRequest) (domain.ComparisonResult, error) {
	start := time.Now()
	for _, p := range []domain.Period{req.PeriodA, req.PeriodB} {
		if len(req.AOI) == 0 || p.StartDate == "" || p.EndDate == "" {
			return domain.ComparisonResult{}, domain.NewValidationError("Missing AOI or date range")
		}
	}

	aoi, area, ext, err := s.checkAOI(req.AOI)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	planA, err := s.newPlan(aoi, area, ext, req.PeriodA)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("period_a: %w", err)
	}
	planB, err := s.newPlan(aoi, area, ext, req.PeriodB)
	if err != nil {
		return domain.ComparisonResult{}, fmt.Errorf("period_b: %w", err)
	}

	var (
		resA, resB domain.AnalysisResult
		errA, errB error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		resA, errA = s.execute(ctx, planA)
	}()
	go func() {
		defer wg.Done()
		resB, errB = s.execute(ctx, planB)
	}()
	wg.Wait()

	elapsed := time.Since(start)
	s.record(resA, req.PeriodA, req.AOI, errA, elapsed)
	s.record(resB, req.PeriodB, req.AOI, errB, elapsed)
	if errA != nil {
		return domain.ComparisonResult{}, fmt.Errorf("period_a: %w", errA)
	}
	if errB != nil {
		return domain.ComparisonResult{}, fmt.Errorf("period_b: %w", errB)
	}

	addr := s.geocoder.Reverse(ctx, resA.Stats.CentroidLat, resA.Stats.CentroidLon)
	resA.Stats.AOIAddress = addr
	resB.Stats.AOIAddress = addr

	return domain.ComparisonResult{
		PeriodA: resA,
		PeriodB: resB,
		Delta:   Delta(resA.Stats, resB.Stats),
	}, nil
}

// Delta returns b minus a. The percentage change is nil when a has no
// carbon.
func Delta(a, b domain.StatsSummary) domain.ComparisonDelta {
	d := domain.ComparisonDelta{
		MeanACDChange:     utils.RoundTo(b.MeanACD-a.MeanACD, 2),
		TotalCarbonChange: utils.RoundTo(b.TotalCarbon-a.TotalCarbon, 2),
		ConfidenceChange:  utils.RoundTo(b.ConfidenceScore-a.ConfidenceScore, 2),
	}
	if a.TotalCarbon != 0 {
		pct := utils.RoundTo((b.TotalCarbon-a.TotalCarbon)/a.TotalCarbon*100, 2)
		d.TotalCarbonChangePct = &pct
	}
	return d
}

// record updates metrics and persists the audit log asynchronously
// (tracked for graceful shutdown).
func (s *AnalysisService) record(result domain.AnalysisResult, period domain.Period, coords [][][]float64, runErr error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case runErr == nil:
	case domain.IsClientError(runErr):
		outcome = "rejected"
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		outcome = "canceled"
	default:
		outcome = "error"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	metrics.AnalysisDurationMs.Observe(float64(elapsed.Milliseconds()))

	if runErr != nil {
		s.logger.Warn("analysis failed",
			zap.String("outcome", outcome),
			zap.String("start_date", period.StartDate),
			zap.String("end_date", period.EndDate),
			zap.Error(runErr),
		)
	}

	if s.repo == nil {
		return
	}

	entry := domain.AnalysisLog{
		ID:        result.Stats.AnalysisID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Stats:     result.Stats,
		Duration:  elapsed,
		CreatedAt: time.Now().UTC(),
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if aoi, err := domain.ParseAOI(coords); err == nil {
		entry.AOI = aoi
	}
	if runErr != nil {
		entry.Err = runErr.Error()
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveAnalysisLog(bgCtx, entry); err != nil {
			metrics.AuditFailTotal.Inc()
			s.logger.Warn("failed to save analysis log", zap.String("analysis_id", entry.ID), zap.Error(err))
		}
	}()
}

// History returns the most recent analysis logs.
func (s *AnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisLog, error) {
	if s.repo == nil {
		return []domain.AnalysisLog{}, nil
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	logs, err := s.repo.RecentAnalyses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analysis: failed to load history: %w", err)
	}
	return logs, nil
}

// ModelName reports the loaded model's name.
func (s *AnalysisService) ModelName() string { return s.model.Name() }

// ModelFeatures reports the loaded model's feature columns.
func (s *AnalysisService) ModelFeatures() []string { return s.model.Features() }
