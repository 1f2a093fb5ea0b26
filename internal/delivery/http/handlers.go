package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/report"
	"github.com/carbovista/backend/internal/service"
)

// HealthChecker is an optional dependency reported by /health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	analysisSvc   *service.AnalysisService
	predictionSvc *service.PredictionService
	repo          service.AuditRepository
	imagery       HealthChecker
	cache         HealthChecker
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler creates a new handler
func NewHandler(
	analysisSvc *service.AnalysisService,
	predictionSvc *service.PredictionService,
	repo service.AuditRepository,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		analysisSvc:   analysisSvc,
		predictionSvc: predictionSvc,
		repo:          repo,
		logger:        logger,
		now:           time.Now,
	}
}

// WithHealthChecks registers the remote imagery service and the geocode
// cache for /health. Either may be nil.
func (h *Handler) WithHealthChecks(imagery, cache HealthChecker) *Handler {
	h.imagery = imagery
	h.cache = cache
	return h
}

// Root is the liveness probe the web client polls.
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "CarboVista backend running",
		"model":  h.analysisSvc.ModelName(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var repo HealthChecker
	if h.repo != nil {
		repo = h.repo
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"model":    h.analysisSvc.ModelName(),
		"features": h.analysisSvc.ModelFeatures(),
		"database": h.dependencyStatus(ctx, "database", repo),
		"imagery":  h.dependencyStatus(ctx, "imagery", h.imagery),
		"cache":    h.dependencyStatus(ctx, "cache", h.cache),
	})
}

func (h *Handler) dependencyStatus(ctx context.Context, name string, dep HealthChecker) string {
	if dep == nil {
		return "disabled"
	}
	if err := dep.Health(ctx); err != nil {
		h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		return "unavailable"
	}
	return "ok"
}

// Predict answers a single feature-vector prediction. Every failure is a
// 400.
func (h *Handler) Predict(c *fiber.Ctx) error {
	var values map[string]any
	if err := json.Unmarshal(c.Body(), &values); err != nil || values == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	prediction, err := h.predictionSvc.Predict(c.UserContext(), values)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(prediction)
}

// RunAnalysis runs the AOI pipeline and returns stats plus per-pixel GeoJSON
func (h *Handler) RunAnalysis(c *fiber.Ctx) error {
	var req domain.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.analysisSvc.Run(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(analysisResponse(res))
}

// CompareAnalysis runs the AOI pipeline for two periods
func (h *Handler) CompareAnalysis(c *fiber.Ctx) error {
	var req domain.ComparisonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.analysisSvc.Compare(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"period_a": analysisResponse(res.PeriodA),
		"period_b": analysisResponse(res.PeriodB),
		"delta":    res.Delta,
	})
}

// DownloadCSV runs the AOI pipeline and returns the per-pixel table
func (h *Handler) DownloadCSV(c *fiber.Ctx) error {
	var req domain.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.analysisSvc.Run(c.UserContext(), req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, res.Stats, res.Results, h.now()); err != nil {
		return err
	}

	c.Attachment(fmt.Sprintf("carbovista_%s.csv", res.Stats.AnalysisID))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// DownloadPDF assembles the report from client-supplied stats and charts
func (h *Handler) DownloadPDF(c *fiber.Ctx) error {
	var req report.PDFRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, req, h.now()); err != nil {
		return err
	}

	c.Attachment("CarboVista_Carbon_Report.pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}

// ListAnalyses returns recent analysis audit logs
func (h *Handler) ListAnalyses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	logs, err := h.analysisSvc.History(c.UserContext(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch analysis history")
	}

	return c.JSON(fiber.Map{
		"data":  logs,
		"count": len(logs),
	})
}

func analysisResponse(res domain.AnalysisResult) fiber.Map {
	return fiber.Map{
		"stats":   res.Stats,
		"geojson": report.FeatureCollection(res.Results),
	}
}
