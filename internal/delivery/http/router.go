package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/carbovista/backend/internal/metrics"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Point prediction (debugging)
	app.Post("/predict", handler.Predict)

	// AOI analysis
	app.Post("/run-analysis", handler.RunAnalysis)
	app.Post("/compare-analysis", handler.CompareAnalysis)
	app.Get("/analyses", handler.ListAnalyses)

	// Reports
	app.Post("/download-csv", handler.DownloadCSV)
	app.Post("/download-pdf", handler.DownloadPDF)
}
