// Package metrics exposes the Prometheus collectors of the carbon service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carbovista_analyses_total",
		Help: "Total AOI analyses by outcome",
	}, []string{"outcome"})
	AnalysisDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "carbovista_analysis_duration_ms",
		Help:    "AOI analysis duration in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})
	PixelsSampled = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "carbovista_pixels_sampled",
		Help:    "Valid pixels per analysis after row filtering",
		Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	PixelsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carbovista_pixels_dropped_total",
		Help: "Total sampled pixels dropped for missing feature values",
	})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carbovista_predictions_total",
		Help: "Total point predictions by outcome",
	}, []string{"outcome"})
	ImageryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "carbovista_imagery_duration_ms",
		Help:    "Imagery sampling call duration in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})
	GeocodeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carbovista_geocode_cache_hits_total",
		Help: "Total reverse geocode cache hits",
	})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carbovista_geocode_cache_misses_total",
		Help: "Total reverse geocode cache misses",
	})
	GeocodeFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carbovista_geocode_fail_total",
		Help: "Total reverse geocode lookups that fell back to the placeholder",
	})
	AuditFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carbovista_audit_fail_total",
		Help: "Total audit log writes that failed",
	})
)

func init() {
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(AnalysisDurationMs)
	prometheus.MustRegister(PixelsSampled)
	prometheus.MustRegister(PixelsDroppedTotal)
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(ImageryDurationMs)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(AuditFailTotal)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
