package domain

import "time"

// DateLayout is the wire format of analysis dates.
const DateLayout = "2006-01-02"

// PixelSample is one satellite pixel: its location and named band/index
// values. A nil value marks a masked or missing measurement.
type PixelSample struct {
	Lon      float64
	Lat      float64
	Features map[string]*float64
}

// PredictionResult is a sampled pixel with its predicted carbon in kg.
type PredictionResult struct {
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	CarbonKg float64 `json:"carbon_kg"`
}

// StatsSummary holds the KPIs of one AOI analysis.
type StatsSummary struct {
	AnalysisID      string  `json:"analysis_id"`
	NPixels         int     `json:"n_pixels"`
	DroppedPixels   int     `json:"dropped_pixels"`
	MeanACD         float64 `json:"mean_acd"`
	MinACD          float64 `json:"min_acd"`
	MaxACD          float64 `json:"max_acd"`
	StdACD          float64 `json:"std_acd"`
	AOIAreaKm2      float64 `json:"aoi_area_km2"`
	AreaHa          float64 `json:"area_ha"`
	EstimatedPixels float64 `json:"estimated_pixels"`
	TotalCarbon     float64 `json:"total_carbon"`
	TotalCarbonT    float64 `json:"total_carbon_tonnes"`
	CarbonDensity   float64 `json:"carbon_density"`
	CO2eTonnes      float64 `json:"co2e_tonnes"`
	CarbonValueRM   float64 `json:"carbon_value_rm"`
	ConfidenceScore float64 `json:"confidence_score"`
	AOIAddress      string  `json:"aoi_address"`
	CentroidLon     float64 `json:"centroid_lon"`
	CentroidLat     float64 `json:"centroid_lat"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
}

// AnalysisRequest is the body of /run-analysis and /download-csv.
type AnalysisRequest struct {
	AOI       [][][]float64 `json:"aoi"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
}

// AnalysisResult is the full outcome of one AOI analysis.
type AnalysisResult struct {
	Stats   StatsSummary
	Results []PredictionResult
}

// Period is a [start, end) date range.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ComparisonRequest runs the same AOI over two periods.
type ComparisonRequest struct {
	AOI     [][][]float64 `json:"aoi"`
	PeriodA Period        `json:"period_a"`
	PeriodB Period        `json:"period_b"`
}

// ComparisonDelta is period B minus period A.
type ComparisonDelta struct {
	MeanACDChange        float64  `json:"mean_acd_change"`
	TotalCarbonChange    float64  `json:"total_carbon_change"`
	TotalCarbonChangePct *float64 `json:"total_carbon_change_pct"`
	ConfidenceChange     float64  `json:"confidence_change"`
}

// ComparisonResult bundles two analyses of the same AOI.
type ComparisonResult struct {
	PeriodA AnalysisResult
	PeriodB AnalysisResult
	Delta   ComparisonDelta
}

// PointPrediction is the /predict response.
type PointPrediction struct {
	PredictedACDKg  float64    `json:"predicted_acd_kg"`
	ConfidenceScore float64    `json:"confidence_score"`
	ExpectedRangeKg [2]float64 `json:"expected_range_kg"`
}

// AnalysisLog is the audit record written after each AOI analysis.
type AnalysisLog struct {
	ID        string        `json:"id"`
	AOI       AOI           `json:"-"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Stats     StatsSummary  `json:"stats"`
	Err       string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
}
