// Package report renders analysis results as GeoJSON, CSV and PDF.
package report

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/pkg/utils"
)

// FeatureCollection returns one Point feature per predicted pixel with the
// carbon prediction, rounded to 2 decimals, in the "acd" property.
func FeatureCollection(results []domain.PredictionResult) *geojson.FeatureCollection {
	features := make([]*geojson.Feature, 0, len(results))
	for _, r := range results {
		features = append(features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{r.Lon, r.Lat}),
			Properties: map[string]interface{}{
				"acd": utils.RoundTo(r.CarbonKg, 2),
			},
		})
	}
	return &geojson.FeatureCollection{Features: features}
}
