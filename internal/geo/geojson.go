package geo

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/carbovista/backend/internal/domain"
)

// ParseGeoJSON reads an AOI from a GeoJSON Polygon geometry, a Feature or
// the first feature of a FeatureCollection. A bare coordinate array
// ([[[lon, lat], ...]]) is accepted too.
func ParseGeoJSON(data []byte) (domain.AOI, error) {
	var coords [][][]float64
	if err := json.Unmarshal(data, &coords); err == nil {
		return domain.ParseAOI(coords)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return domain.AOI{}, domain.NewValidationError("AOI is not valid JSON: %v", err)
	}

	var g geom.T
	switch probe.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return domain.AOI{}, domain.NewValidationError("invalid FeatureCollection: %v", err)
		}
		if len(fc.Features) == 0 {
			return domain.AOI{}, domain.NewValidationError("FeatureCollection has no features")
		}
		g = fc.Features[0].Geometry
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return domain.AOI{}, domain.NewValidationError("invalid Feature: %v", err)
		}
		g = f.Geometry
	default:
		if err := geojson.Unmarshal(data, &g); err != nil {
			return domain.AOI{}, domain.NewValidationError("invalid geometry: %v", err)
		}
	}

	poly, ok := g.(*geom.Polygon)
	if !ok {
		return domain.AOI{}, domain.NewValidationError("AOI must be a Polygon, got %s", typeName(g))
	}
	return domain.ParseAOI(polygonCoords(poly))
}

func polygonCoords(p *geom.Polygon) [][][]float64 {
	rings := p.Coords()
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		out[i] = make([][]float64, len(ring))
		for j, c := range ring {
			out[i][j] = []float64{c.X(), c.Y()}
		}
	}
	return out
}

func typeName(g geom.T) string {
	if g == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T", g)
}
