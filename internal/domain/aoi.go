package domain

// Position is a [lon, lat] pair in WGS84 degrees.
type Position [2]float64

// AOI is a single closed polygon ring drawn by the user.
// The ring is not checked for self-intersection.
type AOI struct {
	Ring []Position
}

// ParseAOI accepts the GeoJSON-style coordinate nesting sent by the client
// ([[ [lon, lat], ... ]]) and returns the outer ring, closing it if needed.
func ParseAOI(coords [][][]float64) (AOI, error) {
	if len(coords) == 0 || len(coords[0]) == 0 {
		return AOI{}, NewValidationError("Missing AOI or date range")
	}

	outer := coords[0]
	ring := make([]Position, 0, len(outer)+1)
	for i, pt := range outer {
		if len(pt) < 2 {
			return AOI{}, NewValidationError("AOI position %d must have longitude and latitude", i)
		}
		lon, lat := pt[0], pt[1]
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return AOI{}, NewValidationError("AOI position %d out of range: [%f, %f]", i, lon, lat)
		}
		ring = append(ring, Position{lon, lat})
	}

	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	if len(ring) < 4 {
		return AOI{}, NewValidationError("AOI ring needs at least 3 distinct positions")
	}

	return AOI{Ring: ring}, nil
}

// Coordinates returns the ring in the nested form used by GeoJSON polygons.
func (a AOI) Coordinates() [][][]float64 {
	ring := make([][]float64, len(a.Ring))
	for i, p := range a.Ring {
		ring[i] = []float64{p[0], p[1]}
	}
	return [][][]float64{ring}
}
