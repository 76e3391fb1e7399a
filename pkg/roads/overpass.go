package roads

import (
	"encoding/json"
	"fmt"
	"io"

	"arc_router/pkg/geo"
)

// overpassResponse mirrors the Overpass API JSON produced by a query with
// `out geom`, which inlines way geometry so no node lookup pass is needed.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string          `json:"type"`
	ID       int64           `json:"id"`
	Tags     Tags            `json:"tags"`
	Geometry []overpassPoint `json:"geometry"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LoadOverpassJSON reads a saved Overpass API response and returns the
// traversable road features.
func LoadOverpassJSON(r io.Reader) ([]Feature, error) {
	var resp overpassResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	var features []Feature
	for i, el := range resp.Elements {
		if el.Type != "way" {
			continue
		}
		if len(el.Geometry) < 2 {
			continue
		}
		points := make([]geo.Coord, len(el.Geometry))
		for j, p := range el.Geometry {
			points[j] = geo.Coord{Lon: p.Lon, Lat: p.Lat}
		}
		f, ok := FromTags(points, el.Tags)
		if !ok {
			continue
		}
		if err := validatePoints(points, i); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

// validatePoints rejects non-finite coordinates at the boundary, with the
// feature index so the offending element can be located.
func validatePoints(points []geo.Coord, featureIdx int) error {
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 ||
			p.Lat != p.Lat || p.Lon != p.Lon { // NaN check
			return fmt.Errorf("feature %d: coordinate out of range: (%v, %v)", featureIdx, p.Lon, p.Lat)
		}
	}
	return nil
}
