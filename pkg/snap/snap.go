// Package snap maps a user's map click to the nearest graph vertex so the
// depot coordinate always coincides with a real road endpoint.
package snap

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"arc_router/pkg/geo"
	"arc_router/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// Index is an R-tree over the graph's retained vertices, keyed lon/lat.
type Index struct {
	tr rtree.RTreeG[int]
}

// NewIndex builds a vertex index for the graph.
func NewIndex(g *graph.Graph) *Index {
	ix := &Index{}
	for id, c := range g.Vertices {
		p := [2]float64{c.Lon, c.Lat}
		ix.tr.Insert(p, p, id)
	}
	return ix
}

// NearestVertex returns the id and coordinate of the vertex closest to the
// query point, searching a box of maxSnapDistMeters around it. Returns
// ErrPointTooFar when no vertex lies within the search box or the closest
// one is farther than the snap limit.
func (ix *Index) NearestVertex(q geo.Coord) (int, geo.Coord, error) {
	dLat, dLon := geo.DegreeOffsets(q.Lat, maxSnapDistMeters)
	min := [2]float64{q.Lon - dLon, q.Lat - dLat}
	max := [2]float64{q.Lon + dLon, q.Lat + dLat}

	bestDist := math.Inf(1)
	bestID := 0
	var bestCoord geo.Coord

	// Candidates are point boxes; measure exact distance per candidate.
	ix.tr.Search(min, max, func(pmin, _ [2]float64, id int) bool {
		c := geo.Coord{Lon: pmin[0], Lat: pmin[1]}
		d := geo.Distance(q, c)
		if d < bestDist {
			bestDist = d
			bestID = id
			bestCoord = c
		}
		return true
	})

	if bestID == 0 || bestDist > maxSnapDistMeters {
		return 0, geo.Coord{}, ErrPointTooFar
	}
	return bestID, bestCoord, nil
}
