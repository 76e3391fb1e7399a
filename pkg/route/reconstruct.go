// Package route turns decoded vertex paths back into geographic paths and
// encodes them for rendering and animation collaborators.
package route

import (
	"math"

	"arc_router/pkg/registry"
)

// dedupeEpsilon collapses consecutive points closer than this in both axes,
// removing redundant stationary frames for animation.
const dedupeEpsilon = 1e-6

// Demonstration path parameters: a radial walk around a fixed reference
// point, used only when no coordinate mapping is available so a user can
// preview animation mechanics without real data.
const (
	demoCenterLat = 51.505
	demoCenterLon = -0.09
	demoMinPoints = 24
)

// Point is a geographic path point. Axis order is latitude first, matching
// what rendering collaborators consume (the reverse of geo.Coord).
type Point struct {
	Lat float64
	Lon float64
}

// Path is the reconstructed geographic path. Synthetic marks the fallback
// demonstration walk, which downstream consumers must distinguish from a
// genuine reconstruction.
type Path struct {
	Points    []Point
	Synthetic bool
}

// Reconstruct maps each vertex id through the registry and collapses
// consecutive near-duplicate points. Ids with no mapping are skipped, never
// emitted as placeholder points. When no id maps at all, a deterministic
// demonstration path of roughly the input length is returned instead,
// flagged Synthetic.
func Reconstruct(vertexPath []int, reg *registry.Registry) Path {
	var points []Point
	if reg != nil {
		for _, id := range vertexPath {
			c, ok := reg.IDToCoord(id)
			if !ok {
				continue
			}
			p := Point{Lat: c.Lat, Lon: c.Lon}
			if n := len(points); n > 0 && nearDuplicate(points[n-1], p) {
				continue
			}
			points = append(points, p)
		}
	}

	if len(points) == 0 {
		return demoPath(len(vertexPath))
	}
	return Path{Points: points}
}

func nearDuplicate(a, b Point) bool {
	return math.Abs(a.Lat-b.Lat) < dedupeEpsilon && math.Abs(a.Lon-b.Lon) < dedupeEpsilon
}

// demoPath generates the radial demonstration walk: n points spiralling
// outward around the fixed reference point, spaced far beyond the dedupe
// threshold so every frame survives.
func demoPath(n int) Path {
	if n < demoMinPoints {
		n = demoMinPoints
	}
	points := make([]Point, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(demoMinPoints)
		radius := 0.002 + 0.0004*float64(i)
		points[i] = Point{
			Lat: demoCenterLat + radius*math.Sin(angle),
			Lon: demoCenterLon + radius*math.Cos(angle),
		}
	}
	return Path{Points: points, Synthetic: true}
}
