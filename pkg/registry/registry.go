// Package registry owns the bidirectional mapping between quantized
// geographic coordinates and stable integer vertex ids for one fetched area.
package registry

import (
	"fmt"
	"math"

	"arc_router/pkg/geo"
)

// quantScale fixes coordinate identity at 8 decimal places (~1.1 mm at the
// equator). Two coordinates that agree after this rounding are the same point.
const quantScale = 1e8

// key is a coordinate quantized to fixed-point integers, safe as a map key.
type key struct {
	lonE8 int64
	latE8 int64
}

func quantize(c geo.Coord) key {
	return key{
		lonE8: int64(math.Round(c.Lon * quantScale)),
		latE8: int64(math.Round(c.Lat * quantScale)),
	}
}

func (k key) coord() geo.Coord {
	return geo.Coord{
		Lon: float64(k.lonE8) / quantScale,
		Lat: float64(k.latE8) / quantScale,
	}
}

// Registry assigns integer vertex ids (starting at 1) to quantized
// coordinates in first-seen order and resolves both directions.
//
// A Registry is owned by exactly one graph construction pass at a time;
// concurrent passes must use independent instances.
type Registry struct {
	next   int
	byKey  map[key]int
	byID   map[int]geo.Coord
}

// New returns an empty registry whose first allocated id will be 1.
func New() *Registry {
	return &Registry{
		next:  1,
		byKey: make(map[key]int),
		byID:  make(map[int]geo.Coord),
	}
}

// GetOrCreateID returns the id already assigned to the quantized coordinate,
// or allocates the next unused id and records both directions of the mapping.
func (r *Registry) GetOrCreateID(c geo.Coord) int {
	k := quantize(c)
	if id, ok := r.byKey[k]; ok {
		return id
	}
	id := r.next
	r.next++
	r.byKey[k] = id
	r.byID[id] = k.coord()
	return id
}

// CoordToID looks up the id for a coordinate. The boolean result
// distinguishes "no mapping" from any valid id.
func (r *Registry) CoordToID(c geo.Coord) (int, bool) {
	id, ok := r.byKey[quantize(c)]
	return id, ok
}

// IDToCoord looks up the quantized coordinate for an id. The boolean result
// distinguishes "no mapping" from a point at the origin.
func (r *Registry) IDToCoord(id int) (geo.Coord, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Swap exchanges the ids of two mapped coordinates. Both directions of both
// mappings are rewritten; no intermediate state leaks where two coordinates
// share an id.
func (r *Registry) Swap(a, b int) error {
	ca, ok := r.byID[a]
	if !ok {
		return fmt.Errorf("registry: id %d not mapped", a)
	}
	cb, ok := r.byID[b]
	if !ok {
		return fmt.Errorf("registry: id %d not mapped", b)
	}
	if a == b {
		return nil
	}
	r.byID[a], r.byID[b] = cb, ca
	r.byKey[quantize(ca)] = b
	r.byKey[quantize(cb)] = a
	return nil
}

// Restore inserts a known id/coordinate pair, used when rebuilding a registry
// from a persisted session. The allocation counter advances past the id so
// later GetOrCreateID calls never collide.
func (r *Registry) Restore(id int, c geo.Coord) {
	k := quantize(c)
	r.byKey[k] = id
	r.byID[id] = k.coord()
	if id >= r.next {
		r.next = id + 1
	}
}

// Clear resets the counter to 1 and empties both maps. Called on every new
// area fetch or reset action.
func (r *Registry) Clear() {
	r.next = 1
	r.byKey = make(map[key]int)
	r.byID = make(map[int]geo.Coord)
}

// Len returns the number of mapped coordinates.
func (r *Registry) Len() int {
	return len(r.byID)
}
