// Package graph builds and normalizes the mixed directed/undirected street
// graph handed to the external arc-routing solver.
package graph

import (
	"errors"
	"sort"

	"arc_router/pkg/geo"
)

// Errors surfaced by graph construction and normalization. Construction-stage
// failures abort the entire export before any file is produced.
var (
	// ErrNoFeatures means no road features were supplied.
	ErrNoFeatures = errors.New("no road features supplied")
	// ErrNoVertices means no vertex survived edge extraction.
	ErrNoVertices = errors.New("no vertices remain after edge extraction")
	// ErrDepotUnreachable means the depot coordinate is not on any retained edge.
	ErrDepotUnreachable = errors.New("depot coordinate does not lie on any fetched road")
	// ErrDepotOutsideComponent means the depot is not in the largest component.
	ErrDepotOutsideComponent = errors.New("depot vertex is not in the largest connected component")
)

// DepotID is the vertex id the external solver treats as the depot/start.
const DepotID = 1

// Edge is one traversable street segment. Directed edges run From→To only;
// undirected edges may be traversed either way. Parallel edges between the
// same vertex pair are distinct physical segments and are never merged.
type Edge struct {
	From     int
	To       int
	Weight   float64 // geodesic meters, rounded to 2 decimals
	Directed bool
}

// Graph is the transient problem instance built fresh for each export:
// retained vertices with their coordinates, edges, and the depot vertex id
// (always DepotID after normalization).
type Graph struct {
	Vertices map[int]geo.Coord
	Edges    []Edge
	Depot    int
}

// NumVertices returns the retained vertex count.
func (g *Graph) NumVertices() int { return len(g.Vertices) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.Edges) }

// VertexIDs returns the retained vertex ids in ascending order.
func (g *Graph) VertexIDs() []int {
	ids := make([]int, 0, len(g.Vertices))
	for id := range g.Vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Degree returns the number of edges incident to the vertex, counting both
// endpoints of every edge regardless of direction.
func (g *Graph) Degree(id int) int {
	n := 0
	for _, e := range g.Edges {
		if e.From == id || e.To == id {
			n++
		}
	}
	return n
}

// IsDense reports whether the vertex ids are exactly 1..NumVertices with no
// gaps, the numbering the solver instance format requires.
func (g *Graph) IsDense() bool {
	for i := 1; i <= len(g.Vertices); i++ {
		if _, ok := g.Vertices[i]; !ok {
			return false
		}
	}
	return true
}
