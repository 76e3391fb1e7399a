package graph

import (
	"arc_router/pkg/geo"
	"arc_router/pkg/registry"
	"arc_router/pkg/roads"
)

// Build extracts edges from road features, interning every coordinate through
// the registry. Shared endpoints between features map to the same vertex.
//
// The registry is mutated: ids are created for every coordinate encountered,
// even when the resulting vertex is later dropped as unused. Only one build
// may run at a time against a given registry.
func Build(features []roads.Feature, reg *registry.Registry) (*Graph, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}

	var edges []Edge
	used := make(map[int]struct{})

	for _, f := range features {
		directed := f.Directed()
		for i := 0; i+1 < len(f.Points); i++ {
			a, b := f.Points[i], f.Points[i+1]
			if f.Reversed {
				a, b = b, a
			}

			w := geo.SegmentWeight(a, b)

			from := reg.GetOrCreateID(a)
			to := reg.GetOrCreateID(b)

			// Duplicate consecutive coordinates never become edges.
			if w == 0 || from == to {
				continue
			}

			edges = append(edges, Edge{From: from, To: to, Weight: w, Directed: directed})
			used[from] = struct{}{}
			used[to] = struct{}{}
		}
	}

	if len(used) == 0 {
		return nil, ErrNoVertices
	}

	vertices := make(map[int]geo.Coord, len(used))
	for id := range used {
		c, ok := reg.IDToCoord(id)
		if !ok {
			// Unreachable: every used id was just allocated above.
			return nil, ErrNoVertices
		}
		vertices[id] = c
	}

	return &Graph{Vertices: vertices, Edges: edges}, nil
}
