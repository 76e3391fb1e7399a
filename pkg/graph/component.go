package graph

import (
	"arc_router/pkg/geo"
	"arc_router/pkg/registry"
)

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []int
	rank   []byte
	size   []int
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := 0; i < n; i++ {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y int) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the size of the set containing x.
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// ExtractLargestComponent restricts the graph to its largest connected
// component, treating every edge as undirected for connectivity. Component
// vertices are renumbered densely from 1 in ascending original-id order and
// a fresh registry scoped to the new numbering is returned, so solver output
// for the extracted instance decodes independently of the original registry.
// Ties between equal-sized components go to the first-discovered one.
//
// Returns ErrDepotOutsideComponent when the depot vertex does not belong to
// the winning component; the caller surfaces this instead of silently
// solving a different component.
func ExtractLargestComponent(g *Graph, depot geo.Coord) (*Graph, *registry.Registry, error) {
	ids := g.VertexIDs()
	if len(ids) == 0 {
		return nil, nil, ErrNoVertices
	}

	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}

	uf := NewUnionFind(len(ids))
	for _, e := range g.Edges {
		uf.Union(idx[e.From], idx[e.To])
	}

	// Largest component; strict comparison keeps the first-discovered root
	// on ties because ids iterate in ascending order.
	bestRoot, bestSize := -1, 0
	for i := range ids {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	// Dense renumbering in ascending original-id order.
	newReg := registry.New()
	oldToNew := make(map[int]int, bestSize)
	vertices := make(map[int]geo.Coord, bestSize)
	for i, id := range ids {
		if uf.Find(i) != bestRoot {
			continue
		}
		c := g.Vertices[id]
		newID := newReg.GetOrCreateID(c)
		oldToNew[id] = newID
		vertices[newID] = c
	}

	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, okF := oldToNew[e.From]
		to, okT := oldToNew[e.To]
		if !okF || !okT {
			continue
		}
		edges = append(edges, Edge{From: from, To: to, Weight: e.Weight, Directed: e.Directed})
	}

	out := &Graph{Vertices: vertices, Edges: edges}

	if _, ok := newReg.CoordToID(depot); !ok {
		return nil, nil, ErrDepotOutsideComponent
	}
	if err := Normalize(out, depot, newReg); err != nil {
		return nil, nil, err
	}

	return out, newReg, nil
}
