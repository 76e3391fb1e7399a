package graph

import (
	"errors"
	"testing"

	"arc_router/pkg/geo"
	"arc_router/pkg/registry"
	"arc_router/pkg/roads"
)

func twoWay(points ...geo.Coord) roads.Feature {
	return roads.Feature{Points: points}
}

func oneWay(points ...geo.Coord) roads.Feature {
	return roads.Feature{Points: points, Oneway: true}
}

func TestBuildSharedEndpointSingleVertex(t *testing.T) {
	shared := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	features := []roads.Feature{
		twoWay(geo.Coord{Lon: -0.1010, Lat: 51.5005}, shared),
		twoWay(shared, geo.Coord{Lon: -0.0990, Lat: 51.4995}),
	}

	reg := registry.New()
	g, err := Build(features, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumVertices() != 3 {
		t.Fatalf("NumVertices = %d, want 3 (shared endpoint must map to one vertex)", g.NumVertices())
	}
	if g.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", g.NumEdges())
	}

	id, ok := reg.CoordToID(shared)
	if !ok {
		t.Fatal("shared coordinate has no registry id")
	}
	if g.Degree(id) != 2 {
		t.Errorf("shared vertex degree = %d, want 2", g.Degree(id))
	}
}

func TestBuildOnewayProducesSingleDirectedEdge(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.1010, Lat: 51.5005}

	reg := registry.New()
	g, err := Build([]roads.Feature{oneWay(a, b)}, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumEdges() != 1 {
		t.Fatalf("NumEdges = %d, want 1", g.NumEdges())
	}
	idA, _ := reg.CoordToID(a)
	idB, _ := reg.CoordToID(b)

	e := g.Edges[0]
	if !e.Directed {
		t.Error("one-way edge must be directed")
	}
	if e.From != idA || e.To != idB {
		t.Errorf("edge = %d→%d, want %d→%d", e.From, e.To, idA, idB)
	}
	// The reverse pair must not appear.
	for _, e := range g.Edges {
		if e.From == idB && e.To == idA {
			t.Error("reverse edge B→A must not exist for a one-way feature")
		}
	}
}

func TestBuildReversedOneway(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.1010, Lat: 51.5005}

	reg := registry.New()
	g, err := Build([]roads.Feature{{Points: []geo.Coord{a, b}, Oneway: true, Reversed: true}}, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	idA, _ := reg.CoordToID(a)
	idB, _ := reg.CoordToID(b)
	e := g.Edges[0]
	if e.From != idB || e.To != idA {
		t.Errorf("reversed one-way edge = %d→%d, want %d→%d", e.From, e.To, idB, idA)
	}
}

func TestBuildRoundaboutDirected(t *testing.T) {
	pts := []geo.Coord{
		{Lon: -0.1000, Lat: 51.5000},
		{Lon: -0.1005, Lat: 51.5003},
		{Lon: -0.1010, Lat: 51.5000},
		{Lon: -0.1000, Lat: 51.5000},
	}

	g, err := Build([]roads.Feature{{Points: pts, Roundabout: true}}, registry.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, e := range g.Edges {
		if !e.Directed {
			t.Errorf("roundabout edge %d must be directed", i)
		}
	}
}

func TestBuildParallelEdgesNotMerged(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.1010, Lat: 51.5005}

	// Two distinct physical segments between the same endpoints.
	g, err := Build([]roads.Feature{twoWay(a, b), twoWay(a, b)}, registry.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2 (parallel segments must both be traversed)", g.NumEdges())
	}
	if g.NumVertices() != 2 {
		t.Fatalf("NumVertices = %d, want 2", g.NumVertices())
	}
}

func TestBuildSkipsZeroLengthSegments(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.1010, Lat: 51.5005}

	g, err := Build([]roads.Feature{twoWay(a, a, b)}, registry.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NumEdges() != 1 {
		t.Fatalf("NumEdges = %d, want 1 (duplicate consecutive coordinate must be skipped)", g.NumEdges())
	}
	for _, e := range g.Edges {
		if e.Weight <= 0 {
			t.Errorf("edge weight = %v, want > 0", e.Weight)
		}
	}
}

func TestBuildEmptyFeaturesFails(t *testing.T) {
	_, err := Build(nil, registry.New())
	if !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("err = %v, want ErrNoFeatures", err)
	}
}

func TestBuildNoVerticesFails(t *testing.T) {
	p := geo.Coord{Lon: -0.1, Lat: 51.5}
	reg := registry.New()
	_, err := Build([]roads.Feature{twoWay(p, p)}, reg)
	if !errors.Is(err, ErrNoVertices) {
		t.Fatalf("err = %v, want ErrNoVertices", err)
	}
	// Coordinates encountered during the failed build still got registry ids.
	if reg.Len() == 0 {
		t.Error("registry must retain ids created during edge extraction")
	}
}

func TestBuildFiltersUnusedVertices(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.1010, Lat: 51.5005}
	isolated := geo.Coord{Lon: -0.2000, Lat: 51.6000}

	reg := registry.New()
	features := []roads.Feature{
		twoWay(isolated, isolated), // only zero-length segments
		twoWay(a, b),
	}
	g, err := Build(features, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumVertices() != 2 {
		t.Fatalf("NumVertices = %d, want 2 (isolated coordinate dropped)", g.NumVertices())
	}
	id, ok := reg.CoordToID(isolated)
	if !ok {
		t.Fatal("isolated coordinate must still have a registry id")
	}
	if _, present := g.Vertices[id]; present {
		t.Error("isolated vertex must not be retained in the graph")
	}
}

func TestBuildWeightsRounded(t *testing.T) {
	a := geo.Coord{Lon: -0.1000, Lat: 51.5000}
	b := geo.Coord{Lon: -0.10137, Lat: 51.50061}

	g, err := Build([]roads.Feature{twoWay(a, b)}, registry.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	w := g.Edges[0].Weight
	if w != geo.SegmentWeight(a, b) {
		t.Errorf("Weight = %v, want %v", w, geo.SegmentWeight(a, b))
	}
}
