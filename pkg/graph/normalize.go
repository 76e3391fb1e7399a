package graph

import (
	"fmt"

	"arc_router/pkg/geo"
	"arc_router/pkg/registry"
)

// Normalize ensures the depot coordinate's vertex holds id DepotID and is
// incident to at least one edge. When another vertex holds id 1, the two
// vertices exchange ids in the vertex set, the registry, and both endpoints
// of every edge in a single pass, so no intermediate state exists where two
// vertices share an id or an edge degenerates into a self-loop.
//
// Returns ErrDepotUnreachable when the depot coordinate has no vertex in the
// graph or its vertex has no incident edge; the caller reports this to the
// user rather than defaulting to another depot.
func Normalize(g *Graph, depot geo.Coord, reg *registry.Registry) error {
	depotID, ok := reg.CoordToID(depot)
	if !ok {
		return fmt.Errorf("%w: no vertex at (%.8f, %.8f)", ErrDepotUnreachable, depot.Lon, depot.Lat)
	}
	if _, ok := g.Vertices[depotID]; !ok {
		return fmt.Errorf("%w: vertex %d was dropped as isolated", ErrDepotUnreachable, depotID)
	}

	if depotID != DepotID {
		other, hasOther := g.Vertices[DepotID]
		depotCoord := g.Vertices[depotID]

		// Swap both occurrences on every edge at once.
		for i := range g.Edges {
			switch g.Edges[i].From {
			case depotID:
				g.Edges[i].From = DepotID
			case DepotID:
				g.Edges[i].From = depotID
			}
			switch g.Edges[i].To {
			case depotID:
				g.Edges[i].To = DepotID
			case DepotID:
				g.Edges[i].To = depotID
			}
		}

		g.Vertices[DepotID] = depotCoord
		if hasOther {
			g.Vertices[depotID] = other
			if err := reg.Swap(depotID, DepotID); err != nil {
				return fmt.Errorf("normalize depot: %w", err)
			}
		} else {
			// Id 1 was unused (its coordinate never met a retained edge):
			// move the depot vertex there instead of swapping.
			delete(g.Vertices, depotID)
			if _, mapped := reg.IDToCoord(DepotID); mapped {
				if err := reg.Swap(depotID, DepotID); err != nil {
					return fmt.Errorf("normalize depot: %w", err)
				}
			} else {
				reg.Restore(DepotID, depotCoord)
			}
		}
	}

	if g.Degree(DepotID) == 0 {
		return fmt.Errorf("%w: depot vertex has no incident edge", ErrDepotUnreachable)
	}

	g.Depot = DepotID
	return nil
}
