package roads

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"arc_router/pkg/geo"
)

// BBox defines a geographic bounding box for filtering.
// If non-zero, only features fully inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLon == 0 && b.MaxLon == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(c geo.Coord) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// LoadOptions configures the PBF loader.
type LoadOptions struct {
	BBox BBox // if non-zero, keep only features fully inside
}

func flatTags(tags osm.Tags) Tags {
	out := make(Tags, len(tags))
	for _, t := range tags {
		out[t.Key] = t.Value
	}
	return out
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	nodeIDs    []osm.NodeID
	oneway     bool
	reversed   bool
	roundabout bool
}

// LoadPBF reads an OSM PBF extract and returns the traversable road features.
// The reader is consumed twice (ways, then node coordinates), so it must
// implement io.ReadSeeker.
func LoadPBF(ctx context.Context, rs io.ReadSeeker, opts ...LoadOptions) ([]Feature, error) {
	var opt LoadOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: scan ways, keep the street-network ones.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		tags := flatTags(w.Tags)
		if !Traversable(tags) {
			continue
		}
		oneway, reversed, roundabout, skip := classifyDirection(tags)
		if skip {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{
			nodeIDs:    nodeIDs,
			oneway:     oneway,
			reversed:   reversed,
			roundabout: roundabout,
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d street ways, %d referenced nodes", len(ways), len(referencedNodes))

	// Pass 2: scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeCoord := make(map[osm.NodeID]geo.Coord, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeCoord[n.ID] = geo.Coord{Lon: n.Lon, Lat: n.Lat}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeCoord))

	// Assemble features, dropping ways with missing coordinates or outside
	// the bounding box.
	features := make([]Feature, 0, len(ways))
	var skippedWays, bboxFiltered int

wayLoop:
	for _, w := range ways {
		points := make([]geo.Coord, 0, len(w.nodeIDs))
		for _, id := range w.nodeIDs {
			c, ok := nodeCoord[id]
			if !ok {
				skippedWays++
				continue wayLoop
			}
			if useBBox && !opt.BBox.Contains(c) {
				bboxFiltered++
				continue wayLoop
			}
			points = append(points, c)
		}
		features = append(features, Feature{
			Points:     points,
			Oneway:     w.oneway,
			Reversed:   w.reversed,
			Roundabout: w.roundabout,
		})
	}

	if skippedWays > 0 {
		log.Printf("Warning: skipped %d ways due to missing node coordinates", skippedWays)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d ways outside bounding box", bboxFiltered)
	}
	log.Printf("Loaded %d road features", len(features))

	return features, nil
}
