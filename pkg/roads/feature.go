// Package roads loads road line-geometries from OSM data sources and
// classifies their directionality for graph construction.
package roads

import "arc_router/pkg/geo"

// Feature is one road polyline with the attributes graph construction needs.
// Features are consumed during edge extraction and never retained afterwards.
type Feature struct {
	Points     []geo.Coord
	Oneway     bool // single directed edge per segment
	Reversed   bool // oneway against geometry order (oneway=-1)
	Roundabout bool // junction=roundabout, forces directed
}

// Directed reports whether the feature's segments produce directed edges.
func (f Feature) Directed() bool {
	return f.Oneway || f.Roundabout
}

// excludedHighways lists highway values the street-coverage route never
// visits: limited-access roads a runner cannot use, and non-street ways.
var excludedHighways = map[string]bool{
	"bridleway":          true,
	"bus_guideway":       true,
	"construction":       true,
	"cycleway":           true,
	"elevator":           true,
	"escalator":          true,
	"footway":            true,
	"motorway":           true,
	"motorway_junction":  true,
	"motorway_link":      true,
	"path":               true,
	"platform":           true,
	"proposed":           true,
	"raceway":            true,
	"rest_area":          true,
}

// excludedServices lists service way subtypes that are not streets.
var excludedServices = map[string]bool{
	"drive-through": true,
	"driveway":      true,
	"parking_aisle": true,
}

// Tags is a flat key/value view of a way's OSM tags.
type Tags map[string]string

// Traversable reports whether a tagged way belongs in the street network.
func Traversable(tags Tags) bool {
	hw, ok := tags["highway"]
	if !ok || hw == "" || excludedHighways[hw] {
		return false
	}
	if tags["area"] == "yes" {
		return false
	}
	switch tags["access"] {
	case "customers", "no", "private":
		return false
	}
	if tags["public_transport"] == "platform" {
		return false
	}
	if tags["foot"] == "no" || tags["fee"] == "yes" || tags["toll"] == "yes" {
		return false
	}
	if excludedServices[tags["service"]] {
		return false
	}
	return true
}

// classifyDirection reads the oneway and junction tags. skip is true for
// time-dependent reversible ways, which have no stable direction.
func classifyDirection(tags Tags) (oneway, reversed, roundabout, skip bool) {
	roundabout = tags["junction"] == "roundabout"

	switch tags["oneway"] {
	case "yes", "true", "1":
		oneway = true
	case "-1", "reverse":
		oneway = true
		reversed = true
	case "reversible":
		skip = true
	}
	return oneway, reversed, roundabout, skip
}

// FromTags builds a Feature from a point sequence and its way tags.
// ok is false when the way is not traversable, too short, or reversible.
func FromTags(points []geo.Coord, tags Tags) (Feature, bool) {
	if len(points) < 2 || !Traversable(tags) {
		return Feature{}, false
	}
	oneway, reversed, roundabout, skip := classifyDirection(tags)
	if skip {
		return Feature{}, false
	}
	return Feature{
		Points:     points,
		Oneway:     oneway,
		Reversed:   reversed,
		Roundabout: roundabout,
	}, true
}
