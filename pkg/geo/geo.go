package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// Coord is a geographic point in decimal degrees, longitude first to match
// the GeoJSON axis order used by the road feature sources.
type Coord struct {
	Lon float64
	Lat float64
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Distance returns the great-circle distance in meters between two coords.
func Distance(a, b Coord) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// SegmentWeight returns the edge weight for a road segment: the great-circle
// distance in meters rounded to 2 decimals. The external solver's instance
// format carries weights at centimeter precision.
func SegmentWeight(a, b Coord) float64 {
	return math.Round(Distance(a, b)*100) / 100
}

// DegreeOffsets returns the latitude and longitude deltas in degrees that
// approximate a distance of meters at the given latitude. Used to size
// bounding boxes for spatial index queries; not accurate near the poles.
func DegreeOffsets(lat, meters float64) (dLat, dLon float64) {
	dLat = meters / 111_320.0
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	dLon = meters / (111_320.0 * cos)
	return dLat, dLon
}
