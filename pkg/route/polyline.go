package route

import "github.com/twpayne/go-polyline"

// EncodePolyline returns the path as a Google encoded polyline (lat,lon
// order), the compact form map front-ends consume directly.
func EncodePolyline(p Path) string {
	coords := make([][]float64, len(p.Points))
	for i, pt := range p.Points {
		coords[i] = []float64{pt.Lat, pt.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
