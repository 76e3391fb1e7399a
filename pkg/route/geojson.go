package route

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// ToGeoJSON returns the path as a GeoJSON Feature with LineString geometry
// in lon,lat axis order. The synthetic flag travels as a feature property so
// map layers can style demonstration paths differently.
func ToGeoJSON(p Path) ([]byte, error) {
	if len(p.Points) == 0 {
		return nil, errors.New("can't encode empty path")
	}

	coords := make([][]float64, len(p.Points))
	for i, pt := range p.Points {
		coords[i] = []float64{pt.Lon, pt.Lat}
	}

	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("synthetic", p.Synthetic)

	b, err := f.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal geojson feature")
	}
	return b, nil
}
