package projector

import "encoding/json"

// geoJSONFeatureCollection is a minimal hand-rolled GeoJSON encoder for
// 3D [lon, lat, z] geometries. paulmach/orb's geometry types are
// strictly 2D, so emitting elevation alongside each planar coordinate
// (spec.md §4.6) is built directly on encoding/json rather than
// shoehorned through orb/geojson.
type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   geoJSONGeometry        `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Cam2GeoJSON raycasts coords through image and wraps the non-nil
// results as a single-feature GeoJSON FeatureCollection: a Point for
// one result, a LineString for two, and a closed-ring Polygon for
// three or more (spec.md §4.6).
func (p *Projector) Cam2GeoJSON(image string, coords [][2]float64, properties map[string]interface{}, normalized bool) (json.RawMessage, error) {
	hits, err := p.Cam2World(image, coords, normalized)
	if err != nil {
		return nil, err
	}
	return buildGeoJSON(image, hits, properties)
}

// buildGeoJSON implements spec.md §4.6's shape rules over an already
// computed hit list, kept separate from Cam2World so the geometry
// logic is testable without a raycast.
func buildGeoJSON(image string, hits []*WorldHit, properties map[string]interface{}) (json.RawMessage, error) {
	props := make(map[string]interface{}, len(properties)+1)
	for k, v := range properties {
		props[k] = v
	}
	if _, ok := props["image"]; !ok {
		props["image"] = image
	}

	points := make([][3]float64, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		points = append(points, [3]float64{h.Lon, h.Lat, h.Z})
	}

	if len(points) == 0 {
		fc := geoJSONFeatureCollection{Type: "FeatureCollection", Features: []geoJSONFeature{}}
		return json.Marshal(fc)
	}

	var geom geoJSONGeometry
	switch {
	case len(points) == 1:
		geom = geoJSONGeometry{Type: "Point", Coordinates: points[0]}
	case len(points) == 2:
		geom = geoJSONGeometry{Type: "LineString", Coordinates: points}
	default:
		ring := append(append([][3]float64{}, points...), points[0])
		geom = geoJSONGeometry{Type: "Polygon", Coordinates: [][][3]float64{ring}}
	}

	fc := geoJSONFeatureCollection{
		Type: "FeatureCollection",
		Features: []geoJSONFeature{{
			Type:       "Feature",
			Properties: props,
			Geometry:   geom,
		}},
	}
	return json.Marshal(fc)
}
