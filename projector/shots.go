package projector

import (
	"os"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb/geojson"

	"github.com/viam-labs/odm-projector/spatialmath"
)

// shotV2Prefix is the optional camera-id prefix some reconstructions
// stamp onto shots.geojson's "camera" property (spec.md §3, §4.4).
const shotV2Prefix = "v2 "

// Shot is one exposure: an immutable pose plus intrinsics reference
// (spec.md §3).
type Shot struct {
	Filename    string
	CamID       string
	Focal       float64
	Translation r3.Vector
	Rotation    *spatialmath.RotationMatrix
	Width       int
	Height      int
}

// resolvedCamID strips the optional "v2 " prefix before a Camera table
// lookup (spec.md §3, §4.4, §4.5).
func (s *Shot) resolvedCamID() string {
	return strings.TrimPrefix(s.CamID, shotV2Prefix)
}

// loadShots parses an ODM-style shots.geojson FeatureCollection into a
// Shot list plus a filename->index map, skipping any feature missing a
// focal length or image dimensions (spec.md §4.7, §6).
func loadShots(path string) ([]Shot, map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, IOError("opening shots.geojson at %q: %v", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, nil, IOError("parsing shots.geojson at %q: %v", path, err)
	}

	shots := make([]Shot, 0, len(fc.Features))
	shotsMap := make(map[string]int, len(fc.Features))

	for _, feat := range fc.Features {
		props := map[string]interface{}(feat.Properties)
		if props == nil {
			continue
		}

		focal, ok := floatProp(props, "focal")
		if !ok {
			focal, ok = floatProp(props, "focal_x")
		}
		if !ok {
			continue
		}

		width, wok := intProp(props, "width")
		height, hok := intProp(props, "height")
		if !wok || !hok || width <= 0 || height <= 0 {
			continue
		}

		translationRaw, ok := floatArrayProp(props, "translation")
		if !ok || len(translationRaw) < 3 {
			continue
		}
		rotationRaw, ok := floatArrayProp(props, "rotation")
		if !ok || len(rotationRaw) < 3 {
			continue
		}

		rot := spatialmath.NewRotationMatrixFromRodrigues(r3.Vector{
			X: rotationRaw[0], Y: rotationRaw[1], Z: rotationRaw[2],
		})

		filename, _ := props["filename"].(string)
		camID, _ := props["camera"].(string)

		shots = append(shots, Shot{
			Filename: filename,
			CamID:    camID,
			Focal:    focal,
			Translation: r3.Vector{
				X: translationRaw[0], Y: translationRaw[1], Z: translationRaw[2],
			},
			Rotation: rot,
			Width:    width,
			Height:   height,
		})
		shotsMap[filename] = len(shots) - 1
	}

	return shots, shotsMap, nil
}

func floatProp(props map[string]interface{}, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func intProp(props map[string]interface{}, key string) (int, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func floatArrayProp(props map[string]interface{}, key string) ([]float64, bool) {
	v, ok := props[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(arr))
	for _, e := range arr {
		f, ok := e.(float64)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}
