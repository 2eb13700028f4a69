package projector

import (
	"encoding/json"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/viam-labs/odm-projector/logging"
	"github.com/viam-labs/odm-projector/rimage/transform"
)

// cameraRaw mirrors one entry of cameras.json before its
// projection-type-specific fields are picked apart (spec.md §6).
type cameraRaw struct {
	ProjectionType string  `mapstructure:"projection_type"`
	Width          int     `mapstructure:"width"`
	Height         int     `mapstructure:"height"`
	Focal          float64 `mapstructure:"focal"`
	FocalX         float64 `mapstructure:"focal_x"`
	CX             float64 `mapstructure:"c_x"`
	CY             float64 `mapstructure:"c_y"`
	K1             float64 `mapstructure:"k1"`
	K2             float64 `mapstructure:"k2"`
	P1             float64 `mapstructure:"p1"`
	P2             float64 `mapstructure:"p2"`
	K3             float64 `mapstructure:"k3"`
}

func (c cameraRaw) focal() float64 {
	if c.Focal != 0 {
		return c.Focal
	}
	return c.FocalX
}

// loadCameras reads cameras.json: an object keyed by camera id, each
// entry decoded via mapstructure into cameraRaw and then converted to
// the matching transform.Camera variant. Unknown projection_type
// values are skipped with a warning (spec.md §4.7).
func loadCameras(path string, log logging.Logger) (map[string]transform.Camera, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IOError("opening cameras.json at %q: %v", path, err)
	}
	defer f.Close()

	var blob map[string]map[string]interface{}
	if err := json.NewDecoder(f).Decode(&blob); err != nil {
		return nil, IOError("parsing cameras.json at %q: %v", path, err)
	}

	cameras := make(map[string]transform.Camera, len(blob))
	for camID, raw := range blob {
		var c cameraRaw
		if err := mapstructure.Decode(raw, &c); err != nil {
			return nil, errors.Wrapf(err, "decoding camera %q", camID)
		}

		switch c.ProjectionType {
		case "perspective":
			cameras[camID] = transform.NewPerspectiveCamera(c.Width, c.Height, c.focal(), c.K1, c.K2)
		case "brown":
			cameras[camID] = transform.NewBrownCamera(c.Width, c.Height, c.focal(), c.CX, c.CY, c.K1, c.K2, c.P1, c.P2, c.K3)
		default:
			if log != nil {
				log.Warnw("unsupported camera projection type, skipping", "cam_id", camID, "projection_type", c.ProjectionType)
			}
		}
	}
	return cameras, nil
}
