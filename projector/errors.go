package projector

import "github.com/pkg/errors"

// InvalidArgError wraps a programmer error: an unknown image name, an
// invalid z_sample_target, or an even/zero z_sample_window (spec.md §7).
func InvalidArgError(format string, args ...interface{}) error {
	return errors.Errorf("invalid argument: "+format, args...)
}

// IOError wraps a missing project directory or required project file.
func IOError(format string, args ...interface{}) error {
	return errors.Errorf("io error: "+format, args...)
}
