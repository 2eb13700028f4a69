package dem

import "github.com/pkg/errors"

// InvalidArgError wraps a programmer error: bad strategy name or an
// even/zero window. See spec.md §7.
func InvalidArgError(format string, args ...interface{}) error {
	return errors.Errorf("invalid argument: "+format, args...)
}

// OutOfBoundsError wraps a failed explicit sample: the requested cell
// is off-raster or covered only by nodata. Unlike the raycaster (which
// treats this as "keep stepping"), the single-point samplers in this
// package have no context to continue and must raise (spec.md §7).
func OutOfBoundsError(format string, args ...interface{}) error {
	return errors.Errorf("out of bounds: "+format, args...)
}

// IOError wraps a missing/unreadable raster file, or one whose contents
// are malformed or use an unsupported TIFF layout.
func IOError(format string, args ...interface{}) error {
	return errors.Errorf("io error: "+format, args...)
}
