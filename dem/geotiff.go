package dem

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Single-band GeoTIFF/TIFF reader sized for DEMs: uncompressed or
// zlib/deflate-compressed strips, byte/short/float32 samples. Adapted
// from the IFD-walking approach of a retrieved COG reader
// (pspoerri/geotiff2pmtiles's internal/cog package) and the TIFF tag
// constants of the vendored golang.org/x/image/tiff fork
// (prl900/image's internal/tiff/consts.go) — trimmed to the single
// full-resolution band this library needs, with no tiling/pyramid
// support.
const (
	leHeader = "II\x2A\x00"
	beHeader = "MM\x00\x2A"

	dtByte     = 1
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
	dtSShort   = 8
	dtSLong    = 9
	dtFloat32  = 11
	dtFloat64  = 12

	tImageWidth      = 256
	tImageLength     = 257
	tBitsPerSample   = 258
	tCompression     = 259
	tStripOffsets    = 273
	tSamplesPerPixel = 277
	tRowsPerStrip    = 278
	tStripByteCounts = 279
	tSampleFormat    = 339
	tModelPixelScale = 33550
	tModelTiepoint   = 33922
	tGDALNoData      = 42113

	cNone    = 1
	cDeflate = 8
	cZIP     = 32946

	sfUnsignedInt = 1
	sfSignedInt   = 2
	sfFloat       = 3
)

var typeLen = map[int]int{dtByte: 1, dtShort: 2, dtLong: 4, dtRational: 8, dtSShort: 2, dtSLong: 4, dtFloat32: 4, dtFloat64: 8}

type ifdEntry struct {
	tag, typ int
	count    int
	raw      []byte
}

// Raster is a single-band elevation grid loaded fully into memory, with
// its affine pixel-grid transform, nodata sentinel, and CRS WKT/Proj
// string (spec.md §3).
type Raster struct {
	Width, Height int
	// Transform is the 6-element affine (a, b, c, d, e, f) such that
	// easting = a*col + b*row + c, northing = d*col + e*row + f,
	// i.e. GDAL's GetGeoTransform order.
	Transform [6]float64
	NoData    float64
	CRSDef    string // a proj/EPSG-style init string, e.g. "epsg:32615"
	data      []float32
}

// At returns the elevation at (row, col), or NoData if out of bounds.
func (r *Raster) At(row, col int) float64 {
	if row < 0 || row >= r.Height || col < 0 || col >= r.Width {
		return r.NoData
	}
	return float64(r.data[row*r.Width+col])
}

// MinZ is the minimum of all non-nodata pixels (spec.md §3).
func (r *Raster) MinZ() float64 {
	min := math.Inf(1)
	for _, v := range r.data {
		fv := float64(v)
		if fv != r.NoData && fv < min {
			min = fv
		}
	}
	return min
}

// Index converts a world (x,y) in the raster's CRS to a (row,col) cell,
// per spec.md §3's index(x,y) -> (row,col).
func (r *Raster) Index(x, y float64) (row, col int) {
	a, b, c, d, e, f := r.Transform[0], r.Transform[1], r.Transform[2], r.Transform[3], r.Transform[4], r.Transform[5]
	det := a*e - b*d
	if det == 0 {
		return -1, -1
	}
	px := x - c
	py := y - f
	fcol := (e*px - b*py) / det
	frow := (-d*px + a*py) / det
	return int(math.Round(frow)), int(math.Round(fcol))
}

// XY is Index's inverse: the pixel-corner world coordinate of (row,col)
// (spec.md §3's index(x,y) -> (row,col) convention, its corner case).
// raycastTriangle consumes corners directly, matching the original
// source's transform * [x-1, y-1] cell-corner usage; callers wanting
// the pixel center should offset by half a pixel.
func (r *Raster) XY(row, col int) (x, y float64) {
	a, b, c, d, e, f := r.Transform[0], r.Transform[1], r.Transform[2], r.Transform[3], r.Transform[4], r.Transform[5]
	fc, fr := float64(col), float64(row)
	return a*fc + b*fr + c, d*fc + e*fr + f
}

// PixelSizeX is |Transform[0]|, used by the raycaster to size its step
// (spec.md §4.5).
func (r *Raster) PixelSizeX() float64 {
	return math.Abs(r.Transform[0])
}

// OpenRaster reads a single-band GeoTIFF fully into memory.
func OpenRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IOError("cannot open DEM %q: %v", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, IOError("cannot read DEM %q: %v", path, err)
	}
	return decodeGeoTIFF(data)
}

func decodeGeoTIFF(buf []byte) (*Raster, error) {
	if len(buf) < 8 {
		return nil, IOError("file too small to be a TIFF")
	}
	var order binary.ByteOrder
	switch string(buf[:4]) {
	case leHeader:
		order = binary.LittleEndian
	case beHeader:
		order = binary.BigEndian
	default:
		return nil, IOError("not a TIFF file (bad magic)")
	}

	ifdOffset := order.Uint32(buf[4:8])
	entries, err := readIFD(buf, order, ifdOffset)
	if err != nil {
		return nil, err
	}

	width := int(entryUint(entries, tImageWidth, order))
	height := int(entryUint(entries, tImageLength, order))
	if width <= 0 || height <= 0 {
		return nil, IOError("invalid DEM dimensions %dx%d", width, height)
	}
	bits := int(entryUint(entries, tBitsPerSample, order))
	sampleFormat := int(entryUint(entries, tSampleFormat, order))
	if sampleFormat == 0 {
		sampleFormat = sfUnsignedInt
	}
	compression := int(entryUint(entries, tCompression, order))
	if compression == 0 {
		compression = cNone
	}
	rowsPerStrip := int(entryUint(entries, tRowsPerStrip, order))
	if rowsPerStrip == 0 {
		rowsPerStrip = height
	}

	offsets := entryUints(entries, tStripOffsets, order)
	counts := entryUints(entries, tStripByteCounts, order)
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return nil, IOError("unsupported TIFF layout (tiled DEMs are not supported)")
	}

	raw := make([]byte, 0, width*height*4)
	for i, off := range offsets {
		n := counts[i]
		strip := buf[off : off+n]
		switch compression {
		case cNone:
			raw = append(raw, strip...)
		case cDeflate, cZIP:
			out, err := inflate(strip)
			if err != nil {
				return nil, IOError("deflate strip %d: %v", i, err)
			}
			raw = append(raw, out...)
		default:
			return nil, IOError("unsupported TIFF compression %d", compression)
		}
	}

	px, err := decodeSamples(raw, width, height, bits, sampleFormat, order)
	if err != nil {
		return nil, err
	}

	r := &Raster{Width: width, Height: height, data: px}
	r.Transform = geoTransform(entries, order)
	r.CRSDef = geoCRS(entries)
	if nd, ok := entryASCII(entries, tGDALNoData); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(nd), 64); err == nil {
			r.NoData = v
		}
	} else {
		r.NoData = math.MaxFloat32
	}
	_ = rowsPerStrip
	return r, nil
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func decodeSamples(raw []byte, width, height, bits, sampleFormat int, order binary.ByteOrder) ([]float32, error) {
	n := width * height
	out := make([]float32, n)
	switch {
	case sampleFormat == sfFloat && bits == 32:
		if len(raw) < n*4 {
			return nil, IOError("short pixel data: got %d bytes, want %d", len(raw), n*4)
		}
		for i := 0; i < n; i++ {
			bits := order.Uint32(raw[i*4:])
			out[i] = math.Float32frombits(bits)
		}
	case sampleFormat == sfFloat && bits == 64:
		if len(raw) < n*8 {
			return nil, IOError("short pixel data")
		}
		for i := 0; i < n; i++ {
			bits := order.Uint64(raw[i*8:])
			out[i] = float32(math.Float64frombits(bits))
		}
	case bits == 16 && sampleFormat == sfSignedInt:
		if len(raw) < n*2 {
			return nil, IOError("short pixel data")
		}
		for i := 0; i < n; i++ {
			out[i] = float32(int16(order.Uint16(raw[i*2:])))
		}
	case bits == 16:
		if len(raw) < n*2 {
			return nil, IOError("short pixel data")
		}
		for i := 0; i < n; i++ {
			out[i] = float32(order.Uint16(raw[i*2:]))
		}
	case bits == 8:
		if len(raw) < n {
			return nil, IOError("short pixel data")
		}
		for i := 0; i < n; i++ {
			out[i] = float32(raw[i])
		}
	default:
		return nil, IOError("unsupported sample layout: %d bits, format %d", bits, sampleFormat)
	}
	return out, nil
}

func readIFD(buf []byte, order binary.ByteOrder, offset uint32) ([]ifdEntry, error) {
	if int(offset)+2 > len(buf) {
		return nil, IOError("IFD offset out of range")
	}
	count := int(order.Uint16(buf[offset:]))
	entries := make([]ifdEntry, 0, count)
	p := int(offset) + 2
	for i := 0; i < count; i++ {
		if p+12 > len(buf) {
			return nil, IOError("truncated IFD entry")
		}
		tag := int(order.Uint16(buf[p:]))
		typ := int(order.Uint16(buf[p+2:]))
		cnt := int(order.Uint32(buf[p+4:]))
		valBytes := append([]byte(nil), buf[p+8:p+12]...)

		size := typeLen[typ] * cnt
		var raw []byte
		if size <= 4 {
			raw = valBytes[:max(size, 0)]
		} else {
			valOff := order.Uint32(valBytes)
			if int(valOff)+size > len(buf) {
				return nil, IOError("IFD value out of range for tag %d", tag)
			}
			raw = buf[valOff : int(valOff)+size]
		}
		entries = append(entries, ifdEntry{tag: tag, typ: typ, count: cnt, raw: raw})
		p += 12
	}
	return entries, nil
}

func findEntry(entries []ifdEntry, tag int) (ifdEntry, bool) {
	for _, e := range entries {
		if e.tag == tag {
			return e, true
		}
	}
	return ifdEntry{}, false
}

func entryUint(entries []ifdEntry, tag int, order binary.ByteOrder) uint64 {
	v := entryUints(entries, tag, order)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func entryUints(entries []ifdEntry, tag int, order binary.ByteOrder) []uint64 {
	e, ok := findEntry(entries, tag)
	if !ok {
		return nil
	}
	n := typeLen[e.typ]
	if n == 0 {
		return nil
	}
	out := make([]uint64, 0, e.count)
	for i := 0; i < e.count && (i+1)*n <= len(e.raw); i++ {
		chunk := e.raw[i*n : (i+1)*n]
		switch e.typ {
		case dtByte:
			out = append(out, uint64(chunk[0]))
		case dtShort:
			out = append(out, uint64(order.Uint16(chunk)))
		case dtLong:
			out = append(out, uint64(order.Uint32(chunk)))
		case dtSShort:
			out = append(out, uint64(int64(int16(order.Uint16(chunk)))))
		case dtSLong:
			out = append(out, uint64(int64(int32(order.Uint32(chunk)))))
		}
	}
	return out
}

func entryDoubles(entries []ifdEntry, tag int, order binary.ByteOrder) []float64 {
	e, ok := findEntry(entries, tag)
	if !ok {
		return nil
	}
	out := make([]float64, 0, e.count)
	for i := 0; i+8 <= len(e.raw); i += 8 {
		bits := order.Uint64(e.raw[i : i+8])
		out = append(out, math.Float64frombits(bits))
	}
	return out
}

func entryASCII(entries []ifdEntry, tag int) (string, bool) {
	e, ok := findEntry(entries, tag)
	if !ok {
		return "", false
	}
	s := string(e.raw)
	return strings.TrimRight(s, "\x00"), true
}

// geoTransform builds the affine transform from the GeoTIFF
// ModelPixelScale (33550) and ModelTiepoint (33922) tags: a tiepoint
// (i,j,k -> x,y,z) with pixel scale (sx,sy,sz) gives
// x = originX + col*sx, y = originY - row*sy.
func geoTransform(entries []ifdEntry, order binary.ByteOrder) [6]float64 {
	scale := entryDoubles(entries, tModelPixelScale, order)
	tie := entryDoubles(entries, tModelTiepoint, order)
	if len(scale) < 2 || len(tie) < 6 {
		return [6]float64{1, 0, 0, 0, -1, 0}
	}
	sx, sy := scale[0], scale[1]
	originX := tie[3] - tie[0]*sx
	originY := tie[4] + tie[1]*sy
	return [6]float64{sx, 0, originX, 0, -sy, originY}
}

// geoCRS is a best-effort CRS identifier; real GeoTIFF key parsing
// (GeoKeyDirectoryTag 34735) is not implemented, so callers are
// expected to supply the target EPSG/proj string out of band when it
// cannot be inferred. This keeps the DEM loader honest about what it
// does not do rather than guessing a CRS silently.
func geoCRS(entries []ifdEntry) string {
	return ""
}
