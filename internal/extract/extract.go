// Package extract reads HY-2 scatterometer Level 2B wind products.
//
// L2B files are HDF5 (NetCDF-4 compatible). Each wind vector cell variable is
// a row × cell grid, sometimes with a trailing ambiguity dimension, stored as
// scaled integers with _FillValue, scale_factor and add_offset attributes.
package extract

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/rs/zerolog/log"

	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/windfield"
)

// knotsPerMetre converts m/s to knots.
const knotsPerMetre = 3600.0 / 1852.0

var (
	ErrVariable  = errors.New("wind variable")
	ErrValidTime = errors.New("no valid time")
)

// Variables names the datasets holding each grid.
type Variables struct {
	Lat   string
	Lon   string
	Speed string
	Dir   string
}

// DefaultVariables are the dataset names used by NSOAS L2B products.
var DefaultVariables = Variables{
	Lat:   "wvc_lat",
	Lon:   "wvc_lon",
	Speed: "wind_speed_selection",
	Dir:   "wind_dir_selection",
}

// Options configures a read.
type Options struct {
	Variables Variables
	// Band selects the ambiguity when a variable has three dimensions.
	Band int
}

// Open reads the wind field from the product at path.
func Open(path string, opts Options) (*models.WindField, error) {
	vars := opts.Variables
	if vars == (Variables{}) {
		vars = DefaultVariables
	}

	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	f := &models.WindField{}
	for _, v := range []struct {
		name string
		dst  *[][]float64
		wind bool
	}{
		{vars.Lat, &f.Lat, false},
		{vars.Lon, &f.Lon, false},
		{vars.Speed, &f.Speed, true},
		{vars.Dir, &f.Dir, false},
	} {
		grid, err := readGrid(nc, v.name, opts.Band, v.wind)
		if err != nil {
			return nil, err
		}
		*v.dst = grid
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.ValidTime, err = validTime(nc.Attributes(), path)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("rows", len(f.Lat)).
		Str("valid_time", f.ValidTime).
		Msg("extract: read wind field")
	return f, nil
}

// readGrid loads one variable as float64, applying scale, offset and unit
// conversion. Fill cells become models.FillValue.
func readGrid(g api.Group, name string, band int, wind bool) ([][]float64, error) {
	vr, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrVariable, name, err)
	}
	raw, err := toGrid(vr.Values, band)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrVariable, name, err)
	}

	fill, hasFill := attrFloat(vr.Attributes, "_FillValue")
	scale, ok := attrFloat(vr.Attributes, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attrFloat(vr.Attributes, "add_offset")
	if wind && isMetresPerSecond(attrString(vr.Attributes, "units")) {
		scale *= knotsPerMetre
		offset *= knotsPerMetre
	}

	for i := range raw {
		for j, v := range raw[i] {
			if (hasFill && v == fill) || math.IsNaN(v) {
				raw[i][j] = models.FillValue
				continue
			}
			raw[i][j] = v*scale + offset
		}
	}
	return raw, nil
}

func isMetresPerSecond(units string) bool {
	switch strings.ToLower(strings.ReplaceAll(units, " ", "")) {
	case "m/s", "ms-1", "ms**-1", "m.s-1", "meter/second", "metre/second":
		return true
	}
	return false
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func grid2[T number](v [][]T) [][]float64 {
	out := make([][]float64, len(v))
	for i, row := range v {
		out[i] = make([]float64, len(row))
		for j, x := range row {
			out[i][j] = float64(x)
		}
	}
	return out
}

func grid3[T number](v [][][]T, band int) ([][]float64, error) {
	out := make([][]float64, len(v))
	for i, row := range v {
		out[i] = make([]float64, len(row))
		for j, cell := range row {
			if band < 0 || band >= len(cell) {
				return nil, fmt.Errorf("band %d out of range [0, %d)", band, len(cell))
			}
			out[i][j] = float64(cell[band])
		}
	}
	return out, nil
}

// toGrid flattens the decoded dataset into a row × cell grid.
func toGrid(values any, band int) ([][]float64, error) {
	switch v := values.(type) {
	case [][]float64:
		return grid2(v), nil
	case [][]float32:
		return grid2(v), nil
	case [][]int64:
		return grid2(v), nil
	case [][]int32:
		return grid2(v), nil
	case [][]int16:
		return grid2(v), nil
	case [][]int8:
		return grid2(v), nil
	case [][]uint64:
		return grid2(v), nil
	case [][]uint32:
		return grid2(v), nil
	case [][]uint16:
		return grid2(v), nil
	case [][]uint8:
		return grid2(v), nil
	case [][][]float64:
		return grid3(v, band)
	case [][][]float32:
		return grid3(v, band)
	case [][][]int32:
		return grid3(v, band)
	case [][][]int16:
		return grid3(v, band)
	case [][][]uint16:
		return grid3(v, band)
	case [][][]int8:
		return grid3(v, band)
	}
	return nil, fmt.Errorf("unsupported layout %T", values)
}

// attrFloat returns a numeric attribute, taking the first element of arrays.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	val, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint8:
		return float64(v), true
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

func attrString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs.Get(key)
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

var (
	stampInName = regexp.MustCompile(`\d{8}T\d{6}`)
	digits      = regexp.MustCompile(`\d`)
)

// validTime returns the swath end time as YYYYMMDDTHHMMSS. The
// Range_Ending_Time global attribute wins; otherwise the file name's swath
// end stamp is used.
func validTime(attrs api.AttributeMap, path string) (string, error) {
	if s := attrString(attrs, "Range_Ending_Time"); s != "" {
		if stamp, ok := normalizeStamp(s); ok {
			return stamp, nil
		}
		log.Warn().Str("value", s).Msg("extract: unparseable Range_Ending_Time, using file name")
	}
	return validTimeFromName(filepath.Base(path))
}

// validTimeFromName picks the swath end stamp from names like
// H2C_OPER_SCA_L2B_OR_20210731T015738_20210731T034357_04277_dps_250_21_owv.h5.
func validTimeFromName(name string) (string, error) {
	stamps := stampInName.FindAllString(name, -1)
	if len(stamps) == 0 {
		return "", fmt.Errorf("%w in %q", ErrValidTime, name)
	}
	return stamps[min(len(stamps), 2)-1], nil
}

// normalizeStamp turns "2021-07-31T03:43:57" and similar into
// "20210731T034357".
func normalizeStamp(s string) (string, bool) {
	d := strings.Join(digits.FindAllString(s, -1), "")
	if len(d) < 14 {
		return "", false
	}
	stamp := d[:8] + "T" + d[8:14]
	if _, err := windfield.ParseValidTime(stamp); err != nil {
		return "", false
	}
	return stamp, true
}
