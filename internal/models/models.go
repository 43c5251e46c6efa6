package models

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FillValue marks a grid cell with no observation.
const FillValue = 1e20

var ErrInvalidBox = errors.New("invalid bounding box")

// BoundingBox is a lat/lon rectangle in degrees.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Validate reports an error wrapping ErrInvalidBox unless both ranges are
// non-empty and finite.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.LatMin, b.LatMax, b.LonMin, b.LonMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound in %s", ErrInvalidBox, b)
		}
	}
	if b.LatMin >= b.LatMax {
		return fmt.Errorf("%w: lat-min %g must be below lat-max %g", ErrInvalidBox, b.LatMin, b.LatMax)
	}
	if b.LonMin >= b.LonMax {
		return fmt.Errorf("%w: lon-min %g must be below lon-max %g", ErrInvalidBox, b.LonMin, b.LonMax)
	}
	if b.LatMin < -90 || b.LatMax > 90 {
		return fmt.Errorf("%w: latitude outside [-90, 90]", ErrInvalidBox)
	}
	if b.LonMax-b.LonMin > 360 {
		return fmt.Errorf("%w: longitude span wider than 360", ErrInvalidBox)
	}
	return nil
}

// Contains reports whether the point lies inside the box, bounds included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lon <= b.LonMax && lon >= b.LonMin && lat <= b.LatMax && lat >= b.LatMin
}

// String formats the box as "latmin,latmax,lonmin,lonmax".
func (b BoundingBox) String() string {
	parts := []string{
		strconv.FormatFloat(b.LatMin, 'g', -1, 64),
		strconv.FormatFloat(b.LatMax, 'g', -1, 64),
		strconv.FormatFloat(b.LonMin, 'g', -1, 64),
		strconv.FormatFloat(b.LonMax, 'g', -1, 64),
	}
	return strings.Join(parts, ",")
}

func (b BoundingBox) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses "latmin,latmax,lonmin,lonmax".
func (b *BoundingBox) UnmarshalText(text []byte) error {
	fields := strings.Split(string(text), ",")
	if len(fields) != 4 {
		return fmt.Errorf("%w: want latmin,latmax,lonmin,lonmax, got %q", ErrInvalidBox, text)
	}
	var v [4]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidBox, f, err)
		}
		v[i] = x
	}
	box := BoundingBox{LatMin: v[0], LatMax: v[1], LonMin: v[2], LonMax: v[3]}
	if err := box.Validate(); err != nil {
		return err
	}
	*b = box
	return nil
}

// WindField is one swath of scatterometer wind retrievals. All four grids
// share the same shape. Speed is in knots, Dir in degrees clockwise from
// north, and missing cells hold FillValue.
type WindField struct {
	Lat       [][]float64
	Lon       [][]float64
	Speed     [][]float64
	Dir       [][]float64
	ValidTime string // YYYYMMDDTHHMMSS
}

// Validate checks that the grids are parallel.
func (f *WindField) Validate() error {
	rows := len(f.Lat)
	if len(f.Lon) != rows || len(f.Speed) != rows || len(f.Dir) != rows {
		return fmt.Errorf("grid rows differ: lat=%d lon=%d speed=%d dir=%d", rows, len(f.Lon), len(f.Speed), len(f.Dir))
	}
	for i := range f.Lat {
		cols := len(f.Lat[i])
		if len(f.Lon[i]) != cols || len(f.Speed[i]) != cols || len(f.Dir[i]) != cols {
			return fmt.Errorf("grid row %d: column counts differ", i)
		}
	}
	return nil
}

// Missing reports whether v is the fill sentinel or NaN.
func Missing(v float64) bool {
	return v == FillValue || math.IsNaN(v)
}

// RenderRecord is one catalogued render.
type RenderRecord struct {
	ID         int64
	Source     string
	Satellite  string
	Box        BoundingBox
	ValidTime  time.Time
	MaxWind    sql.NullFloat64
	Barbs      int
	Output     string
	Format     string
	Duration   time.Duration
	RenderedAt time.Time
}
