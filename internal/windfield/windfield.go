// Package windfield derives the statistics and vectors plotted from a
// scatterometer wind swath.
package windfield

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lox/hyplot/internal/models"
)

const (
	// ValidTimeLayout is how L2B products stamp their swath time.
	ValidTimeLayout = "20060102T150405"
	// DisplayTimeLayout is how the caption shows it.
	DisplayTimeLayout = "2006/01/02 1504Z"
)

var satellites = map[string]string{
	"H2A": "HY-2A",
	"H2B": "HY-2B",
	"H2C": "HY-2C",
}

// SourceLabel names the satellite from the first three characters of a
// product file name. Unknown prefixes fall back to the mission name.
func SourceLabel(name string) string {
	if len(name) >= 3 {
		if label, ok := satellites[name[:3]]; ok {
			return label
		}
	}
	return "HY-2"
}

// SourceLabelForPath applies SourceLabel to the base name of path.
func SourceLabelForPath(path string) string {
	return SourceLabel(filepath.Base(path))
}

// MaxWind is the strongest wind in a box. Valid is false when no cell in the
// box held an observation.
type MaxWind struct {
	Value float64
	Valid bool
}

// String formats the value to one decimal; no data reads "0.0".
func (m MaxWind) String() string {
	if !m.Valid {
		return "0.0"
	}
	return strconv.FormatFloat(m.Value, 'f', 1, 64)
}

// MaxWindInBox returns the maximum speed over cells inside box, bounds
// included, ignoring fill cells. The result is rounded to one decimal, ties to even.
func MaxWindInBox(f *models.WindField, box models.BoundingBox) MaxWind {
	var m MaxWind
	for i := range f.Lon {
		for j := range f.Lon[i] {
			if !box.Contains(f.Lat[i][j], f.Lon[i][j]) {
				continue
			}
			v := f.Speed[i][j]
			if models.Missing(v) {
				continue
			}
			if !m.Valid || v > m.Value {
				m = MaxWind{Value: v, Valid: true}
			}
		}
	}
	if m.Valid {
		m.Value = math.RoundToEven(m.Value*10) / 10
	}
	return m
}

// Decompose splits speed and direction (degrees) into the two components the
// barbs are drawn from: cos = speed·cos(dir), sin = speed·sin(dir). Fill
// cells stay FillValue in both outputs.
func Decompose(speed, dir [][]float64) (cos, sin [][]float64) {
	cos = make([][]float64, len(speed))
	sin = make([][]float64, len(speed))
	for i := range speed {
		cos[i] = make([]float64, len(speed[i]))
		sin[i] = make([]float64, len(speed[i]))
		for j, s := range speed[i] {
			d := dir[i][j]
			if models.Missing(s) || models.Missing(d) {
				cos[i][j] = models.FillValue
				sin[i][j] = models.FillValue
				continue
			}
			rad := d * math.Pi / 180
			cos[i][j] = s * math.Cos(rad)
			sin[i][j] = s * math.Sin(rad)
		}
	}
	return cos, sin
}

// ParseValidTime parses a YYYYMMDDTHHMMSS stamp as UTC.
func ParseValidTime(s string) (time.Time, error) {
	t, err := time.Parse(ValidTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse valid time %q: %w", s, err)
	}
	return t, nil
}

// Caption is the two line annotation printed in the top-left of the map.
func Caption(label string, valid time.Time, peak MaxWind) string {
	return fmt.Sprintf("%s Scatterometer Level 2B 10-meter Wind (barbs) [kt]\nValid Time: %s | Max. Wind: %skt",
		label, valid.UTC().Format(DisplayTimeLayout), peak)
}
