// Package graticule lays out the map frame: figure size, the latitude and
// longitude ticks, and the text labels that stand in for axis decoration.
package graticule

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lox/hyplot/internal/models"
)

var ErrDegenerateBox = errors.New("degenerate bounding box")

// DefaultSpacing is the distance between gridlines in degrees.
const DefaultSpacing = 2

// FigureSize returns a (width, height) pair whose ratio matches the box's
// lat/lon extent.
func FigureSize(box models.BoundingBox, width float64) (w, h float64, err error) {
	dlon := box.LonMax - box.LonMin
	dlat := box.LatMax - box.LatMin
	if dlon == 0 || dlat == 0 || math.IsNaN(dlon) || math.IsNaN(dlat) {
		return 0, 0, fmt.Errorf("%w: %s", ErrDegenerateBox, box)
	}
	return width, width * dlat / dlon, nil
}

// HAlign is the horizontal anchor of a label.
type HAlign int

const (
	HCenter HAlign = iota
	HLeft
	HRight
)

func (a HAlign) String() string {
	switch a {
	case HLeft:
		return "left"
	case HRight:
		return "right"
	}
	return "center"
}

// VAlign is the vertical anchor of a label.
type VAlign int

const (
	VCenter VAlign = iota
	VTop
	VBottom
	VBaseline
)

func (a VAlign) String() string {
	switch a {
	case VTop:
		return "top"
	case VBottom:
		return "bottom"
	case VBaseline:
		return "baseline"
	}
	return "center"
}

// Ticks returns the multiples of step lying strictly between lo and hi.
// Candidates start one step below lo rounded down and stop one step above hi
// rounded up.
func Ticks(lo, hi float64, step int) []int {
	s := float64(step)
	start := int(lo-floorMod(lo, s)) - step
	stop := int(hi-floorMod(hi, -s)) + step

	var ticks []int
	for v := start; v < stop; v += step {
		if x := float64(v); x > lo && x < hi {
			ticks = append(ticks, v)
		}
	}
	return ticks
}

// LonAlign picks the anchor for longitude labels: right when the last tick
// is within 2% below lon-max, left when the first is within 2% above lon-min.
// No ticks means center.
func LonAlign(ticks []int, lonMin, lonMax float64) HAlign {
	if len(ticks) == 0 {
		return HCenter
	}
	if r := float64(ticks[len(ticks)-1]) / lonMax; r > 0.98 && r < 1 {
		return HRight
	}
	if r := float64(ticks[0]) / lonMin; r >= 1 && r < 1.02 {
		return HLeft
	}
	return HCenter
}

// LatAlign is LonAlign for latitude labels: top, bottom or center.
func LatAlign(ticks []int, latMin, latMax float64) VAlign {
	if len(ticks) == 0 {
		return VCenter
	}
	if r := float64(ticks[len(ticks)-1]) / latMax; r > 0.98 && r < 1 {
		return VTop
	}
	if r := float64(ticks[0]) / latMin; r >= 1 && r < 1.02 {
		return VBottom
	}
	return VCenter
}

// FoldLongitudes maps ticks above 180 into the -180..180 display range. The
// input is left untouched.
func FoldLongitudes(ticks []int) []int {
	out := make([]int, len(ticks))
	for i, v := range ticks {
		if v > 180 {
			v -= 360
		}
		out[i] = v
	}
	return out
}

// LonLabel formats a longitude tick and returns the coordinate used to test
// it against the box. Negative ticks compare as their 0..360 equivalent.
func LonLabel(tick int) (text string, cmp int) {
	switch {
	case tick > 180:
		return strconv.Itoa(360-tick) + "°W", tick
	case tick > 0 && tick < 180:
		return strconv.Itoa(tick) + "°E", tick
	case tick < 0:
		return strconv.Itoa(-tick) + "°W", 360 + tick
	default:
		return strconv.Itoa(tick) + "°", tick
	}
}

// LatLabel formats a latitude tick.
func LatLabel(tick int) string {
	switch {
	case tick > 0:
		return strconv.Itoa(tick) + "°N"
	case tick < 0:
		return strconv.Itoa(-tick) + "°S"
	default:
		return strconv.Itoa(tick) + "°"
	}
}

// Label is a piece of tick text placed at a geographic position.
type Label struct {
	Lon    float64
	Lat    float64
	Text   string
	HAlign HAlign
	VAlign VAlign
}

// Graticule holds gridline positions and their labels for one box.
type Graticule struct {
	LonTicks []int // folded into -180..180
	LatTicks []int
	Labels   []Label
}

// New lays out the graticule for box at the given spacing in degrees.
// Latitude labels sit on the western edge, longitude labels on the southern
// edge. Ticks whose comparison coordinate leaves the box get no label.
func New(box models.BoundingBox, spacing int) Graticule {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	lons := Ticks(box.LonMin, box.LonMax, spacing)
	lats := Ticks(box.LatMin, box.LatMax, spacing)
	ha := LonAlign(lons, box.LonMin, box.LonMax)
	va := LatAlign(lats, box.LatMin, box.LatMax)

	g := Graticule{
		LonTicks: FoldLongitudes(lons),
		LatTicks: lats,
	}
	for _, lat := range lats {
		if float64(lat) < box.LatMin || float64(lat) > box.LatMax {
			continue
		}
		g.Labels = append(g.Labels, Label{
			Lon:    box.LonMin,
			Lat:    float64(lat),
			Text:   LatLabel(lat),
			HAlign: HLeft,
			VAlign: va,
		})
	}
	for _, lon := range g.LonTicks {
		text, cmp := LonLabel(lon)
		if float64(cmp) < box.LonMin || float64(cmp) > box.LonMax {
			continue
		}
		g.Labels = append(g.Labels, Label{
			Lon:    float64(lon),
			Lat:    box.LatMin,
			Text:   text,
			HAlign: ha,
			VAlign: VBaseline,
		})
	}
	return g
}

// floorMod is the remainder of a/b carrying the sign of b.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}
