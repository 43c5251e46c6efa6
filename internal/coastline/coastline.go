// Package coastline loads shoreline geometry (e.g. Natural Earth
// ne_10m_coastline.geojson) and clips it to a map box.
package coastline

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"

	"github.com/lox/hyplot/internal/models"
)

// Load reads a GeoJSON feature collection and flattens every line and
// polygon ring into line strings.
func Load(path string) ([]orb.LineString, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coastline: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse coastline %s: %w", path, err)
	}

	var lines []orb.LineString
	for _, f := range fc.Features {
		lines = appendLines(lines, f.Geometry)
	}
	return lines, nil
}

func appendLines(lines []orb.LineString, g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		lines = append(lines, g)
	case orb.MultiLineString:
		lines = append(lines, g...)
	case orb.Ring:
		lines = append(lines, orb.LineString(g))
	case orb.Polygon:
		for _, r := range g {
			lines = append(lines, orb.LineString(r))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			lines = appendLines(lines, p)
		}
	case orb.Collection:
		for _, c := range g {
			lines = appendLines(lines, c)
		}
	}
	return lines
}

// Clip keeps the parts of lines that fall inside box. Source data is in
// -180..180, so boxes running past the antimeridian are also matched against
// copies shifted a full turn east and west. Returned coordinates keep the
// shift, so they lie inside the box's own longitude range.
func Clip(lines []orb.LineString, box models.BoundingBox) []orb.LineString {
	bound := orb.Bound{
		Min: orb.Point{box.LonMin, box.LatMin},
		Max: orb.Point{box.LonMax, box.LatMax},
	}

	var out []orb.LineString
	for _, ls := range lines {
		lb := ls.Bound()
		for _, shift := range []float64{0, 360, -360} {
			sb := orb.Bound{
				Min: orb.Point{lb.Min[0] + shift, lb.Min[1]},
				Max: orb.Point{lb.Max[0] + shift, lb.Max[1]},
			}
			if !sb.Intersects(bound) {
				continue
			}
			for _, part := range clip.LineString(bound, shifted(ls, shift)) {
				if len(part) >= 2 {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func shifted(ls orb.LineString, dx float64) orb.LineString {
	if dx == 0 {
		return ls
	}
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = orb.Point{p[0] + dx, p[1]}
	}
	return out
}
