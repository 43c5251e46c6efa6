package graticule

import "github.com/lox/hyplot/internal/models"

// seam is how far west of the window's edge a point may fall before it is
// wrapped a full turn east.
const seam = 1e-6

// Projection is plate carrée centred on CentralLongitude. Centring on 180
// keeps Pacific boxes from being split at the antimeridian.
type Projection struct {
	CentralLongitude float64
}

// X returns the projected x of lon in degrees, within [-180, 180).
func (p Projection) X(lon float64) float64 {
	return floorMod(lon-p.CentralLongitude+180, 360) - 180
}

// Window is the visible extent in projected degrees.
type Window struct {
	X0, X1 float64
	Y0, Y1 float64
}

// Window returns the projected extent of box. X1 may exceed 180 when the box
// straddles the projection's seam.
func (p Projection) Window(box models.BoundingBox) Window {
	x0 := p.X(box.LonMin)
	return Window{
		X0: x0,
		X1: x0 + (box.LonMax - box.LonMin),
		Y0: box.LatMin,
		Y1: box.LatMax,
	}
}

// Project maps a geographic point into w, unwrapping longitude so that any
// point inside the box lands inside [X0, X1].
func (p Projection) Project(w Window, lon, lat float64) (x, y float64) {
	d := floorMod(p.X(lon)-w.X0, 360)
	if d > 360-seam {
		d -= 360
	}
	return w.X0 + d, lat
}

// Contains reports whether a projected point lies in w.
func (w Window) Contains(x, y float64) bool {
	return x >= w.X0 && x <= w.X1 && y >= w.Y0 && y <= w.Y1
}
