package render

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot/palette"

	"github.com/lox/hyplot/internal/coastline"
	"github.com/lox/hyplot/internal/colormap"
	"github.com/lox/hyplot/internal/graticule"
	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/windfield"
)

// Point is an x/y pair. In a Scene it is in projected degrees.
type Point struct {
	X, Y float64
}

// Barb is one wind glyph. U and V give the direction the glyph points, Speed
// its feathering and colour.
type Barb struct {
	X, Y  float64
	U, V  float64
	Speed float64
}

// Label is tick text anchored at a projected point.
type Label struct {
	X, Y   float64
	Text   string
	HAlign graticule.HAlign
	VAlign graticule.VAlign
}

// Scene is everything a Backend needs to draw one figure. Building it
// touches no drawing library.
type Scene struct {
	Width  float64 // inches
	Height float64 // inches
	DPI    float64
	Window graticule.Window

	Caption       string
	Barbs         []Barb
	Colormap      palette.ColorMap
	ColorbarTicks []float64
	Coastlines    [][]Point
	LonLines      []float64
	LatLines      []float64
	Labels        []Label

	Style Options

	Satellite string
	ValidTime time.Time
	MaxWind   windfield.MaxWind
}

// Request names what to draw and where to write it.
type Request struct {
	// Source is the product path or file name; its base name picks the
	// satellite label.
	Source string
	Box    models.BoundingBox
	Output string
	// Coastlines are unclipped shoreline geometries; nil skips the layer.
	Coastlines []orb.LineString
}

// BuildScene derives the figure geometry, statistics and layers for field.
func BuildScene(field *models.WindField, req Request, opts Options) (*Scene, error) {
	box := req.Box
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if err := field.Validate(); err != nil {
		return nil, fmt.Errorf("wind field: %w", err)
	}
	width, height, err := graticule.FigureSize(box, opts.BaseWidth)
	if err != nil {
		return nil, err
	}
	valid, err := windfield.ParseValidTime(field.ValidTime)
	if err != nil {
		return nil, err
	}
	cmap, vmin, vmax, err := colormap.Get(opts.Colormap)
	if err != nil {
		return nil, err
	}
	cmap.SetMin(vmin)
	cmap.SetMax(vmax)

	proj := graticule.Projection{CentralLongitude: opts.CentralLongitude}
	win := proj.Window(box)
	satellite := windfield.SourceLabelForPath(req.Source)
	peak := windfield.MaxWindInBox(field, box)

	s := &Scene{
		Width:         width,
		Height:        height,
		DPI:           opts.DPI(),
		Window:        win,
		Caption:       windfield.Caption(satellite, valid, peak),
		Colormap:      cmap,
		ColorbarTicks: opts.ColorbarTicks,
		Style:         opts,
		Satellite:     satellite,
		ValidTime:     valid,
		MaxWind:       peak,
	}

	cos, sin := windfield.Decompose(field.Speed, field.Dir)
	for i := range field.Lon {
		for j, lon := range field.Lon[i] {
			lat := field.Lat[i][j]
			if cos[i][j] == models.FillValue || models.Missing(lon) || models.Missing(lat) {
				continue
			}
			x, y := proj.Project(win, lon, lat)
			if !win.Contains(x, y) {
				continue
			}
			s.Barbs = append(s.Barbs, Barb{X: x, Y: y, U: sin[i][j], V: cos[i][j], Speed: field.Speed[i][j]})
		}
	}

	for _, ls := range coastline.Clip(req.Coastlines, box) {
		line := make([]Point, len(ls))
		for k, p := range ls {
			x, y := proj.Project(win, p[0], p[1])
			line[k] = Point{X: x, Y: y}
		}
		s.Coastlines = append(s.Coastlines, line)
	}

	grat := graticule.New(box, opts.TickSpacing)
	for _, lon := range grat.LonTicks {
		x, _ := proj.Project(win, float64(lon), 0)
		s.LonLines = append(s.LonLines, x)
	}
	for _, lat := range grat.LatTicks {
		s.LatLines = append(s.LatLines, float64(lat))
	}
	for _, l := range grat.Labels {
		x, y := proj.Project(win, l.Lon, l.Lat)
		s.Labels = append(s.Labels, Label{X: x, Y: y, Text: l.Text, HAlign: l.HAlign, VAlign: l.VAlign})
	}
	return s, nil
}
