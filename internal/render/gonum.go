package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/lox/hyplot/internal/graticule"
)

const (
	colorbarTickLength = 2   // points
	colorbarPad        = 1.5 // points
	colorbarSteps      = 128
)

// Gonum draws scenes with gonum/plot's vector graphics canvases.
type Gonum struct{}

// Draw renders s in the given format and writes it to w.
func (Gonum) Draw(s *Scene, format string, w io.Writer) error {
	if err := loadFonts(); err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}

	mapW := vg.Length(s.Width) * vg.Inch
	mapH := vg.Length(s.Height) * vg.Inch
	bar := colorbarLayout(s, mapW, mapH)

	cw, err := newCanvas(format, mapW+bar.width, mapH, s.DPI)
	if err != nil {
		return err
	}
	dc := draw.New(cw)

	m := mapFrame{Canvas: draw.Crop(dc, 0, -bar.width, 0, 0), win: s.Window}
	m.barbs(s)
	m.coastlines(s)
	m.gridlines(s)
	m.labels(s)
	m.caption(s)

	bar.draw(draw.Crop(dc, mapW, 0, 0, 0), s)

	if _, err := cw.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// newCanvas picks a canvas for format. Raster formats honour dpi.
func newCanvas(format string, w, h vg.Length, dpi float64) (vg.CanvasWriterTo, error) {
	raster := func() *vgimg.Canvas {
		return vgimg.NewWith(
			vgimg.UseWH(w, h),
			vgimg.UseDPI(int(dpi+0.5)),
			vgimg.UseBackgroundColor(color.White),
		)
	}
	switch format {
	case "png":
		return vgimg.PngCanvas{Canvas: raster()}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: raster()}, nil
	case "tif", "tiff":
		return vgimg.TiffCanvas{Canvas: raster()}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	case "eps":
		return vgeps.New(w, h), nil
	}
	return nil, fmt.Errorf("%w %q", ErrFormat, format)
}

// mapFrame maps projected degrees onto the map's part of the canvas.
type mapFrame struct {
	draw.Canvas
	win graticule.Window
}

func (m mapFrame) point(x, y float64) vg.Point {
	fx := (x - m.win.X0) / (m.win.X1 - m.win.X0)
	fy := (y - m.win.Y0) / (m.win.Y1 - m.win.Y0)
	return vg.Point{
		X: m.Min.X + vg.Length(fx)*(m.Max.X-m.Min.X),
		Y: m.Min.Y + vg.Length(fy)*(m.Max.Y-m.Min.Y),
	}
}

func (m mapFrame) barbs(s *Scene) {
	opts := s.Style
	for _, b := range s.Barbs {
		c, _ := s.Colormap.At(b.Speed)
		if c == nil {
			continue
		}
		shape, empty := barbShape(b.Speed, b.U, b.V, opts.BarbLength)
		at := m.point(b.X, b.Y)
		pts := make([]vg.Point, len(shape)+1)
		for i, p := range shape {
			pts[i] = vg.Point{X: at.X + vg.Points(p.X), Y: at.Y + vg.Points(p.Y)}
		}
		pts[len(shape)] = pts[0]

		sty := draw.LineStyle{Color: c, Width: vg.Points(opts.BarbLineWidth)}
		if !empty {
			m.FillPolygon(c, pts[:len(shape)])
		}
		m.StrokeLines(sty, pts)
	}
}

func (m mapFrame) coastlines(s *Scene) {
	sty := draw.LineStyle{Color: color.Black, Width: vg.Points(s.Style.CoastlineWidth)}
	for _, line := range s.Coastlines {
		pts := make([]vg.Point, len(line))
		for i, p := range line {
			pts[i] = m.point(p.X, p.Y)
		}
		m.StrokeLines(sty, pts)
	}
}

// gridlines draws dotted meridians and parallels across the whole window.
func (m mapFrame) gridlines(s *Scene) {
	lw := s.Style.GridlineWidth
	sty := draw.LineStyle{
		Color:  color.Black,
		Width:  vg.Points(lw),
		Dashes: []vg.Length{vg.Points(lw), vg.Points(1.65 * lw)},
	}
	for _, x := range s.LonLines {
		a, b := m.point(x, m.win.Y0), m.point(x, m.win.Y1)
		m.StrokeLine2(sty, a.X, a.Y, b.X, b.Y)
	}
	for _, y := range s.LatLines {
		a, b := m.point(m.win.X0, y), m.point(m.win.X1, y)
		m.StrokeLine2(sty, a.X, a.Y, b.X, b.Y)
	}
}

func (m mapFrame) labels(s *Scene) {
	for _, l := range s.Labels {
		sty := textStyle(medium(s.Style.LabelFontSize), color.Black)
		sty.XAlign = xAlign(l.HAlign)
		sty.YAlign = yAlign(l.VAlign)
		m.FillText(sty, m.point(l.X, l.Y), l.Text)
	}
}

// caption draws the annotation over a translucent white box, top-left
// anchored at an axes fraction.
func (m mapFrame) caption(s *Scene) {
	opts := s.Style
	sty := textStyle(medium(opts.CaptionFontSize), color.Black)
	sty.XAlign = text.XLeft
	sty.YAlign = text.YTop

	at := vg.Point{
		X: m.Min.X + vg.Length(opts.CaptionX)*(m.Max.X-m.Min.X),
		Y: m.Min.Y + vg.Length(opts.CaptionY)*(m.Max.Y-m.Min.Y),
	}
	pad := vg.Points(0.3 * opts.CaptionFontSize)
	w, h := sty.Width(s.Caption), sty.Height(s.Caption)
	box := []vg.Point{
		{X: at.X - pad, Y: at.Y + pad},
		{X: at.X + w + pad, Y: at.Y + pad},
		{X: at.X + w + pad, Y: at.Y - h - pad},
		{X: at.X - pad, Y: at.Y - h - pad},
	}
	m.FillPolygon(color.NRGBA{R: 255, G: 255, B: 255, A: uint8(opts.CaptionAlpha * 255)}, box)
	m.FillText(sty, at, s.Caption)
}

type colorbar struct {
	bar    vg.Length
	labelW vg.Length
	width  vg.Length
}

// colorbarLayout sizes the bar the way a fraction/aspect colorbar is sized:
// the narrower of fraction × map width and map height / aspect, plus room
// for tick labels.
func colorbarLayout(s *Scene, mapW, mapH vg.Length) colorbar {
	opts := s.Style
	bar := vg.Length(opts.ColorbarFraction) * mapW
	if byAspect := mapH / vg.Length(opts.ColorbarAspect); byAspect < bar {
		bar = byAspect
	}
	sty := textStyle(regular(opts.ColorbarFontSize), color.Black)
	var labelW vg.Length
	for _, t := range s.ColorbarTicks {
		if w := sty.Width(tickText(t)); w > labelW {
			labelW = w
		}
	}
	return colorbar{
		bar:    bar,
		labelW: labelW,
		width:  bar + vg.Points(colorbarTickLength+2*colorbarPad) + labelW,
	}
}

func (cb colorbar) draw(c draw.Canvas, s *Scene) {
	cmap := s.Colormap
	lo, hi := cmap.Min(), cmap.Max()
	x0, x1 := c.Min.X, c.Min.X+cb.bar
	height := c.Max.Y - c.Min.Y
	yAt := func(v float64) vg.Length {
		return c.Min.Y + vg.Length((v-lo)/(hi-lo))*height
	}

	for i := 0; i < colorbarSteps; i++ {
		v0 := lo + float64(i)/colorbarSteps*(hi-lo)
		v1 := lo + float64(i+1)/colorbarSteps*(hi-lo)
		col, err := cmap.At((v0 + v1) / 2)
		if err != nil {
			continue
		}
		c.FillPolygon(col, []vg.Point{
			{X: x0, Y: yAt(v0)}, {X: x1, Y: yAt(v0)},
			{X: x1, Y: yAt(v1)}, {X: x0, Y: yAt(v1)},
		})
	}

	edge := draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
	c.StrokeLines(edge, []vg.Point{
		{X: x0, Y: c.Min.Y}, {X: x1, Y: c.Min.Y},
		{X: x1, Y: c.Max.Y}, {X: x0, Y: c.Max.Y},
		{X: x0, Y: c.Min.Y},
	})

	sty := textStyle(regular(s.Style.ColorbarFontSize), color.Black)
	sty.XAlign = text.XLeft
	sty.YAlign = text.YCenter
	for _, t := range s.ColorbarTicks {
		if t < lo || t > hi {
			continue
		}
		y := yAt(t)
		c.StrokeLine2(edge, x1, y, x1+vg.Points(colorbarTickLength), y)
		c.FillText(sty, vg.Point{X: x1 + vg.Points(colorbarTickLength+colorbarPad), Y: y}, tickText(t))
	}
}

func tickText(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func textStyle(f font.Font, c color.Color) text.Style {
	return text.Style{
		Color:   c,
		Font:    f,
		Handler: text.Plain{Fonts: font.DefaultCache},
	}
}

func xAlign(a graticule.HAlign) text.XAlignment {
	switch a {
	case graticule.HLeft:
		return text.XLeft
	case graticule.HRight:
		return text.XRight
	}
	return text.XCenter
}

func yAlign(a graticule.VAlign) text.YAlignment {
	switch a {
	case graticule.VTop:
		return text.YTop
	case graticule.VCenter:
		return text.YCenter
	}
	return text.YBottom
}
