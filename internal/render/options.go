package render

import "github.com/lox/hyplot/internal/graticule"

// Options carries every fixed layout and styling constant of a render.
type Options struct {
	// BaseWidth is the map width in inches; height follows the box.
	BaseWidth float64
	// PixelTarget is the rendered width of the map in pixels. DPI is
	// PixelTarget / BaseWidth.
	PixelTarget float64

	CentralLongitude float64
	TickSpacing      int

	Colormap      string
	ColorbarTicks []float64
	// ColorbarFraction is the bar width as a fraction of the map width,
	// ColorbarAspect the ratio of bar height to width. The narrower wins.
	ColorbarFraction float64
	ColorbarAspect   float64
	ColorbarFontSize float64

	// BarbLength is the staff length in points.
	BarbLength    float64
	BarbLineWidth float64

	CoastlineWidth float64
	GridlineWidth  float64

	CaptionFontSize float64
	CaptionX        float64 // axes fraction
	CaptionY        float64 // axes fraction
	CaptionAlpha    float64

	LabelFontSize float64
}

// DefaultOptions reproduces the reference figure: a 5 inch map rendered
// 1500 pixels wide.
func DefaultOptions() Options {
	return Options{
		BaseWidth:        5,
		PixelTarget:      1500,
		CentralLongitude: 180,
		TickSpacing:      graticule.DefaultSpacing,
		Colormap:         "hy",
		ColorbarTicks:    []float64{5, 15, 25, 35, 45, 55, 65},
		ColorbarFraction: 0.02,
		ColorbarAspect:   48,
		ColorbarFontSize: 5,
		BarbLength:       3.5,
		BarbLineWidth:    0.5,
		CoastlineWidth:   0.5,
		GridlineWidth:    0.6,
		CaptionFontSize:  6,
		CaptionX:         0.012,
		CaptionY:         0.987,
		CaptionAlpha:     0.5,
		LabelFontSize:    4,
	}
}

// DPI is the raster resolution that makes the map PixelTarget wide.
func (o Options) DPI() float64 {
	return o.PixelTarget / o.BaseWidth
}
