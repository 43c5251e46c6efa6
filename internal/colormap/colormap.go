// Package colormap provides the named colour scales used to tint barbs by
// wind speed.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot/palette"
)

var ErrUnknown = errors.New("unknown colormap")

// stop is a colour pinned to a data value.
type stop struct {
	value float64
	color color.NRGBA
}

type scale struct {
	stops    []stop
	min, max float64
}

// scales maps palette keys to their stops and default bounds in knots.
var scales = map[string]scale{
	"hy": {
		min: 0,
		max: 70,
		stops: []stop{
			{0, color.NRGBA{98, 113, 183, 255}},
			{5, color.NRGBA{57, 97, 159, 255}},
			{10, color.NRGBA{74, 148, 169, 255}},
			{15, color.NRGBA{77, 141, 123, 255}},
			{20, color.NRGBA{83, 165, 83, 255}},
			{25, color.NRGBA{53, 159, 53, 255}},
			{30, color.NRGBA{167, 157, 81, 255}},
			{35, color.NRGBA{159, 127, 58, 255}},
			{40, color.NRGBA{161, 108, 92, 255}},
			{45, color.NRGBA{129, 58, 78, 255}},
			{50, color.NRGBA{175, 80, 136, 255}},
			{55, color.NRGBA{117, 74, 147, 255}},
			{60, color.NRGBA{109, 97, 163, 255}},
			{65, color.NRGBA{68, 105, 141, 255}},
			{70, color.NRGBA{92, 144, 152, 255}},
		},
	},
	"gray": {
		min: 0,
		max: 70,
		stops: []stop{
			{0, color.NRGBA{220, 220, 220, 255}},
			{70, color.NRGBA{0, 0, 0, 255}},
		},
	},
}

// Names lists the registered palette keys in order.
func Names() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the colormap registered under name together with its default
// bounds. The returned map already spans [vmin, vmax].
func Get(name string) (cmap palette.ColorMap, vmin, vmax float64, err error) {
	s, ok := scales[name]
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w %q (have %v)", ErrUnknown, name, Names())
	}
	return &Map{stops: s.stops, min: s.min, max: s.max, alpha: 1}, s.min, s.max, nil
}

var _ palette.ColorMap = (*Map)(nil)

// Map is a piecewise linear palette.ColorMap. Stop values are rescaled from
// their native range onto [Min, Max].
type Map struct {
	stops    []stop
	min, max float64
	alpha    float64
}

// At returns the colour for v. Values outside the range clamp to the end
// colours and report palette.ErrUnderflow or palette.ErrOverflow.
func (m *Map) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	if m.max <= m.min {
		return nil, fmt.Errorf("colormap: max %g not above min %g", m.max, m.min)
	}
	first, last := m.stops[0], m.stops[len(m.stops)-1]
	// Position along the native stop range.
	p := first.value + (v-m.min)/(m.max-m.min)*(last.value-first.value)
	switch {
	case v < m.min:
		return m.withAlpha(first.color), palette.ErrUnderflow
	case v > m.max:
		return m.withAlpha(last.color), palette.ErrOverflow
	}
	for i := 1; i < len(m.stops); i++ {
		hi := m.stops[i]
		if p > hi.value {
			continue
		}
		lo := m.stops[i-1]
		f := (p - lo.value) / (hi.value - lo.value)
		return m.withAlpha(lerp(lo.color, hi.color, f)), nil
	}
	return m.withAlpha(last.color), nil
}

func (m *Map) withAlpha(c color.NRGBA) color.Color {
	c.A = uint8(math.Round(float64(c.A) * m.alpha))
	return c
}

func lerp(a, b color.NRGBA, f float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func (m *Map) Max() float64 { return m.max }
func (m *Map) Min() float64 { return m.min }
func (m *Map) SetMax(v float64) { m.max = v }
func (m *Map) SetMin(v float64) { m.min = v }
func (m *Map) Alpha() float64 { return m.alpha }
func (m *Map) SetAlpha(alpha float64) { m.alpha = alpha }

// Palette samples n evenly spaced colours across the range.
func (m *Map) Palette(n int) palette.Palette {
	colors := make(swatch, n)
	for i := range colors {
		v := m.min
		if n > 1 {
			v += float64(i) / float64(n-1) * (m.max - m.min)
		}
		c, err := m.At(v)
		if err != nil {
			c = color.Transparent
		}
		colors[i] = c
	}
	return colors
}

type swatch []color.Color

func (s swatch) Colors() []color.Color { return s }
