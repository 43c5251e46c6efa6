package render

import "math"

// Barb proportions relative to the staff length.
const (
	barbSpacing = 0.125
	barbHeight  = 0.4
	barbWidth   = 0.25
	barbEmpty   = 0.15
)

// barbCounts rounds speed to the nearest 5 and splits it into 50 kt flags,
// 10 kt barbs and a 5 kt half barb. Calm winds are empty.
func barbCounts(speed float64) (flags, barbs int, half, empty bool) {
	mag := 5 * math.RoundToEven(speed/5)
	flags = int(mag / 50)
	mag -= float64(flags) * 50
	barbs = int(mag / 10)
	mag -= float64(barbs) * 10
	half = mag >= 5
	empty = !half && flags == 0 && barbs == 0
	return flags, barbs, half, empty
}

// barbShape returns the outline of a barb pivoting about its middle, in
// points relative to the pivot. The staff trails upwind of (u, v) with the
// feathers at its far end. Calm winds return a circle and empty=true.
func barbShape(speed, u, v, length float64) (poly []Point, empty bool) {
	var (
		fullHeight = length * barbHeight
		fullWidth  = length * barbWidth
		spacing    = length * barbSpacing
		endX       = 0.0
		endY       = -length / 2
	)

	flags, barbs, half, empty := barbCounts(speed)
	if empty {
		r := length * barbEmpty
		const n = 16
		poly = make([]Point, n)
		for i := range poly {
			a := 2 * math.Pi * float64(i) / n
			poly[i] = Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
		}
		return poly, true
	}

	poly = []Point{{endX, endY}}
	offset := length
	for i := 0; i < flags; i++ {
		if offset != length {
			offset += spacing / 2
		}
		poly = append(poly,
			Point{endX, endY + offset},
			Point{endX + fullHeight, endY - fullWidth/2 + offset},
			Point{endX, endY - fullWidth + offset},
		)
		offset -= fullWidth + spacing
	}
	for i := 0; i < barbs; i++ {
		poly = append(poly,
			Point{endX, endY + offset},
			Point{endX + fullHeight, endY + offset + fullWidth/2},
			Point{endX, endY + offset},
		)
		offset -= spacing
	}
	if half {
		if offset == length {
			poly = append(poly, Point{endX, endY + offset})
			offset -= 1.5 * spacing
		}
		poly = append(poly,
			Point{endX, endY + offset},
			Point{endX + fullHeight/2, endY + offset + fullWidth/4},
			Point{endX, endY + offset},
		)
	}

	// Unrotated, the feathers point up the y axis; turn them to face
	// against (u, v).
	rot := math.Atan2(v, u) + math.Pi/2
	sinR, cosR := math.Sincos(rot)
	for i, p := range poly {
		poly[i] = Point{
			X: p.X*cosR - p.Y*sinR,
			Y: p.X*sinR + p.Y*cosR,
		}
	}
	return poly, false
}
