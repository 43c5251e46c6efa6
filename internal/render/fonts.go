package render

import (
	"fmt"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

const typeface = "Go"

var (
	fontOnce sync.Once
	fontErr  error
)

// loadFonts registers the Go Regular and Medium faces with gonum's font
// cache. Safe to call repeatedly.
func loadFonts() error {
	fontOnce.Do(func() {
		faces := []struct {
			name   string
			ttf    []byte
			weight xfont.Weight
		}{
			{"Go-Regular", goregular.TTF, xfont.WeightNormal},
			{"Go-Medium", gomedium.TTF, xfont.WeightMedium},
		}
		var coll font.Collection
		for _, f := range faces {
			parsed, err := opentype.Parse(f.ttf)
			if err != nil {
				fontErr = fmt.Errorf("parse %s: %w", f.name, err)
				return
			}
			coll = append(coll, font.Face{
				Font: font.Font{Typeface: typeface, Weight: f.weight},
				Face: parsed,
			})
		}
		font.DefaultCache.Add(coll)
	})
	return fontErr
}

// medium is the caption and label face at size points.
func medium(size float64) font.Font {
	return font.Font{Typeface: typeface, Weight: xfont.WeightMedium, Size: vg.Points(size)}
}

func regular(size float64) font.Font {
	return font.Font{Typeface: typeface, Weight: xfont.WeightNormal, Size: vg.Points(size)}
}
