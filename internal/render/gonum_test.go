package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestGonum_PNG(t *testing.T) {
	opts := DefaultOptions()
	opts.PixelTarget = 200 // keep the test image small

	req := Request{
		Source:     testSource,
		Box:        referenceBox,
		Coastlines: []orb.LineString{{{150, -35}, {165, -32}}},
	}
	s, err := BuildScene(testField(), req, opts)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := (Gonum{}).Draw(s, "png", &buf); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	b := img.Bounds()
	// 5 in at 40 dpi, plus the colorbar strip.
	if b.Dx() <= 200 || b.Dx() > 240 {
		t.Errorf("width = %d px, want a little over 200", b.Dx())
	}
	if b.Dy() != 200 {
		t.Errorf("height = %d px, want 200", b.Dy())
	}

	// Bottom-right corner of the map is open water: background white.
	r, g, bl, _ := img.At(190, 190).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("background = %v, want white", img.At(190, 190))
	}

	// Something other than white must have been drawn.
	var inked bool
	for y := b.Min.Y; y < b.Max.Y && !inked; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 250 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("image is blank")
	}
}

func TestGonum_VectorFormats(t *testing.T) {
	s, err := BuildScene(testField(), Request{Source: testSource, Box: referenceBox}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		format string
		want   string
	}{
		{"svg", "<svg"},
		{"pdf", "%PDF-"},
		{"eps", "%!PS-Adobe"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (Gonum{}).Draw(s, tt.format, &buf); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("%s output lacks %q", tt.format, tt.want)
			}
		})
	}
}

func TestGonum_UnknownFormat(t *testing.T) {
	s, err := BuildScene(testField(), Request{Source: testSource, Box: referenceBox}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := (Gonum{}).Draw(s, "bmp", &bytes.Buffer{}); !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}
