package render

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/lox/hyplot/internal/colormap"
	"github.com/lox/hyplot/internal/models"
)

const testSource = "H2B_OPER_SCA_L2B_OR_20210731T015738_20210731T034357_04277_dps_250_21_owv.h5"

var referenceBox = models.BoundingBox{LatMin: -40, LatMax: -25, LonMin: 150, LonMax: 165}

// testField is a 2x3 swath: one cell outside the box, one fill cell and four
// observations.
func testField() *models.WindField {
	return &models.WindField{
		Lat: [][]float64{
			{-30, -30, -30},
			{-28, -28, -10},
		},
		Lon: [][]float64{
			{152, 154, 156},
			{152, 154, 156},
		},
		Speed: [][]float64{
			{10, 22.26, models.FillValue},
			{0, 35, 80},
		},
		Dir: [][]float64{
			{90, 0, 45},
			{180, 270, 90},
		},
		ValidTime: "20210731T015738",
	}
}

func TestBuildScene(t *testing.T) {
	s, err := BuildScene(testField(), Request{Source: testSource, Box: referenceBox}, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	if s.Width != 5 || s.Height != 5 {
		t.Errorf("size = %vx%v in, want 5x5", s.Width, s.Height)
	}
	if s.DPI != 300 {
		t.Errorf("DPI = %v, want 300", s.DPI)
	}
	if s.Window.X0 != -30 || s.Window.X1 != -15 {
		t.Errorf("window x = [%v, %v], want [-30, -15]", s.Window.X0, s.Window.X1)
	}
	if s.Satellite != "HY-2B" {
		t.Errorf("Satellite = %q", s.Satellite)
	}
	if !s.MaxWind.Valid || s.MaxWind.Value != 35 {
		t.Errorf("MaxWind = %+v, want 35", s.MaxWind)
	}

	want := "HY-2B Scatterometer Level 2B 10-meter Wind (barbs) [kt]\nValid Time: 2021/07/31 0157Z | Max. Wind: 35.0kt"
	if s.Caption != want {
		t.Errorf("Caption = %q, want %q", s.Caption, want)
	}

	if len(s.Barbs) != 4 {
		t.Fatalf("len(Barbs) = %d, want 4", len(s.Barbs))
	}
	first := s.Barbs[0]
	if first.X != -28 || first.Y != -30 {
		t.Errorf("first barb at (%v, %v), want (-28, -30)", first.X, first.Y)
	}
	if math.Abs(first.U-10) > 1e-9 || math.Abs(first.V) > 1e-9 {
		t.Errorf("first barb (U, V) = (%v, %v), want (10, 0)", first.U, first.V)
	}
	if first.Speed != 10 {
		t.Errorf("first barb speed = %v", first.Speed)
	}
	for _, b := range s.Barbs {
		if b.Speed == 80 {
			t.Error("barb outside the box was kept")
		}
	}

	if len(s.LonLines) != 7 || s.LonLines[0] != -28 || s.LonLines[6] != -16 {
		t.Errorf("LonLines = %v", s.LonLines)
	}
	if len(s.LatLines) != 7 || s.LatLines[0] != -38 || s.LatLines[6] != -26 {
		t.Errorf("LatLines = %v", s.LatLines)
	}
	if len(s.Labels) != 14 {
		t.Errorf("len(Labels) = %d, want 14", len(s.Labels))
	}
	if s.Coastlines != nil {
		t.Errorf("Coastlines = %v, want none", s.Coastlines)
	}
}

func TestBuildScene_Coastlines(t *testing.T) {
	req := Request{
		Source: testSource,
		Box:    referenceBox,
		Coastlines: []orb.LineString{
			{{140, -30}, {160, -30}},
			{{0, 0}, {10, 10}},
		},
	}
	s, err := BuildScene(testField(), req, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Coastlines) != 1 {
		t.Fatalf("len(Coastlines) = %d, want 1", len(s.Coastlines))
	}
	line := s.Coastlines[0]
	if line[0] != (Point{-30, -30}) || line[len(line)-1] != (Point{-20, -30}) {
		t.Errorf("clipped coastline = %v", line)
	}
}

func TestBuildScene_Antimeridian(t *testing.T) {
	field := &models.WindField{
		Lat:       [][]float64{{0, 0, 0}},
		Lon:       [][]float64{{175, -175, 10}},
		Speed:     [][]float64{{10, 20, 30}},
		Dir:       [][]float64{{0, 0, 0}},
		ValidTime: "20240101T000000",
	}
	box := models.BoundingBox{LatMin: -10, LatMax: 10, LonMin: 170, LonMax: 200}
	s, err := BuildScene(field, Request{Source: "H2C_x.h5", Box: box}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Barbs) != 2 {
		t.Fatalf("len(Barbs) = %d, want 2", len(s.Barbs))
	}
	if s.Barbs[0].X != -5 || s.Barbs[1].X != 5 {
		t.Errorf("barb x = %v, %v, want -5, 5", s.Barbs[0].X, s.Barbs[1].X)
	}
}

func TestBuildScene_Errors(t *testing.T) {
	opts := DefaultOptions()

	bad := testField()
	bad.ValidTime = "yesterday"
	if _, err := BuildScene(bad, Request{Box: referenceBox}, opts); err == nil {
		t.Error("expected error for bad valid time")
	}

	ragged := testField()
	ragged.Speed = ragged.Speed[:1]
	if _, err := BuildScene(ragged, Request{Box: referenceBox}, opts); err == nil {
		t.Error("expected error for ragged grids")
	}

	flat := models.BoundingBox{LatMin: -30, LatMax: -30, LonMin: 150, LonMax: 165}
	if _, err := BuildScene(testField(), Request{Box: flat}, opts); !errors.Is(err, models.ErrInvalidBox) {
		t.Errorf("degenerate box err = %v, want ErrInvalidBox", err)
	}

	opts.Colormap = "rainbow"
	if _, err := BuildScene(testField(), Request{Box: referenceBox}, opts); !errors.Is(err, colormap.ErrUnknown) {
		t.Errorf("unknown colormap err = %v, want ErrUnknown", err)
	}
}

func TestBuildScene_NoData(t *testing.T) {
	field := testField()
	for i := range field.Speed {
		for j := range field.Speed[i] {
			field.Speed[i][j] = models.FillValue
		}
	}
	s, err := BuildScene(field, Request{Source: testSource, Box: referenceBox}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Barbs) != 0 {
		t.Errorf("len(Barbs) = %d, want 0", len(s.Barbs))
	}
	if !strings.HasSuffix(s.Caption, "Max. Wind: 0.0kt") {
		t.Errorf("Caption = %q", s.Caption)
	}
}
