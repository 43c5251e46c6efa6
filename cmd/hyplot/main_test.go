package main

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/store"
)

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"H2B_OPER_SCA_L2B_OR_20210731T015738_20210731T034357_04277_dps_250_21_owv.h5", "H2B_OPER_SCA_L2B_OR_20210731T015738_20210731T034357_04277_dps_250_21_owv.png"},
		{"data/H2C/H2C_owv.h5", "H2C_owv.png"},
		{"ftp://example.com/HY2B/L2B/H2B_owv.h5", "H2B_owv.png"},
		{`C:\data\H2A_owv.nc`, "H2A_owv.png"},
		{"noext", "noext.png"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.in); got != tt.want {
			t.Errorf("defaultOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	renders := []models.RenderRecord{
		{
			Satellite:  "HY-2B",
			Box:        models.BoundingBox{LatMin: -40, LatMax: -25, LonMin: 150, LonMax: 165},
			ValidTime:  time.Date(2021, 7, 31, 3, 43, 57, 0, time.UTC),
			MaxWind:    sql.NullFloat64{Float64: 35.5, Valid: true},
			Barbs:      812,
			Output:     "map.png",
			RenderedAt: time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Satellite:  "HY-2C",
			Box:        models.BoundingBox{LatMin: -10, LatMax: 10, LonMin: 170, LonMax: 200},
			ValidTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Output:     "empty.png",
			RenderedAt: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := printHistory(&buf, renders); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"HY-2B", "2021/07/31 0343Z", "-40,-25,150,165", "35.5kt", "812"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.Contains(lines[2], "0.0kt") {
		t.Errorf("row without data should read 0.0kt: %q", lines[2])
	}
}

func TestCLI_EnvFileDefault(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range parser.Model.Flags {
		if f.Name == "env-file" {
			if f.Default != ".env" {
				t.Errorf("env-file default = %q, want .env", f.Default)
			}
			return
		}
	}
	t.Error("no env-file flag")
}

func TestHistoryCmd_Latest(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.db")
	st, err := store.Open(catalog)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, valid := range []time.Time{base.Add(time.Hour), base} {
		if _, err := st.InsertRender(models.RenderRecord{
			Source:     "H2B_owv.h5",
			Satellite:  "HY-2B",
			Box:        models.BoundingBox{LatMin: -40, LatMax: -25, LonMin: 150, LonMax: 165},
			ValidTime:  valid,
			Output:     "map.png",
			Format:     "png",
			RenderedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	cmd := &HistoryCmd{Catalog: catalog, Satellite: "HY-2B", Limit: 20, Latest: true}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	got, err := cmd.renders(st)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].ValidTime.Equal(base.Add(time.Hour)) {
		t.Errorf("latest = %+v", got)
	}

	cmd.Latest = false
	if got, err = cmd.renders(st); err != nil || len(got) != 2 {
		t.Errorf("list = %d rows, %v; want 2", len(got), err)
	}

	none := &HistoryCmd{Catalog: catalog, Satellite: "HY-2C", Latest: true}
	if got, err = none.renders(st); err != nil || len(got) != 0 {
		t.Errorf("unknown satellite = %+v, %v", got, err)
	}

	if err := (&HistoryCmd{Latest: true}).Validate(); err == nil {
		t.Error("--latest without --satellite should fail validation")
	}
}
