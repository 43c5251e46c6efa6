package main

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/hyplot/internal/coastline"
	"github.com/lox/hyplot/internal/extract"
	"github.com/lox/hyplot/internal/fetch"
	"github.com/lox/hyplot/internal/metrics"
	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/render"
	"github.com/lox/hyplot/internal/store"
)

type RenderCmd struct {
	Input string `arg:"" help:"L2B product: a local path or an ftp:// or http(s):// URL."`

	BBox        models.BoundingBox `name:"bbox" default:"-40,-25,150,165" env:"HYPLOT_BBOX" help:"Map extent as latmin,latmax,lonmin,lonmax."`
	Output      string             `short:"o" help:"Output image; the extension picks the format. Defaults to the input name with .png."`
	Band        int                `default:"0" help:"Wind ambiguity to plot when the product carries several."`
	Coastline   string             `type:"path" env:"HYPLOT_COASTLINE" help:"Coastline GeoJSON, e.g. Natural Earth 10m."`
	Colormap    string             `default:"hy" enum:"hy,gray" help:"Barb colour scale (${enum})."`
	Width       float64            `default:"5" help:"Map width in inches."`
	Pixels      float64            `default:"1500" help:"Map width in pixels for raster output."`
	Catalog     string             `type:"path" env:"HYPLOT_CATALOG" help:"SQLite catalog to record the render in."`
	MetricsFile string             `name:"metrics-file" type:"path" env:"HYPLOT_METRICS_FILE" help:"Write Prometheus metrics to this textfile."`
	DownloadDir string             `name:"download-dir" type:"path" env:"HYPLOT_DOWNLOAD_DIR" help:"Directory for remote downloads (default: system temp)."`
}

func (c *RenderCmd) Run(ctx context.Context) error {
	if c.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(c.MetricsFile); werr != nil {
				log.Warn().Err(werr).Str("path", c.MetricsFile).Msg("metrics: write textfile")
			}
		}()
	}

	src, err := fetch.New(c.DownloadDir).Resolve(ctx, c.Input)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := src.Remove(); rerr != nil {
			log.Warn().Err(rerr).Str("path", src.Path).Msg("fetch: remove download")
		}
	}()

	field, err := extract.Open(src.Path, extract.Options{Band: c.Band})
	if err != nil {
		return err
	}

	req := render.Request{
		Source: c.Input,
		Box:    c.BBox,
		Output: c.Output,
	}
	if req.Output == "" {
		req.Output = defaultOutput(c.Input)
	}
	if c.Coastline != "" {
		if req.Coastlines, err = coastline.Load(c.Coastline); err != nil {
			return err
		}
	} else {
		log.Warn().Msg("render: no coastline file configured, skipping coastlines")
	}

	opts := render.DefaultOptions()
	opts.Colormap = c.Colormap
	opts.BaseWidth = c.Width
	opts.PixelTarget = c.Pixels

	res, err := render.Render(ctx, field, req, opts, render.Gonum{})
	if err != nil {
		return err
	}

	if c.Catalog != "" {
		if err := record(c.Catalog, c.Input, c.BBox, res); err != nil {
			return err
		}
	}

	fmt.Println(res.Output)
	return nil
}

// defaultOutput is the input's base name with a .png extension. URLs and
// paths are both handled since path.Base only looks at slashes.
func defaultOutput(input string) string {
	base := path.Base(strings.ReplaceAll(input, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base)) + ".png"
}

func record(catalog, source string, box models.BoundingBox, res *render.Result) error {
	st, err := store.Open(catalog)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.InsertRender(models.RenderRecord{
		Source:     source,
		Satellite:  res.Satellite,
		Box:        box,
		ValidTime:  res.ValidTime,
		MaxWind:    sql.NullFloat64{Float64: res.MaxWind.Value, Valid: res.MaxWind.Valid},
		Barbs:      res.Barbs,
		Output:     res.Output,
		Format:     res.Format,
		Duration:   res.Duration,
		RenderedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("record render: %w", err)
	}
	log.Debug().Int64("id", id).Str("catalog", catalog).Msg("catalog: recorded render")
	return nil
}
