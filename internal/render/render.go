// Package render turns a wind field into a wind barb map image.
package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/hyplot/internal/metrics"
	"github.com/lox/hyplot/internal/models"
	"github.com/lox/hyplot/internal/windfield"
)

// Result describes a written map.
type Result struct {
	Output    string
	Format    string
	Satellite string
	ValidTime time.Time
	MaxWind   windfield.MaxWind
	Barbs     int
	Duration  time.Duration
}

// Render builds the scene for field and writes it to req.Output with
// backend. A failed render leaves no file behind.
func Render(ctx context.Context, field *models.WindField, req Request, opts Options, backend Backend) (*Result, error) {
	start := time.Now()
	req.Output = OutputPath(req.Output)

	format, err := FormatFor(req.Output)
	if err != nil {
		return nil, err
	}

	scene, err := BuildScene(field, req, opts)
	if err != nil {
		metrics.RendersTotal.WithLabelValues(windfield.SourceLabelForPath(req.Source), "error").Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = writeAtomic(req.Output, func(w io.Writer) error {
		return backend.Draw(scene, format, w)
	})
	if err != nil {
		metrics.RendersTotal.WithLabelValues(scene.Satellite, "error").Inc()
		return nil, fmt.Errorf("write %s: %w", req.Output, err)
	}

	res := &Result{
		Output:    req.Output,
		Format:    format,
		Satellite: scene.Satellite,
		ValidTime: scene.ValidTime,
		MaxWind:   scene.MaxWind,
		Barbs:     len(scene.Barbs),
		Duration:  time.Since(start),
	}

	metrics.RendersTotal.WithLabelValues(res.Satellite, "ok").Inc()
	metrics.RenderDuration.WithLabelValues(format).Observe(res.Duration.Seconds())
	metrics.BarbsDrawn.WithLabelValues(res.Satellite).Add(float64(res.Barbs))
	if res.MaxWind.Valid {
		metrics.MaxWindKnots.WithLabelValues(res.Satellite).Set(res.MaxWind.Value)
	} else {
		metrics.MaxWindKnots.DeleteLabelValues(res.Satellite)
	}

	log.Info().
		Str("output", res.Output).
		Str("satellite", res.Satellite).
		Time("valid_time", res.ValidTime).
		Str("max_wind", res.MaxWind.String()).
		Int("barbs", res.Barbs).
		Dur("duration", res.Duration).
		Msg("render: wrote map")

	return res, nil
}
