package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyplot_renders_total",
			Help: "Total wind barb maps rendered",
		},
		[]string{"satellite", "status"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hyplot_render_duration_seconds",
			Help:    "Time spent building and encoding a map",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	BarbsDrawn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyplot_barbs_drawn_total",
			Help: "Total wind barbs placed on rendered maps",
		},
		[]string{"satellite"},
	)

	MaxWindKnots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hyplot_max_wind_knots",
			Help: "Maximum wind speed inside the box of the last render",
		},
		[]string{"satellite"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyplot_fetches_total",
			Help: "Total remote product downloads",
		},
		[]string{"scheme", "status"},
	)

	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hyplot_fetch_latency_seconds",
			Help:    "Remote product download latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)
)

// WriteTextfile dumps the default registry in the node_exporter textfile
// format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
