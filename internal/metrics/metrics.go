// Package metrics records configuration load outcomes as Prometheus metrics.
//
// spacemake runs as a batch pipeline, so metrics are not scraped from a
// long-lived process. Instead the collector is written in the node exporter
// textfile format at the end of a command; see [Collector.WriteTextfile].
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/errors"
)

const namespace = "spacemake_config"

// Collector holds the load metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	loads            *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	entries          *prometheus.GaugeVec
	loadDuration     prometheus.Histogram
	lastSuccess      prometheus.Gauge
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "loads_total", Help: "Configuration loads by result and failing stage."},
			[]string{"result", "stage"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "validation_errors_total", Help: "Validation errors by stage and kind."},
			[]string{"stage", "kind"},
		),
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "entries", Help: "Entries per category in the last valid snapshot."},
			[]string{"category"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "load_duration_seconds", Help: "Time spent merging and validating documents.", Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8)},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "last_success_timestamp_seconds", Help: "Unix time of the last valid load."},
		),
	}
	c.registry.MustRegister(c.loads, c.validationErrors, c.entries, c.loadDuration, c.lastSuccess)
	return c
}

// Registry exposes the underlying registry, e.g. for tests or an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveLoad implements configstore.Observer.
func (c *Collector) ObserveLoad(s configstore.LoadStats) {
	c.loadDuration.Observe(s.Duration.Seconds())

	if s.Err == nil {
		c.loads.WithLabelValues("ok", "").Inc()
		c.lastSuccess.SetToCurrentTime()
		for _, cat := range configstore.Categories() {
			c.entries.WithLabelValues(string(cat)).Set(float64(len(s.Snapshot.Names(cat))))
		}
		return
	}

	var loadErr *configstore.LoadError
	if !errors.As(s.Err, &loadErr) {
		c.loads.WithLabelValues("error", "").Inc()
		return
	}
	stage := loadErr.Stage.String()
	c.loads.WithLabelValues("invalid", stage).Inc()
	for _, ve := range loadErr.Errors {
		c.validationErrors.WithLabelValues(stage, ve.Kind()).Inc()
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
