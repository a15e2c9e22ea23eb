// Package metrics provides Prometheus metrics for catalogue runs, exported
// in the text format for node exporter collection.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

const namespace = "radar_schemas"

// Collector holds all Prometheus metrics of the tool.
type Collector struct {
	gatherer prometheus.Gatherer

	// Resolution metrics
	ResolvedSchemas   *prometheus.GaugeVec
	UnresolvedSchemas *prometheus.GaugeVec

	// Validation metrics
	Diagnostics        *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec

	// Watch metrics
	Runs            prometheus.Counter
	LastRunDuration prometheus.Gauge
}

var _ ports.Recorder = (*Collector)(nil)

// New creates a collector on its own registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,
		ResolvedSchemas: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "resolved_schemas",
				Help:      "Number of schema files resolved in the last run",
			},
			[]string{"scope"},
		),
		UnresolvedSchemas: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unresolved_schemas",
				Help:      "Number of schema files that could not be resolved in the last run",
			},
			[]string{"scope"},
		),
		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of validation diagnostics",
			},
			[]string{"command"},
		),
		ValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Validation duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"command"},
		),
		Runs: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of validation runs, including reruns in watch mode",
			},
		),
		LastRunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_duration_seconds",
				Help:      "Duration of the last validation run in seconds",
			},
		),
	}
}

// RecordResolution sets the resolution counts of one scope.
func (c *Collector) RecordResolution(scope schema.Scope, resolved, unresolved int) {
	c.ResolvedSchemas.WithLabelValues(scope.Lower()).Set(float64(resolved))
	c.UnresolvedSchemas.WithLabelValues(scope.Lower()).Set(float64(unresolved))
}

// RecordDiagnostics adds the diagnostics of one command run.
func (c *Collector) RecordDiagnostics(command string, count int) {
	c.Diagnostics.WithLabelValues(command).Add(float64(count))
}

// ObserveValidation records the duration of one command run.
func (c *Collector) ObserveValidation(command string, d time.Duration) {
	c.ValidationDuration.WithLabelValues(command).Observe(d.Seconds())
	c.Runs.Inc()
	c.LastRunDuration.Set(d.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Nop discards all statistics.
type Nop struct{}

var _ ports.Recorder = Nop{}

func (Nop) RecordResolution(schema.Scope, int, int) {}
func (Nop) RecordDiagnostics(string, int)           {}
func (Nop) ObserveValidation(string, time.Duration) {}
