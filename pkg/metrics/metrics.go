// Package metrics records run statistics as Prometheus metrics.
//
// Each run owns a Collector backed by a private registry, so repeated runs
// in one process (tests, the profiles command) never collide. A one-shot
// CLI has no scrape endpoint; the registry is written in the node-exporter
// textfile format instead:
//
//	collector := metrics.NewCollector("hconf")
//	timer := metrics.NewTimer("resolve")
//	// ...
//	collector.ObserveStage(timer.Name(), timer.Stop())
//	if err := collector.WriteTextfile("/var/lib/node_exporter/hconf.prom"); err != nil {
//	    return err
//	}
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

// Collector holds the metrics of one run.
type Collector struct {
	registry *prometheus.Registry

	documents      *prometheus.CounterVec   // status: read, skipped
	profiles       prometheus.Gauge         // profiles in the registry
	orphans        prometheus.Gauge         // profiles without a resolvable parent
	configurations prometheus.Counter       // configurations emitted
	properties     prometheus.Counter       // properties emitted
	artifacts      *prometheus.CounterVec   // format, sink
	bytesWritten   *prometheus.CounterVec   // format, sink
	failures       *prometheus.CounterVec   // error type
	stageDuration  *prometheus.HistogramVec // stage
	runDuration    prometheus.Gauge         // last run wall time
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Input documents by outcome",
		}, []string{"status"}),
		profiles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles",
			Help:      "Profiles found in the input",
		}),
		orphans: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphan_profiles",
			Help:      "Profiles whose parent is not defined",
		}),
		configurations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "configurations_total",
			Help:      "Configurations emitted across all profiles",
		}),
		properties: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_total",
			Help:      "Properties emitted across all configurations",
		}),
		artifacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Artifacts written",
		}, []string{"format", "sink"}),
		bytesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Artifact bytes written, before archive compression",
		}, []string{"format", "sink"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed runs by error type",
		}, []string{"type"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
		}, []string{"stage"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
	}
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDocuments records documents read and, of those, documents skipped.
func (c *Collector) RecordDocuments(read, skipped int) {
	c.documents.WithLabelValues("read").Add(float64(read))
	c.documents.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordProfiles records the registry size and its orphan count.
func (c *Collector) RecordProfiles(profiles, orphans int) {
	c.profiles.Set(float64(profiles))
	c.orphans.Set(float64(orphans))
}

// RecordConfiguration counts one emitted configuration.
func (c *Collector) RecordConfiguration(properties int) {
	c.configurations.Inc()
	c.properties.Add(float64(properties))
}

// RecordArtifact counts one written artifact.
func (c *Collector) RecordArtifact(format, sink string, size int) {
	c.artifacts.WithLabelValues(format, sink).Inc()
	c.bytesWritten.WithLabelValues(format, sink).Add(float64(size))
}

// RecordFailure counts a failed run by the error's type.
func (c *Collector) RecordFailure(err error) {
	c.failures.WithLabelValues(string(errors.TypeOf(err))).Inc()
}

// ObserveStage records how long a stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetRunDuration records the run's wall time.
func (c *Collector) SetRunDuration(d time.Duration) {
	c.runDuration.Set(d.Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unable to write metrics file "+path)
	}
	return nil
}

// Timer measures elapsed time for a named operation.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
