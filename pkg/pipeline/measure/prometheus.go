package measure

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "genre"
	subsystem = "pipeline"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// PrometheusMeasure exposes step durations and outcomes as prometheus collectors on its own registry.
type PrometheusMeasure struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	total    prometheus.Gauge

	mu        sync.Mutex
	durations map[string]time.Duration
	totalTime time.Duration
}

// NewPrometheusMeasure creates a measure with a fresh registry.
func NewPrometheusMeasure() (*PrometheusMeasure, error) {
	m := &PrometheusMeasure{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline step sub-processes.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"step"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_runs_total",
			Help:      "Pipeline steps launched, by outcome.",
		}, []string{"step", "status"}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last pipeline run.",
		}),
		durations: make(map[string]time.Duration),
	}

	for _, c := range []prometheus.Collector{m.duration, m.runs, m.total} {
		err := m.registry.Register(c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to register collector")
		}
	}

	return m, nil
}

// Registry returns the registry holding the collectors.
func (m *PrometheusMeasure) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMeasure) Observe(stepName string, elapsed time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}

	m.duration.WithLabelValues(stepName).Observe(elapsed.Seconds())
	m.runs.WithLabelValues(stepName, status).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.durations[stepName] = round(elapsed)
}

func (m *PrometheusMeasure) Durations() map[string]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make(map[string]time.Duration, len(m.durations))
	for k, v := range m.durations {
		res[k] = v
	}

	return res
}

func (m *PrometheusMeasure) SetTotalDuration(total time.Duration) {
	m.total.Set(total.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalTime = round(total)
}

func (m *PrometheusMeasure) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.totalTime
}

// WriteToTextfile writes the metrics in the text format read by the node exporter textfile collector.
func (m *PrometheusMeasure) WriteToTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, m.registry)
	if err != nil {
		return errors.Wrapf(err, "unable to write metrics to %s", path)
	}

	return nil
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Measure = (*PrometheusMeasure)(nil)
