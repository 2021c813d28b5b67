// Package metrics exposes Prometheus collectors for notification sinks and
// assessment runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "winsatrun"

// Recorder receives lifecycle observations from the sink and the
// orchestrator.
type Recorder interface {
	SinkCreated()
	SinkDestroyed()
	SinkRejected()
	ProgressDelivered()
	CompletionDelivered(outcome string)
	EventDropped(kind string)
	RunFinished(exitCode int, elapsed time.Duration)
}

// Collectors is the Prometheus-backed Recorder.
type Collectors struct {
	registry   *prometheus.Registry
	registerer prometheus.Registerer

	liveSinks       prometheus.Gauge
	sinksCreated    prometheus.Counter
	sinksRejected   prometheus.Counter
	progressEvents  prometheus.Counter
	completions     *prometheus.CounterVec
	droppedEvents   *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	runDurationSecs prometheus.Histogram
}

// NewCollectors registers the collectors on a fresh registry that also
// carries the Go runtime and process collectors.
func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c := newCollectors(reg)
	c.registry = reg
	return c
}

// NewCollectorsWith registers the collectors on reg.
func NewCollectorsWith(reg prometheus.Registerer) *Collectors {
	return newCollectors(reg)
}

func newCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	c := &Collectors{
		liveSinks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sinks",
			Help:      "Number of notification sinks not yet destroyed.",
		}),
		sinksCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sinks_created_total",
			Help:      "Total number of notification sinks constructed.",
		}),
		sinksRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sinks_rejected_total",
			Help:      "Total number of sink constructions refused by the live-sink budget.",
		}),
		progressEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_events_total",
			Help:      "Total number of progress events delivered to a sink.",
		}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_events_total",
			Help:      "Total number of completion events, labeled by outcome.",
		}, []string{"outcome"}),
		droppedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Events delivered after completion, labeled by kind.",
		}, []string{"kind"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of orchestrator runs, labeled by exit code.",
		}, []string{"exit_code"}),
		runDurationSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of orchestrator runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
	}
	c.registerer = reg
	return c
}

func (c *Collectors) SinkCreated() {
	c.sinksCreated.Inc()
	c.liveSinks.Inc()
}

func (c *Collectors) SinkDestroyed() { c.liveSinks.Dec() }

func (c *Collectors) SinkRejected() { c.sinksRejected.Inc() }

func (c *Collectors) ProgressDelivered() { c.progressEvents.Inc() }

func (c *Collectors) CompletionDelivered(outcome string) {
	c.completions.WithLabelValues(outcome).Inc()
}

func (c *Collectors) EventDropped(kind string) {
	c.droppedEvents.WithLabelValues(kind).Inc()
}

func (c *Collectors) RunFinished(exitCode int, elapsed time.Duration) {
	c.runsTotal.WithLabelValues(strconv.Itoa(exitCode)).Inc()
	c.runDurationSecs.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format. Collectors
// built with NewCollectorsWith fall back to the default gatherer.
func (c *Collectors) Handler() http.Handler {
	if c.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registerer returns the registerer the collectors were registered on, so
// that other components can add their own collectors next to them.
func (c *Collectors) Registerer() prometheus.Registerer {
	if c.registerer == nil {
		return prometheus.DefaultRegisterer
	}
	return c.registerer
}

// Gatherer returns the registry backing c, or the default gatherer.
func (c *Collectors) Gatherer() prometheus.Gatherer {
	if c.registry == nil {
		return prometheus.DefaultGatherer
	}
	return c.registry
}

type nopRecorder struct{}

// Nop returns a Recorder that records nothing.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) SinkCreated()                   {}
func (nopRecorder) SinkDestroyed()                 {}
func (nopRecorder) SinkRejected()                  {}
func (nopRecorder) ProgressDelivered()             {}
func (nopRecorder) CompletionDelivered(string)     {}
func (nopRecorder) EventDropped(string)            {}
func (nopRecorder) RunFinished(int, time.Duration) {}

var (
	_ Recorder = (*Collectors)(nil)
	_ Recorder = nopRecorder{}
)
