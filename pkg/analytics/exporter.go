package analytics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-drift/scene/pkg/scene"
)

// Exporter is a scene.Observer publishing lifecycle metrics to Prometheus.
//
// It exposes per-type transition counters, start-to-complete duration
// histograms, and a gauge of currently open presenters. Like [Recorder],
// everything is keyed by presenter type only.
type Exporter struct {
	transitions *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	open        *prometheus.GaugeVec
	destroys    *prometheus.CounterVec

	mu     sync.Mutex
	starts map[phaseKey]time.Time
}

type phaseKey struct {
	phase string
	typ   string
}

// NewExporter creates an exporter registering its metrics with reg. Pass
// prometheus.DefaultRegisterer to use the process-wide registry.
func NewExporter(reg prometheus.Registerer) *Exporter {
	factory := promauto.With(reg)
	return &Exporter{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_transitions_total",
				Help: "Completed lifecycle transitions by phase and presenter type",
			},
			[]string{"phase", "type"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scene_transition_duration_seconds",
				Help:    "Lifecycle transition duration by phase and presenter type",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"phase", "type"},
		),
		open: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scene_open_presenters",
				Help: "Currently open presenter instances by type",
			},
			[]string{"type"},
		),
		destroys: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scene_destroying_closes_total",
				Help: "Closes that also destroyed the instance, by presenter type",
			},
			[]string{"type"},
		),
		starts: make(map[phaseKey]time.Time),
	}
}

func (x *Exporter) started(phase, typ string, at time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.starts[phaseKey{phase, typ}] = at
}

func (x *Exporter) completed(phase, typ string, at time.Time) {
	x.transitions.WithLabelValues(phase, typ).Inc()

	x.mu.Lock()
	start, ok := x.starts[phaseKey{phase, typ}]
	if ok {
		delete(x.starts, phaseKey{phase, typ})
	}
	x.mu.Unlock()
	if ok {
		x.durations.WithLabelValues(phase, typ).Observe(at.Sub(start).Seconds())
	}
}

// LoadStarted records the start edge of a load.
func (x *Exporter) LoadStarted(e scene.Event) { x.started("load", e.Type, e.Time) }

// LoadCompleted counts a load and observes its duration.
func (x *Exporter) LoadCompleted(e scene.Event) { x.completed("load", e.Type, e.Time) }

// OpenStarted records the start edge of an open.
func (x *Exporter) OpenStarted(e scene.Event) { x.started("open", e.Type, e.Time) }

// OpenCompleted counts an open, observes its duration, and raises the
// open gauge.
func (x *Exporter) OpenCompleted(e scene.Event) {
	x.completed("open", e.Type, e.Time)
	x.open.WithLabelValues(e.Type).Inc()
}

// CloseStarted records the start edge of a close.
func (x *Exporter) CloseStarted(e scene.Event) { x.started("close", e.Type, e.Time) }

// CloseCompleted counts a close, observes its duration, and lowers the
// open gauge. Destroying closes are counted separately as well.
func (x *Exporter) CloseCompleted(e scene.Event) {
	x.completed("close", e.Type, e.Time)
	x.open.WithLabelValues(e.Type).Dec()
	if e.Destroyed {
		x.destroys.WithLabelValues(e.Type).Inc()
	}
}

// Unloaded counts an unload.
func (x *Exporter) Unloaded(e scene.Event) {
	x.transitions.WithLabelValues("unload", e.Type).Inc()
}

var _ scene.Observer = (*Exporter)(nil)
var _ scene.Observer = (*Recorder)(nil)
