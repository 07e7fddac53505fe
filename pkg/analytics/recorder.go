// Package analytics provides lifecycle observers for the scene service.
//
// [Recorder] aggregates timing pairs and counts in memory for inspection
// tooling; [Exporter] publishes the same edges as Prometheus metrics.
// [Combine] fans one event stream out to several observers.
//
// All aggregation is keyed by presenter type only: multi-instance
// presenters sharing a type share aggregated metrics. This is a documented
// limitation of the event model, which does not carry instance addresses.
package analytics

import (
	"sync"
	"time"

	"github.com/go-drift/scene/pkg/scene"
)

// TypeStats is the aggregated view of one presenter type.
type TypeStats struct {
	// Loads, Opens, Closes, Unloads count completed transitions.
	Loads   int
	Opens   int
	Closes  int
	Unloads int

	// LoadTime, OpenTime, and CloseTime accumulate start-to-complete
	// durations per phase.
	LoadTime  time.Duration
	OpenTime  time.Duration
	CloseTime time.Duration

	// OpenLifetime accumulates time from the type's first concurrent open
	// to its last close.
	OpenLifetime time.Duration

	// CurrentlyOpen counts instances of the type that are open right now.
	CurrentlyOpen int
}

// typeState carries the in-flight pairing state for one type.
type typeState struct {
	stats TypeStats

	loadStart  time.Time
	openStart  time.Time
	closeStart time.Time
	openedAt   time.Time
}

// Recorder is a scene.Observer that aggregates lifecycle timings per
// presenter type. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	types map[string]*typeState
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{types: make(map[string]*typeState)}
}

func (r *Recorder) state(presenterType string) *typeState {
	st, ok := r.types[presenterType]
	if !ok {
		st = &typeState{}
		r.types[presenterType] = st
	}
	return st
}

// LoadStarted records the start edge of a load pair.
func (r *Recorder) LoadStarted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(e.Type).loadStart = e.Time
}

// LoadCompleted closes a load pair.
func (r *Recorder) LoadCompleted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(e.Type)
	st.stats.Loads++
	if !st.loadStart.IsZero() {
		st.stats.LoadTime += e.Time.Sub(st.loadStart)
		st.loadStart = time.Time{}
	}
}

// OpenStarted records the start edge of an open pair.
func (r *Recorder) OpenStarted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(e.Type).openStart = e.Time
}

// OpenCompleted closes an open pair and starts the lifetime window when
// the type's first instance opens.
func (r *Recorder) OpenCompleted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(e.Type)
	st.stats.Opens++
	if !st.openStart.IsZero() {
		st.stats.OpenTime += e.Time.Sub(st.openStart)
		st.openStart = time.Time{}
	}
	if st.stats.CurrentlyOpen == 0 {
		st.openedAt = e.Time
	}
	st.stats.CurrentlyOpen++
}

// CloseStarted records the start edge of a close pair.
func (r *Recorder) CloseStarted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(e.Type).closeStart = e.Time
}

// CloseCompleted closes a close pair and the lifetime window when the
// type's last instance closes.
func (r *Recorder) CloseCompleted(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(e.Type)
	st.stats.Closes++
	if !st.closeStart.IsZero() {
		st.stats.CloseTime += e.Time.Sub(st.closeStart)
		st.closeStart = time.Time{}
	}
	if st.stats.CurrentlyOpen > 0 {
		st.stats.CurrentlyOpen--
		if st.stats.CurrentlyOpen == 0 && !st.openedAt.IsZero() {
			st.stats.OpenLifetime += e.Time.Sub(st.openedAt)
			st.openedAt = time.Time{}
		}
	}
}

// Unloaded counts an unload edge.
func (r *Recorder) Unloaded(e scene.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(e.Type).stats.Unloads++
}

// Snapshot returns a copy of the aggregated stats per presenter type.
func (r *Recorder) Snapshot() map[string]TypeStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]TypeStats, len(r.types))
	for presenterType, st := range r.types {
		out[presenterType] = st.stats
	}
	return out
}

// Combine fans lifecycle events out to several observers in order.
func Combine(observers ...scene.Observer) scene.Observer {
	return multi(observers)
}

type multi []scene.Observer

func (m multi) LoadStarted(e scene.Event) {
	for _, o := range m {
		o.LoadStarted(e)
	}
}

func (m multi) LoadCompleted(e scene.Event) {
	for _, o := range m {
		o.LoadCompleted(e)
	}
}

func (m multi) OpenStarted(e scene.Event) {
	for _, o := range m {
		o.OpenStarted(e)
	}
}

func (m multi) OpenCompleted(e scene.Event) {
	for _, o := range m {
		o.OpenCompleted(e)
	}
}

func (m multi) CloseStarted(e scene.Event) {
	for _, o := range m {
		o.CloseStarted(e)
	}
}

func (m multi) CloseCompleted(e scene.Event) {
	for _, o := range m {
		o.CloseCompleted(e)
	}
}

func (m multi) Unloaded(e scene.Event) {
	for _, o := range m {
		o.Unloaded(e)
	}
}
