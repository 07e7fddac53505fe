package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/go-drift/scene/pkg/assets"
	"github.com/go-drift/scene/pkg/scene"
)

func at(base time.Time, offset time.Duration) time.Time {
	return base.Add(offset)
}

func TestRecorder_PairsStartAndCompleteEdges(t *testing.T) {
	r := NewRecorder()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r.LoadStarted(scene.Event{Type: "hud", Time: base})
	r.LoadCompleted(scene.Event{Type: "hud", Time: at(base, 30*time.Millisecond)})

	r.OpenStarted(scene.Event{Type: "hud", Time: at(base, 40*time.Millisecond)})
	r.OpenCompleted(scene.Event{Type: "hud", Time: at(base, 50*time.Millisecond)})

	r.CloseStarted(scene.Event{Type: "hud", Time: at(base, 950*time.Millisecond)})
	r.CloseCompleted(scene.Event{Type: "hud", Time: at(base, time.Second)})

	r.Unloaded(scene.Event{Type: "hud", Time: at(base, time.Second)})

	stats := r.Snapshot()["hud"]
	if stats.Loads != 1 || stats.Opens != 1 || stats.Closes != 1 || stats.Unloads != 1 {
		t.Errorf("counts = %+v, want one of each", stats)
	}
	if stats.LoadTime != 30*time.Millisecond {
		t.Errorf("LoadTime = %v, want 30ms", stats.LoadTime)
	}
	if stats.OpenTime != 10*time.Millisecond {
		t.Errorf("OpenTime = %v, want 10ms", stats.OpenTime)
	}
	if stats.CloseTime != 50*time.Millisecond {
		t.Errorf("CloseTime = %v, want 50ms", stats.CloseTime)
	}
	// Lifetime runs from open completion to close completion.
	if stats.OpenLifetime != 950*time.Millisecond {
		t.Errorf("OpenLifetime = %v, want 950ms", stats.OpenLifetime)
	}
	if stats.CurrentlyOpen != 0 {
		t.Errorf("CurrentlyOpen = %d, want 0", stats.CurrentlyOpen)
	}
}

func TestRecorder_LifetimeSpansOverlappingInstances(t *testing.T) {
	r := NewRecorder()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Two instances of the same type overlap. The lifetime window runs
	// from the first open to the last close.
	r.OpenCompleted(scene.Event{Type: "popup", Time: base})
	r.OpenCompleted(scene.Event{Type: "popup", Time: at(base, time.Second)})
	r.CloseCompleted(scene.Event{Type: "popup", Time: at(base, 2*time.Second)})

	if got := r.Snapshot()["popup"]; got.OpenLifetime != 0 {
		t.Errorf("OpenLifetime = %v while one instance still open, want 0", got.OpenLifetime)
	}

	r.CloseCompleted(scene.Event{Type: "popup", Time: at(base, 3*time.Second)})

	stats := r.Snapshot()["popup"]
	if stats.OpenLifetime != 3*time.Second {
		t.Errorf("OpenLifetime = %v, want 3s", stats.OpenLifetime)
	}
	if stats.Opens != 2 || stats.Closes != 2 {
		t.Errorf("Opens/Closes = %d/%d, want 2/2", stats.Opens, stats.Closes)
	}
}

func TestRecorder_ObservesLiveService(t *testing.T) {
	r := NewRecorder()
	provider := assets.NewMemoryProvider()
	svc := scene.New(provider, scene.WithObserver(r))
	err := svc.Init([]scene.Descriptor{{
		Type:    "hud",
		Locator: "ui/hud",
		Layer:   0,
		New:     func() scene.Presenter { return scene.BasePresenter{} },
	}}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ref := scene.ByType("hud")
	if _, err := svc.Load(context.Background(), ref, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := svc.Close(ref, true); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stats := r.Snapshot()["hud"]
	if stats.Loads != 1 || stats.Opens != 1 || stats.Closes != 1 || stats.Unloads != 1 {
		t.Errorf("stats = %+v, want one of each transition", stats)
	}
}

func TestExporter_PublishesCountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	x := NewExporter(reg)

	provider := assets.NewMemoryProvider()
	svc := scene.New(provider, scene.WithObserver(x))
	err := svc.Init([]scene.Descriptor{{
		Type:    "menu",
		Locator: "ui/menu",
		Layer:   1,
		New:     func() scene.Presenter { return scene.BasePresenter{} },
	}}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ref := scene.ByType("menu")
	if _, err := svc.Load(context.Background(), ref, true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := testutil.ToFloat64(x.open.WithLabelValues("menu")); got != 1 {
		t.Errorf("open gauge = %v after open, want 1", got)
	}
	if got := testutil.ToFloat64(x.transitions.WithLabelValues("load", "menu")); got != 1 {
		t.Errorf("load counter = %v, want 1", got)
	}

	if err := svc.Close(ref, true); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := testutil.ToFloat64(x.open.WithLabelValues("menu")); got != 0 {
		t.Errorf("open gauge = %v after close, want 0", got)
	}
	if got := testutil.ToFloat64(x.destroys.WithLabelValues("menu")); got != 1 {
		t.Errorf("destroy counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(x.transitions.WithLabelValues("unload", "menu")); got != 1 {
		t.Errorf("unload counter = %v, want 1", got)
	}
}

func TestCombine_FansOutToAllObservers(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	obs := Combine(a, b)

	now := time.Now()
	obs.LoadCompleted(scene.Event{Type: "hud", Time: now})
	obs.Unloaded(scene.Event{Type: "hud", Time: now})

	for name, r := range map[string]*Recorder{"first": a, "second": b} {
		stats := r.Snapshot()["hud"]
		if stats.Loads != 1 || stats.Unloads != 1 {
			t.Errorf("%s observer stats = %+v, want 1 load and 1 unload", name, stats)
		}
	}
}
