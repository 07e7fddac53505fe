package hooks

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/scene/pkg/animation"
	"github.com/go-drift/scene/pkg/assets"
	"github.com/go-drift/scene/pkg/scene"
)

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// advanceUntil steps the fake clock forward until cond holds, giving the
// ticker goroutine a chance to consume each tick.
func advanceUntil(t *testing.T, fake *clockwork.FakeClock, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		fake.Advance(animation.DefaultTickInterval)
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out advancing the fake clock")
}

// fired reports whether the channel has a pending signal, draining it.
func fired(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// newDelayService builds a service with one "splash" presenter carrying
// the given delay hook.
func newDelayService(t *testing.T, delay *Delay) (*scene.Service, *assets.MemoryProvider) {
	t.Helper()
	provider := assets.NewMemoryProvider()
	svc := scene.New(provider)
	err := svc.Init([]scene.Descriptor{{
		Type:    "splash",
		Locator: "ui/splash",
		Layer:   0,
		New:     func() scene.Presenter { return scene.BasePresenter{} },
		Hooks:   []scene.HookFactory{func() scene.Hook { return delay }},
	}}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return svc, provider
}

func TestDelay_OpenVisibleImmediately_CompletionAfterDelay(t *testing.T) {
	fake := clockwork.NewFakeClock()
	delay := NewDelay(500 * time.Millisecond)
	delay.Clock = fake

	completed := make(chan struct{}, 1)
	delay.OnOpenComplete = func(*scene.Instance) { completed <- struct{}{} }

	svc, _ := newDelayService(t, delay)
	ref := scene.ByType("splash")
	if _, err := svc.Load(context.Background(), ref, false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := svc.Open(ref); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// The transition is accepted immediately.
	if !svc.IsVisible(ref) {
		t.Fatal("splash should be visible right after Open")
	}

	// Not yet: only 400ms of the 500ms delay elapsed.
	fake.Advance(400 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if fired(completed) {
		t.Fatal("completion fired before the delay elapsed")
	}

	fake.Advance(200 * time.Millisecond)
	waitUntil(t, "open completion", func() bool { return fired(completed) })
}

func TestDelay_CloseDeactivatesAfterDelay(t *testing.T) {
	fake := clockwork.NewFakeClock()
	delay := NewDelay(500 * time.Millisecond)
	delay.Clock = fake

	completed := make(chan struct{}, 1)
	delay.OnCloseComplete = func(*scene.Instance) { completed <- struct{}{} }

	svc, _ := newDelayService(t, delay)
	ref := scene.ByType("splash")
	inst, err := svc.Load(context.Background(), ref, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	visual := inst.Visual()

	if err := svc.Close(ref, false); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closed immediately, but the visual stays active through the delay.
	if svc.IsVisible(ref) {
		t.Fatal("splash should not report visible after Close")
	}
	if !visual.Visible() {
		t.Fatal("visual should stay active while the close delay is pending")
	}

	fake.Advance(600 * time.Millisecond)
	waitUntil(t, "close completion", func() bool { return fired(completed) })
	waitUntil(t, "deactivation", func() bool { return !visual.Visible() })
}

func TestDelay_DestroyForcesImmediateDeactivation(t *testing.T) {
	fake := clockwork.NewFakeClock()
	delay := NewDelay(500 * time.Millisecond)
	delay.Clock = fake

	svc, provider := newDelayService(t, delay)
	ref := scene.ByType("splash")
	inst, err := svc.Load(context.Background(), ref, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	visual := inst.Visual().(*assets.MemoryVisual)

	if err := svc.Close(ref, true); err != nil {
		t.Fatalf("Close destroy: %v", err)
	}
	// Destruction ignores the pending delay entirely.
	if visual.Visible() {
		t.Error("destroy must deactivate immediately")
	}
	if provider.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0", provider.LiveCount())
	}
}

func TestDelay_PendingCompletionSkipsDestroyedInstance(t *testing.T) {
	fake := clockwork.NewFakeClock()
	delay := NewDelay(500 * time.Millisecond)
	delay.Clock = fake

	completed := make(chan struct{}, 1)
	delay.OnCloseComplete = func(*scene.Instance) { completed <- struct{}{} }

	svc, provider := newDelayService(t, delay)
	ref := scene.ByType("splash")
	if _, err := svc.Load(context.Background(), ref, true); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := svc.Close(ref, false); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Unload while the close delay is still pending.
	if err := svc.Unload(context.Background(), ref); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if provider.LiveCount() != 0 {
		t.Fatalf("LiveCount = %d, want 0", provider.LiveCount())
	}

	// The timer still fires, but must detect the destroyed instance and
	// skip the completion callback.
	fake.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	if fired(completed) {
		t.Error("completion must not fire for a destroyed instance")
	}
}

func TestAnimated_HoldsVisualThroughExitAnimation(t *testing.T) {
	fake := clockwork.NewFakeClock()
	prev := animation.SetClock(fake)
	defer animation.SetClock(prev)

	animated := NewAnimated(100*time.Millisecond, animation.EaseInOut)

	provider := assets.NewMemoryProvider()
	svc := scene.New(provider)
	err := svc.Init([]scene.Descriptor{{
		Type:    "panel",
		Locator: "ui/panel",
		Layer:   1,
		New:     func() scene.Presenter { return scene.BasePresenter{} },
		Hooks:   []scene.HookFactory{func() scene.Hook { return animated }},
	}}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ref := scene.ByType("panel")
	inst, err := svc.Load(context.Background(), ref, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	visual := inst.Visual()

	// Finish the entrance animation. The clock advances in ticker-sized
	// steps because fake tickers drop ticks the consumer was not ready for,
	// just like real ones.
	fake.BlockUntil(1)
	advanceUntil(t, fake, animated.Controller().IsCompleted)

	if err := svc.Close(ref, false); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if svc.IsVisible(ref) {
		t.Fatal("panel should not report visible after Close")
	}
	if !visual.Visible() {
		t.Fatal("visual should stay active while the exit animation runs")
	}

	// Finish the exit animation; dismissal releases the deactivation.
	advanceUntil(t, fake, animated.Controller().IsDismissed)
	waitUntil(t, "deactivation", func() bool { return !visual.Visible() })
}

func TestReparent_BindsVisualToAlternateContainer(t *testing.T) {
	alt := assets.NewMemoryContainer(99)
	provider := assets.NewMemoryProvider()
	svc := scene.New(provider)
	err := svc.Init([]scene.Descriptor{{
		Type:    "tooltip",
		Locator: "ui/tooltip",
		Layer:   1,
		New:     func() scene.Presenter { return scene.BasePresenter{} },
		Hooks:   []scene.HookFactory{ReparentFactory(alt)},
	}}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ref := scene.ByType("tooltip")
	inst, err := svc.Load(context.Background(), ref, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := len(alt.Visuals()); got != 1 {
		t.Fatalf("alternate container has %d visuals, want 1", got)
	}
	if got := len(inst.Layer().Container().Visuals()); got != 0 {
		t.Errorf("layer container has %d visuals, want 0", got)
	}

	if err := svc.Unload(context.Background(), ref); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if got := len(alt.Visuals()); got != 0 {
		t.Errorf("alternate container has %d visuals after unload, want 0", got)
	}
	if provider.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0", provider.LiveCount())
	}
}
