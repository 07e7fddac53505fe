package animation

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// advanceUntil steps the fake clock forward until cond holds. Stepping
// rather than one big jump tolerates ticks the consumer goroutine was not
// ready to receive, which fake tickers drop like real ones do.
func advanceUntil(t *testing.T, fake *clockwork.FakeClock, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		fake.Advance(DefaultTickInterval)
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out advancing the fake clock")
}

func TestController_Forward_Completes(t *testing.T) {
	fake := clockwork.NewFakeClock()
	prev := SetClock(fake)
	defer SetClock(prev)

	ctl := NewController(100 * time.Millisecond)
	defer ctl.Dispose()

	var statuses []Status
	var mu sync.Mutex
	remove := ctl.AddStatusListener(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s)
	})
	defer remove()

	ctl.Forward()
	if got := ctl.Status(); got != StatusForward {
		t.Fatalf("status after Forward = %v, want %v", got, StatusForward)
	}

	fake.BlockUntil(1)
	advanceUntil(t, fake, ctl.IsCompleted)

	if got := ctl.Value(); got != 1 {
		t.Errorf("value after completion = %v, want 1", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(statuses) == 0 || statuses[len(statuses)-1] != StatusCompleted {
		t.Errorf("status listener saw %v, want trailing %v", statuses, StatusCompleted)
	}
}

func TestController_Reverse_Dismisses(t *testing.T) {
	fake := clockwork.NewFakeClock()
	prev := SetClock(fake)
	defer SetClock(prev)

	ctl := NewController(100 * time.Millisecond)
	defer ctl.Dispose()

	ctl.Forward()
	fake.BlockUntil(1)
	advanceUntil(t, fake, ctl.IsCompleted)

	ctl.Reverse()
	if got := ctl.Status(); got != StatusReverse {
		t.Fatalf("status after Reverse = %v, want %v", got, StatusReverse)
	}
	advanceUntil(t, fake, ctl.IsDismissed)
	if got := ctl.Value(); got != 0 {
		t.Errorf("value after dismissal = %v, want 0", got)
	}
}

func TestController_Reset(t *testing.T) {
	ctl := NewController(100 * time.Millisecond)
	defer ctl.Dispose()

	ctl.Reset()
	if got := ctl.Status(); got != StatusDismissed {
		t.Errorf("status after Reset = %v, want %v", got, StatusDismissed)
	}
	if got := ctl.Value(); got != 0 {
		t.Errorf("value after Reset = %v, want 0", got)
	}
}

func TestController_StatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusDismissed, "dismissed"},
		{StatusForward, "forward"},
		{StatusReverse, "reverse"},
		{StatusCompleted, "completed"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestTweenFloat64(t *testing.T) {
	tw := TweenFloat64(0, 10)
	if got := tw.Evaluate(0); got != 0 {
		t.Errorf("Evaluate(0) = %v, want 0", got)
	}
	if got := tw.Evaluate(0.5); got != 5 {
		t.Errorf("Evaluate(0.5) = %v, want 5", got)
	}
	if got := tw.Evaluate(1); got != 10 {
		t.Errorf("Evaluate(1) = %v, want 10", got)
	}
}

func TestCubicBezier_Endpoints(t *testing.T) {
	for _, curve := range []func(float64) float64{Ease, EaseIn, EaseOut, EaseInOut} {
		if got := curve(0); got != 0 {
			t.Errorf("curve(0) = %v, want 0", got)
		}
		if got := curve(1); got != 1 {
			t.Errorf("curve(1) = %v, want 1", got)
		}
		mid := curve(0.5)
		if mid <= 0 || mid >= 1 {
			t.Errorf("curve(0.5) = %v, want in (0, 1)", mid)
		}
	}
}

func TestTicker_StartStop(t *testing.T) {
	tick := NewTicker(func(time.Duration) {})
	if tick.IsActive() {
		t.Fatal("new ticker should be inactive")
	}
	tick.Start()
	if !tick.IsActive() {
		t.Fatal("started ticker should be active")
	}
	tick.Start() // no-op
	tick.Stop()
	if tick.IsActive() {
		t.Fatal("stopped ticker should be inactive")
	}
	tick.Stop() // no-op
}
