package scene

import "time"

// Event is an immutable record of one lifecycle transition edge.
type Event struct {
	// Type is the presenter type the event concerns.
	Type string
	// Layer is the presenter's paint-order layer.
	Layer int
	// Time is when the edge occurred.
	Time time.Time
	// Destroyed marks close/unload edges that destroy the instance.
	Destroyed bool
}

// Observer receives paired start/complete lifecycle events from the
// service. Implementations must be cheap: events fire inline on the
// operation's control flow. The default is [NopObserver].
type Observer interface {
	LoadStarted(e Event)
	LoadCompleted(e Event)
	OpenStarted(e Event)
	OpenCompleted(e Event)
	CloseStarted(e Event)
	CloseCompleted(e Event)
	Unloaded(e Event)
}

// NopObserver is the zero-overhead default Observer.
type NopObserver struct{}

// LoadStarted is a no-op.
func (NopObserver) LoadStarted(Event) {}

// LoadCompleted is a no-op.
func (NopObserver) LoadCompleted(Event) {}

// OpenStarted is a no-op.
func (NopObserver) OpenStarted(Event) {}

// OpenCompleted is a no-op.
func (NopObserver) OpenCompleted(Event) {}

// CloseStarted is a no-op.
func (NopObserver) CloseStarted(Event) {}

// CloseCompleted is a no-op.
func (NopObserver) CloseCompleted(Event) {}

// Unloaded is a no-op.
func (NopObserver) Unloaded(Event) {}
