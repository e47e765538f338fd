package planner

import "sync"

// EventKind identifies a trace event emitted by the allocator.
type EventKind string

const (
	EventFiltered    EventKind = "filtered"
	EventIneligible  EventKind = "ineligible"
	EventRoundStart  EventKind = "round_start"
	EventRejected    EventKind = "rejected"
	EventPlaced      EventKind = "placed"
	EventRoundClosed EventKind = "round_closed"
	EventTerminated  EventKind = "terminated"
)

// Event is one step of the allocation trace.
type Event struct {
	Kind             EventKind   `json:"kind"`
	Round            int         `json:"round,omitempty"`
	Code             string      `json:"code,omitempty"`
	Name             string      `json:"name,omitempty"`
	Codes            []string    `json:"codes,omitempty"`
	Rejection        Rejection   `json:"rejection,omitempty"`
	Workload         int         `json:"workload,omitempty"`
	ElectiveWorkload int         `json:"elective_workload,omitempty"`
	Termination      Termination `json:"termination,omitempty"`
	Message          string      `json:"message,omitempty"`
}

// Observer receives the allocation trace. It is called synchronously.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// Recorder keeps every event it observes.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe implements Observer.
func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded trace.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of one kind.
func (r *Recorder) Filter(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
