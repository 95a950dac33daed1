// Package hooks dispatches caller-registered lifecycle callbacks. A hook
// that panics is isolated and logged; the state transition that triggered
// it always stands.
package hooks

import (
	"log"

	"github.com/1broseidon/floatile/internal/store"
)

// Event identifies a lifecycle transition.
type Event int

const (
	EventInit Event = iota
	EventMinimize
	EventRestore
	EventClose
	EventDetach
	EventDetachClose
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventInit:
		return "init"
	case EventMinimize:
		return "minimize"
	case EventRestore:
		return "restore"
	case EventClose:
		return "close"
	case EventDetach:
		return "detach"
	case EventDetachClose:
		return "detach-close"
	default:
		return "unknown"
	}
}

// Hooks holds the per-window callbacks a caller may register. Any field
// may be nil.
type Hooks struct {
	OnInit        func()
	OnMinimize    func()
	OnRestore     func()
	OnClose       func()
	OnDetach      func()
	OnDetachClose func()
}

// Dispatcher routes lifecycle events to the hooks registered for each
// window. It invokes each hook exactly once per transition.
type Dispatcher struct {
	hooks map[store.WindowID]Hooks
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{hooks: make(map[store.WindowID]Hooks)}
}

// Register associates hooks with a window id, replacing any previous set.
func (d *Dispatcher) Register(id store.WindowID, h Hooks) {
	d.hooks[id] = h
}

// Forget drops the hooks for a window after its record is deleted.
func (d *Dispatcher) Forget(id store.WindowID) {
	delete(d.hooks, id)
}

// Fire invokes the hook registered for the given event, if any. Panics
// inside the hook are recovered and logged so they cannot corrupt the
// store state that already changed.
func (d *Dispatcher) Fire(id store.WindowID, event Event) {
	h, ok := d.hooks[id]
	if !ok {
		return
	}

	var fn func()
	switch event {
	case EventInit:
		fn = h.OnInit
	case EventMinimize:
		fn = h.OnMinimize
	case EventRestore:
		fn = h.OnRestore
	case EventClose:
		fn = h.OnClose
	case EventDetach:
		fn = h.OnDetach
	case EventDetachClose:
		fn = h.OnDetachClose
	}
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("hook %s for window %q panicked: %v", event, id, r)
		}
	}()
	fn()
}
