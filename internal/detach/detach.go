// Package detach manages the independent display surfaces that host
// popped-out windows. The surface itself is a host capability; the bridge
// only owns its lifecycle and reports closure back to the engine.
package detach

import (
	"errors"
	"sync"
	"time"

	"github.com/1broseidon/floatile/internal/store"
)

// ErrBlocked is returned when the host refuses to open a surface. Callers
// fall back to an in-editor container instead of failing the operation.
var ErrBlocked = errors.New("host refused to open a detached surface")

// Surface is an independent top-level display surface supplied by the
// host, seeded with a window's content.
type Surface interface {
	// Mount hands the window's title and content blob to the surface.
	Mount(title, content string)
	// NotifyClose registers fn to run once when the surface closes. It
	// returns false when the host cannot deliver close events; the bridge
	// then polls Closed instead.
	NotifyClose(fn func()) bool
	// Closed reports whether the surface has been closed.
	Closed() bool
	// Close tears the surface down from the engine side.
	Close()
}

// Opener is the host capability for creating surfaces.
type Opener interface {
	OpenSurface(title, content string) (Surface, error)
}

// Bridge tracks one surface per detached window and arranges close
// notification, by subscription where the host supports it and by polling
// otherwise.
type Bridge struct {
	mu       sync.Mutex
	opener   Opener
	poll     time.Duration
	watchers map[store.WindowID]*watcher
}

type watcher struct {
	surface  Surface
	stop     chan struct{}
	fired    sync.Once
	stopOnce sync.Once
}

func (w *watcher) halt() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// NewBridge creates a bridge. A nil opener means the host offers no
// detach capability; Open then always reports ErrBlocked.
func NewBridge(opener Opener, poll time.Duration) *Bridge {
	return &Bridge{
		opener:   opener,
		poll:     poll,
		watchers: make(map[store.WindowID]*watcher),
	}
}

// Open creates a surface for the window and invokes onClosed exactly once
// when the surface goes away on its own. Closing via Close does not fire
// onClosed; the engine initiated that itself.
func (b *Bridge) Open(id store.WindowID, title, content string, onClosed func()) error {
	if b.opener == nil {
		return ErrBlocked
	}
	surface, err := b.opener.OpenSurface(title, content)
	if err != nil {
		return err
	}
	surface.Mount(title, content)

	w := &watcher{surface: surface, stop: make(chan struct{})}
	b.mu.Lock()
	b.watchers[id] = w
	b.mu.Unlock()

	fire := func() {
		w.fired.Do(func() {
			b.drop(id, w)
			onClosed()
		})
	}
	if !surface.NotifyClose(fire) {
		go b.pollClosed(w, fire)
	}
	return nil
}

// Close tears down the surface for a window without firing its onClosed
// callback. Safe to call twice and for unknown ids.
func (b *Bridge) Close(id store.WindowID) {
	b.mu.Lock()
	w := b.watchers[id]
	delete(b.watchers, id)
	b.mu.Unlock()
	if w == nil {
		return
	}
	// Suppress the closure callback before tearing the surface down.
	w.fired.Do(func() {})
	w.halt()
	w.surface.Close()
}

// Open reports whether a surface is currently tracked for the window.
func (b *Bridge) Tracked(id store.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watchers[id] != nil
}

func (b *Bridge) drop(id store.WindowID, w *watcher) {
	b.mu.Lock()
	if b.watchers[id] == w {
		delete(b.watchers, id)
	}
	b.mu.Unlock()
	w.halt()
}

func (b *Bridge) pollClosed(w *watcher, fire func()) {
	poll := b.poll
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if w.surface.Closed() {
				fire()
				return
			}
		}
	}
}
