package manager

import (
	"log"

	"github.com/1broseidon/floatile/internal/hooks"
	"github.com/1broseidon/floatile/internal/store"
)

// DetachWindow pops a window onto an independent host surface. The window
// keeps its container reference as the home to return to; if no visible
// member remains there the container is hidden, not deleted. When the
// host refuses to open a surface the window moves to a fresh in-editor
// container instead.
func (m *Manager) DetachWindow(id store.WindowID) {
	w := m.store.Window(id)
	if w == nil || w.Detached {
		return
	}

	err := m.bridge.Open(id, w.Title, w.Content, func() {
		m.notifySurfaceClosed(id)
	})
	if err != nil {
		log.Printf("detach window %q: %v; falling back to in-editor container", id, err)
		m.MoveWindowToNewContainer(id)
		return
	}

	w.Detached = true
	if c := m.store.ContainerOf(id); c != nil {
		m.store.ReassignActive(c.ID)
		if !m.hasVisibleMember(c) {
			c.Hidden = true
		}
	}
	m.updateDock()
	m.hooks.Fire(id, hooks.EventDetach)
}

// SurfaceClosed reattaches a window whose detached surface went away: back
// into its home container when that still exists, into a fresh container
// otherwise. Title and content are untouched.
func (m *Manager) SurfaceClosed(id store.WindowID) {
	w := m.store.Window(id)
	if w == nil || !w.Detached {
		return
	}
	w.Detached = false

	c := m.store.Container(w.ContainerID)
	if c == nil {
		c = m.newCascadeContainer()
		if err := m.store.Attach(id, c.ID, -1); err != nil {
			log.Printf("reattach window %q: %v", id, err)
		}
	}
	c.Hidden = false
	w.Minimized = c.Minimized
	m.store.ReassignActive(c.ID)
	m.raise(c)
	m.updateDock()
	m.hooks.Fire(id, hooks.EventDetachClose)
}

func (m *Manager) notifySurfaceClosed(id store.WindowID) {
	if m.SurfaceNotify != nil {
		m.SurfaceNotify(id)
		return
	}
	m.SurfaceClosed(id)
}
