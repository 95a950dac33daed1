// Package manager implements the container lifecycle: window placement,
// z-order, minimize/restore with the dock, merging, and the caller-facing
// window operations. All mutations run on the hosting surface's event
// loop; the manager itself takes no locks.
package manager

import (
	"log"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/detach"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/hooks"
	"github.com/1broseidon/floatile/internal/store"
)

// Offsets applied when a tab is dropped in empty space, so the pointer
// lands inside the new container's header.
const (
	dropGrabOffsetX = 30
	dropGrabOffsetY = 10
)

// WindowSpec describes a window to create.
type WindowSpec struct {
	ID      store.WindowID
	Title   string
	Content string
	Hooks   hooks.Hooks
}

// Manager owns the engine state for one hosting surface. The store is
// injected so tests and hosts can run independent instances.
type Manager struct {
	store    *store.Store
	cfg      *config.Config
	hooks    *hooks.Dispatcher
	bridge   *detach.Bridge
	viewport geometry.Size
	nextZ    int
	dock     []store.ContainerID

	// pending holds lifecycle events queued for delivery after the
	// triggering call has returned. See FlushHooks.
	pending []pendingHook

	// SurfaceNotify, when set, reroutes detached-surface closure events
	// onto the host's event loop instead of calling SurfaceClosed inline.
	SurfaceNotify func(store.WindowID)
}

type pendingHook struct {
	id    store.WindowID
	event hooks.Event
}

// New creates a manager over the given store. opener may be nil; detach
// requests then fall back to in-editor containers.
func New(s *store.Store, cfg *config.Config, viewport geometry.Size, opener detach.Opener) *Manager {
	return &Manager{
		store:    s,
		cfg:      cfg,
		hooks:    hooks.NewDispatcher(),
		bridge:   detach.NewBridge(opener, cfg.SurfacePoll()),
		viewport: viewport,
	}
}

// Store exposes the underlying entity store for read-side consumers.
func (m *Manager) Store() *store.Store {
	return m.store
}

// Config returns the engine tunables.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Viewport returns the current viewport size.
func (m *Manager) Viewport() geometry.Size {
	return m.viewport
}

// SetViewport records a viewport resize and pushes every container back
// into reach.
func (m *Manager) SetViewport(size geometry.Size) {
	m.viewport = size
	for _, c := range m.store.Containers() {
		c.Rect = geometry.ConstrainToViewport(c.Rect, size, m.cfg.MinVisible)
	}
}

// CreateWindow allocates a window and places it in a fresh container at
// the next cascade position. The OnInit hook does not fire inline: it is
// queued, and the host drains it with FlushHooks once this call has
// returned, so the hook can observe the caller's populated handle.
func (m *Manager) CreateWindow(spec WindowSpec) (*store.Window, error) {
	w, err := m.store.CreateWindow(spec.ID, spec.Title, spec.Content)
	if err != nil {
		return nil, err
	}
	c := m.newCascadeContainer()
	if err := m.store.Attach(w.ID, c.ID, -1); err != nil {
		// Freshly created records; attach cannot fail.
		log.Printf("attach of new window %q failed: %v", w.ID, err)
	}
	m.raise(c)
	m.hooks.Register(w.ID, spec.Hooks)
	m.pending = append(m.pending, pendingHook{id: w.ID, event: hooks.EventInit})
	return w, nil
}

// FlushHooks delivers the lifecycle events queued by the last operation.
// Hosts call it after the triggering call has returned to the caller.
// Events queued by a hook itself are delivered in the same drain.
func (m *Manager) FlushHooks() {
	for len(m.pending) > 0 {
		p := m.pending[0]
		m.pending = m.pending[1:]
		m.hooks.Fire(p.id, p.event)
	}
}

// Window returns a window handle, or nil when the id is unknown.
func (m *Manager) Window(id store.WindowID) *store.Window {
	return m.store.Window(id)
}

// CloseWindow destroys a window. The OnClose hook fires before the record
// is deleted; the container is destroyed when its last tab goes.
func (m *Manager) CloseWindow(id store.WindowID) {
	w := m.store.Window(id)
	if w == nil {
		return
	}
	m.hooks.Fire(id, hooks.EventClose)
	if w.Detached {
		m.bridge.Close(id)
	}
	c := m.store.ContainerOf(id)
	m.store.Detach(id)
	if c != nil {
		if len(c.WindowIDs) == 0 {
			m.store.DeleteContainer(c.ID)
		} else {
			c.Hidden = !m.hasVisibleMember(c)
		}
	}
	if err := m.store.DeleteWindow(id); err != nil {
		log.Printf("delete window %q: %v", id, err)
	}
	m.hooks.Forget(id)
	m.updateDock()
}

// FocusWindow makes a window its container's active tab and raises the
// container, restoring it first if minimized.
func (m *Manager) FocusWindow(id store.WindowID) {
	w := m.store.Window(id)
	if w == nil || w.Detached {
		return
	}
	c := m.store.ContainerOf(id)
	if c == nil {
		return
	}
	if c.Minimized {
		m.RestoreContainer(c.ID)
	}
	m.store.SetActive(c.ID, id)
	m.raise(c)
}

// RestoreWindow brings a minimized window's container back from the dock.
func (m *Manager) RestoreWindow(id store.WindowID) {
	if c := m.store.ContainerOf(id); c != nil && c.Minimized {
		m.RestoreContainer(c.ID)
	}
}

// UpdateWindowTitle renames a window.
func (m *Manager) UpdateWindowTitle(id store.WindowID, title string) {
	w := m.store.Window(id)
	if w == nil {
		return
	}
	w.Title = title
}

// ReorderWindow splices a window next to a sibling tab in the same
// container. Cross-container targets and self-drops are no-ops.
func (m *Manager) ReorderWindow(id, target store.WindowID, before bool) {
	if id == target {
		return
	}
	c := m.store.ContainerOf(id)
	if c == nil || c != m.store.ContainerOf(target) {
		return
	}
	idx := c.IndexOf(target)
	if idx < 0 {
		return
	}
	from := c.IndexOf(id)
	if from < idx {
		// Removing the dragged tab first shifts the target left.
		idx--
	}
	if !before {
		idx++
	}
	m.store.Reorder(id, idx)
}

// MoveWindowToContainer moves a window into another container's tab
// sequence (appended) and focuses it there. The source container is
// destroyed if the move empties it.
func (m *Manager) MoveWindowToContainer(id store.WindowID, target store.ContainerID) {
	w := m.store.Window(id)
	tgt := m.store.Container(target)
	if w == nil || tgt == nil || w.Detached {
		return
	}
	if w.ContainerID == target {
		m.FocusWindow(id)
		return
	}
	src := m.store.ContainerOf(id)
	m.store.Detach(id)
	if src != nil {
		if len(src.WindowIDs) == 0 {
			m.store.DeleteContainer(src.ID)
		} else {
			src.Hidden = !m.hasVisibleMember(src)
		}
	}
	if err := m.store.Attach(id, target, -1); err != nil {
		log.Printf("move window %q to %q: %v", id, target, err)
		return
	}
	tgt.Hidden = false
	m.store.SetActive(target, id)
	m.raise(tgt)
	m.updateDock()
}

// MoveWindowToNewContainer pops a window out of its container into a
// fresh one at the next cascade position.
func (m *Manager) MoveWindowToNewContainer(id store.WindowID) {
	m.MoveWindowToPoint(id, m.cascadeRect())
}

// MoveWindowToPoint implements the detach-to-new-container drop: the
// window moves into a fresh container at the given geometry. When the
// source container holds only this window, the existing container is
// relocated instead so no empty container flickers in between.
func (m *Manager) MoveWindowToPoint(id store.WindowID, rect geometry.Rect) {
	w := m.store.Window(id)
	if w == nil || w.Detached {
		return
	}
	src := m.store.ContainerOf(id)
	rect = geometry.ConstrainToViewport(rect, m.viewport, m.cfg.MinVisible)

	if src != nil && len(src.WindowIDs) == 1 {
		src.Rect = rect
		m.raise(src)
		return
	}

	if src != nil {
		m.store.Detach(id)
		src.Hidden = !m.hasVisibleMember(src)
	}
	c := m.store.CreateContainer(rect)
	if err := m.store.Attach(id, c.ID, -1); err != nil {
		log.Printf("place window %q in new container: %v", id, err)
	}
	m.raise(c)
	m.updateDock()
}

// DropPointRect converts a drop position into the geometry for a new
// container, offset so the pointer lands inside the header.
func (m *Manager) DropPointRect(x, y int) geometry.Rect {
	return geometry.Rect{
		X:      x - dropGrabOffsetX,
		Y:      y - dropGrabOffsetY,
		Width:  m.cfg.DefaultWindowWidth,
		Height: m.cfg.DefaultWindowHeight,
	}
}

func (m *Manager) raise(c *store.Container) {
	m.nextZ++
	c.ZOrder = m.nextZ
}

func (m *Manager) cascadeRect() geometry.Rect {
	offset := 0
	if m.cfg.CascadeMax > 0 {
		offset = (m.store.ContainerCount() * m.cfg.CascadeStep) % m.cfg.CascadeMax
	}
	rect := geometry.Rect{
		X:      m.viewport.Width/2 - m.cfg.DefaultWindowWidth/2 + offset,
		Y:      m.viewport.Height/2 - m.cfg.DefaultWindowHeight/2 + offset,
		Width:  m.cfg.DefaultWindowWidth,
		Height: m.cfg.DefaultWindowHeight,
	}
	return geometry.ConstrainToViewport(rect, m.viewport, m.cfg.MinVisible)
}

func (m *Manager) newCascadeContainer() *store.Container {
	return m.store.CreateContainer(m.cascadeRect())
}
