package manager

import (
	"log"
	"strings"

	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/hooks"
	"github.com/1broseidon/floatile/internal/store"
)

// DockItem is one entry in the minimized dock, aggregating the titles of
// the container's member windows.
type DockItem struct {
	ContainerID store.ContainerID `json:"container_id"`
	Label       string            `json:"label"`
}

// MinimizeContainer collapses a container into the dock. Geometry is kept
// so restore returns to the last position and size.
func (m *Manager) MinimizeContainer(id store.ContainerID) {
	c := m.store.Container(id)
	if c == nil || c.Minimized {
		return
	}
	c.Minimized = true
	for _, w := range m.store.WindowsOf(id) {
		w.Minimized = true
		if !w.Detached {
			m.hooks.Fire(w.ID, hooks.EventMinimize)
		}
	}
	m.updateDock()
}

// RestoreContainer brings a minimized container back at its previous
// geometry and raises it to the front.
func (m *Manager) RestoreContainer(id store.ContainerID) {
	c := m.store.Container(id)
	if c == nil || !c.Minimized {
		return
	}
	c.Minimized = false
	for _, w := range m.store.WindowsOf(id) {
		w.Minimized = false
		if !w.Detached {
			m.hooks.Fire(w.ID, hooks.EventRestore)
		}
	}
	m.raise(c)
	m.updateDock()
}

// BringContainerToFront assigns the next z-order value. Values are never
// reused, so the front-most container is always unambiguous.
func (m *Manager) BringContainerToFront(id store.ContainerID) {
	if c := m.store.Container(id); c != nil {
		m.raise(c)
	}
}

// SetContainerRect applies live drag/resize geometry to a container.
func (m *Manager) SetContainerRect(id store.ContainerID, rect geometry.Rect) {
	if c := m.store.Container(id); c != nil {
		c.Rect = rect
	}
}

// ConstrainContainer snaps a container back into the viewport after a
// gesture ends.
func (m *Manager) ConstrainContainer(id store.ContainerID) {
	if c := m.store.Container(id); c != nil {
		c.Rect = geometry.ConstrainToViewport(c.Rect, m.viewport, m.cfg.MinVisible)
	}
}

// ResizeContainer applies an edge/corner resize delta with the configured
// minimum size and edge margin.
func (m *Manager) ResizeContainer(id store.ContainerID, start geometry.Rect, dx, dy int, edges geometry.Edge) {
	c := m.store.Container(id)
	if c == nil {
		return
	}
	c.Rect = geometry.ClampResize(
		start, dx, dy, edges,
		m.cfg.MinWindowWidth, m.cfg.MinWindowHeight,
		m.viewport, m.cfg.EdgeMargin,
	)
}

// MergeContainers moves every window from source into target's tab
// sequence, preserving source-internal order, then discards the source.
// The first moved window becomes target's active tab and target comes to
// the front. Same-id and unknown-id calls are no-ops.
func (m *Manager) MergeContainers(source, target store.ContainerID) {
	if source == target {
		return
	}
	src := m.store.Container(source)
	tgt := m.store.Container(target)
	if src == nil || tgt == nil {
		return
	}

	moved := append([]store.WindowID(nil), src.WindowIDs...)
	for _, wid := range moved {
		m.store.Detach(wid)
		if err := m.store.Attach(wid, target, -1); err != nil {
			log.Printf("merge: move window %q into %q: %v", wid, target, err)
		}
	}
	m.store.DeleteContainer(source)

	if len(moved) > 0 {
		m.store.SetActive(target, moved[0])
	}
	tgt.Hidden = !m.hasVisibleMember(tgt)
	m.raise(tgt)
	m.updateDock()
}

// DockItems returns the dock's current entries in display order.
func (m *Manager) DockItems() []DockItem {
	items := make([]DockItem, 0, len(m.dock))
	for _, cid := range m.dock {
		titles := make([]string, 0, 4)
		for _, w := range m.store.WindowsOf(cid) {
			titles = append(titles, w.Title)
		}
		items = append(items, DockItem{ContainerID: cid, Label: strings.Join(titles, " | ")})
	}
	return items
}

// MoveDockItem reorders the dock's display sequence. Container identity
// is untouched.
func (m *Manager) MoveDockItem(from, to int) {
	if from < 0 || from >= len(m.dock) || to < 0 || to >= len(m.dock) || from == to {
		return
	}
	cid := m.dock[from]
	m.dock = append(m.dock[:from], m.dock[from+1:]...)
	m.dock = append(m.dock[:to], append([]store.ContainerID{cid}, m.dock[to:]...)...)
}

// updateDock recomputes the dock membership from all minimized,
// non-hidden containers, keeping the existing display order for entries
// that remain.
func (m *Manager) updateDock() {
	kept := m.dock[:0]
	seen := make(map[store.ContainerID]struct{}, len(m.dock))
	for _, cid := range m.dock {
		if c := m.store.Container(cid); c != nil && c.Minimized && !c.Hidden {
			kept = append(kept, cid)
			seen[cid] = struct{}{}
		}
	}
	m.dock = kept
	for _, c := range m.store.Containers() {
		if !c.Minimized || c.Hidden {
			continue
		}
		if _, ok := seen[c.ID]; !ok {
			m.dock = append(m.dock, c.ID)
		}
	}
}

func (m *Manager) hasVisibleMember(c *store.Container) bool {
	for _, w := range m.store.WindowsOf(c.ID) {
		if !w.Detached {
			return true
		}
	}
	return false
}
