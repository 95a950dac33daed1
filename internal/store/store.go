// Package store owns the window and container records and the referential
// integrity between them. All membership mutations go through the store so
// a window's container reference and the container's tab order can never
// drift apart.
package store

import (
	"fmt"
	"sort"

	"github.com/1broseidon/floatile/internal/geometry"
)

// WindowID uniquely identifies a window.
type WindowID string

// ContainerID uniquely identifies a container.
type ContainerID string

// Window is a titled content panel. Content is an opaque blob the engine
// never interprets beyond handing it to the host for mounting.
type Window struct {
	ID          WindowID    `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"-"`
	Minimized   bool        `json:"minimized"`
	Detached    bool        `json:"detached"`
	ContainerID ContainerID `json:"container_id,omitempty"`
}

// Container is a draggable/resizable shell holding one or more windows as
// tabs. A detached window stays in WindowIDs so the container remains its
// home to return to; Hidden marks containers whose members are all
// detached.
type Container struct {
	ID             ContainerID   `json:"id"`
	WindowIDs      []WindowID    `json:"window_ids"`
	ActiveWindowID WindowID      `json:"active_window_id,omitempty"`
	Minimized      bool          `json:"minimized"`
	Hidden         bool          `json:"hidden"`
	ZOrder         int           `json:"z_order"`
	Rect           geometry.Rect `json:"rect"`
}

// IndexOf returns the tab position of the given window, or -1.
func (c *Container) IndexOf(id WindowID) int {
	for i, wid := range c.WindowIDs {
		if wid == id {
			return i
		}
	}
	return -1
}

// Store is the single owner of window and container records. It is not
// safe for concurrent use; the hosting surface serializes mutations.
type Store struct {
	windows       map[WindowID]*Window
	containers    map[ContainerID]*Container
	nextContainer int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		windows:    make(map[WindowID]*Window),
		containers: make(map[ContainerID]*Container),
	}
}

// CreateWindow allocates a window record. The window starts unplaced;
// callers attach it to a container before handing it out.
func (s *Store) CreateWindow(id WindowID, title, content string) (*Window, error) {
	if id == "" {
		return nil, fmt.Errorf("window id must not be empty")
	}
	if _, exists := s.windows[id]; exists {
		return nil, fmt.Errorf("window %q already exists", id)
	}
	w := &Window{ID: id, Title: title, Content: content}
	s.windows[id] = w
	return w, nil
}

// Window returns the window with the given id, or nil.
func (s *Store) Window(id WindowID) *Window {
	return s.windows[id]
}

// DeleteWindow removes a window record. It refuses to leave a dangling tab
// entry behind: the window must be removed from its container first.
func (s *Store) DeleteWindow(id WindowID) error {
	w := s.windows[id]
	if w == nil {
		return nil
	}
	if w.ContainerID != "" {
		if c := s.containers[w.ContainerID]; c != nil && c.IndexOf(id) >= 0 {
			return fmt.Errorf("window %q is still a member of container %q", id, w.ContainerID)
		}
	}
	delete(s.windows, id)
	return nil
}

// CreateContainer allocates an empty container at the given position.
func (s *Store) CreateContainer(rect geometry.Rect) *Container {
	s.nextContainer++
	c := &Container{
		ID:   ContainerID(fmt.Sprintf("c%d", s.nextContainer)),
		Rect: rect,
	}
	s.containers[c.ID] = c
	return c
}

// Container returns the container with the given id, or nil.
func (s *Store) Container(id ContainerID) *Container {
	return s.containers[id]
}

// DeleteContainer removes an empty container. Non-empty containers are
// left alone; callers must empty them first.
func (s *Store) DeleteContainer(id ContainerID) {
	c := s.containers[id]
	if c == nil || len(c.WindowIDs) > 0 {
		return
	}
	delete(s.containers, id)
}

// ContainerCount returns the number of live containers.
func (s *Store) ContainerCount() int {
	return len(s.containers)
}

// WindowCount returns the number of live windows.
func (s *Store) WindowCount() int {
	return len(s.windows)
}

// Containers returns all containers sorted by ascending z-order, so the
// last element is front-most.
func (s *Store) Containers() []*Container {
	out := make([]*Container, 0, len(s.containers))
	for _, c := range s.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZOrder < out[j].ZOrder })
	return out
}

// Windows returns all windows sorted by id for stable listings.
func (s *Store) Windows() []*Window {
	out := make([]*Window, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WindowsOf returns the container's member windows in tab order.
func (s *Store) WindowsOf(id ContainerID) []*Window {
	c := s.containers[id]
	if c == nil {
		return nil
	}
	out := make([]*Window, 0, len(c.WindowIDs))
	for _, wid := range c.WindowIDs {
		if w := s.windows[wid]; w != nil {
			out = append(out, w)
		}
	}
	return out
}

// ContainerOf returns the container a window belongs to, or nil.
func (s *Store) ContainerOf(id WindowID) *Container {
	w := s.windows[id]
	if w == nil || w.ContainerID == "" {
		return nil
	}
	return s.containers[w.ContainerID]
}

// Attach appends a window to a container's tab order at the given index
// (negative or out-of-range appends). The window must not already belong
// to a container.
func (s *Store) Attach(wid WindowID, cid ContainerID, index int) error {
	w := s.windows[wid]
	if w == nil {
		return fmt.Errorf("unknown window %q", wid)
	}
	c := s.containers[cid]
	if c == nil {
		return fmt.Errorf("unknown container %q", cid)
	}
	if c.IndexOf(wid) >= 0 {
		return fmt.Errorf("window %q is already a tab of container %q", wid, cid)
	}
	if w.ContainerID != "" && w.ContainerID != cid {
		if prev := s.containers[w.ContainerID]; prev != nil && prev.IndexOf(wid) >= 0 {
			return fmt.Errorf("window %q is still a member of container %q", wid, w.ContainerID)
		}
	}
	if index < 0 || index > len(c.WindowIDs) {
		index = len(c.WindowIDs)
	}
	c.WindowIDs = append(c.WindowIDs, "")
	copy(c.WindowIDs[index+1:], c.WindowIDs[index:])
	c.WindowIDs[index] = wid
	w.ContainerID = cid
	w.Minimized = c.Minimized
	s.reassignActive(c)
	return nil
}

// Detach removes a window from its container's tab order and clears its
// container reference. The active window is reassigned to a remaining
// visible member, or cleared when none remains.
func (s *Store) Detach(wid WindowID) {
	w := s.windows[wid]
	if w == nil || w.ContainerID == "" {
		return
	}
	c := s.containers[w.ContainerID]
	w.ContainerID = ""
	if c == nil {
		return
	}
	if i := c.IndexOf(wid); i >= 0 {
		c.WindowIDs = append(c.WindowIDs[:i], c.WindowIDs[i+1:]...)
	}
	if c.ActiveWindowID == wid {
		c.ActiveWindowID = ""
		s.reassignActive(c)
	}
}

// Reorder moves a window within its container's tab order to the given
// index. Unknown ids are no-ops.
func (s *Store) Reorder(wid WindowID, index int) {
	c := s.ContainerOf(wid)
	if c == nil {
		return
	}
	from := c.IndexOf(wid)
	if from < 0 {
		return
	}
	c.WindowIDs = append(c.WindowIDs[:from], c.WindowIDs[from+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(c.WindowIDs) {
		index = len(c.WindowIDs)
	}
	c.WindowIDs = append(c.WindowIDs, "")
	copy(c.WindowIDs[index+1:], c.WindowIDs[index:])
	c.WindowIDs[index] = wid
}

// SetActive makes a window its container's active tab. Detached windows
// are never active; requests for one fall back to a visible sibling.
func (s *Store) SetActive(cid ContainerID, wid WindowID) {
	c := s.containers[cid]
	if c == nil {
		return
	}
	w := s.windows[wid]
	if w == nil || c.IndexOf(wid) < 0 || w.Detached {
		s.reassignActive(c)
		return
	}
	c.ActiveWindowID = wid
}

// ReassignActive picks a visible member as the active window if the
// current active entry is missing or detached.
func (s *Store) ReassignActive(cid ContainerID) {
	if c := s.containers[cid]; c != nil {
		s.reassignActive(c)
	}
}

func (s *Store) reassignActive(c *Container) {
	if cur := s.windows[c.ActiveWindowID]; cur != nil && !cur.Detached && c.IndexOf(c.ActiveWindowID) >= 0 {
		return
	}
	c.ActiveWindowID = ""
	for _, wid := range c.WindowIDs {
		if w := s.windows[wid]; w != nil && !w.Detached {
			c.ActiveWindowID = wid
			return
		}
	}
}

// Validate checks referential integrity across all records. Property tests
// run it after every operation.
func (s *Store) Validate() error {
	for cid, c := range s.containers {
		seen := make(map[WindowID]struct{}, len(c.WindowIDs))
		visible := 0
		for _, wid := range c.WindowIDs {
			if _, dup := seen[wid]; dup {
				return fmt.Errorf("container %q lists window %q twice", cid, wid)
			}
			seen[wid] = struct{}{}
			w := s.windows[wid]
			if w == nil {
				return fmt.Errorf("container %q lists unknown window %q", cid, wid)
			}
			if w.ContainerID != cid {
				return fmt.Errorf("window %q is listed by container %q but references %q", wid, cid, w.ContainerID)
			}
			if !w.Detached {
				visible++
			}
		}
		if c.ActiveWindowID != "" {
			if _, ok := seen[c.ActiveWindowID]; !ok {
				return fmt.Errorf("container %q active window %q is not a member", cid, c.ActiveWindowID)
			}
			if w := s.windows[c.ActiveWindowID]; w != nil && w.Detached {
				return fmt.Errorf("container %q active window %q is detached", cid, c.ActiveWindowID)
			}
		} else if visible > 0 {
			return fmt.Errorf("container %q has visible members but no active window", cid)
		}
	}
	for wid, w := range s.windows {
		if w.ContainerID == "" {
			continue
		}
		c := s.containers[w.ContainerID]
		if c == nil {
			return fmt.Errorf("window %q references unknown container %q", wid, w.ContainerID)
		}
		if c.IndexOf(wid) < 0 {
			return fmt.Errorf("window %q references container %q but is not a tab there", wid, w.ContainerID)
		}
	}
	return nil
}
