// Package gesture drives the drag-and-drop state machine: tab drags that
// reorder, merge, or pop windows out, and header drags that move
// containers with dwell-gated merging. It speaks a generic
// start/move/end protocol so hosts can feed it from any input system.
package gesture

import (
	"sync"
	"time"

	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

// Phase represents the current phase of a drag gesture.
type Phase int

const (
	// PhaseIdle means no gesture is in flight.
	PhaseIdle Phase = iota
	// PhaseTabDragging means a tab is being dragged.
	PhaseTabDragging
	// PhaseHeaderDragging means a container is being moved by its header.
	PhaseHeaderDragging
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTabDragging:
		return "tab-dragging"
	case PhaseHeaderDragging:
		return "header-dragging"
	default:
		return "unknown"
	}
}

// Indicator is the visual drop hint projected from session state.
type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorInsertBefore
	IndicatorInsertAfter
	IndicatorMerge
)

// Context describes what the host's hit-testing found under the pointer
// for one gesture event. During a header drag, Container must be the
// top-most container other than the dragged one, since the dragged
// container tracks the pointer.
type Context struct {
	X, Y      int
	Container store.ContainerID
	Tab       store.WindowID
	TabRect   geometry.Rect
	InTabBar  bool
}

// Session is the ephemeral state of one drag gesture. It exists from
// gesture start to gesture end and is never persisted.
type Session struct {
	Phase       Phase
	WindowID    store.WindowID
	ContainerID store.ContainerID
	StartX      int
	StartY      int
	X           int
	Y           int

	// Merge candidacy is explicit state; highlights are a projection.
	PendingMergeTarget store.ContainerID
	MergeEligible      bool

	Indicator    Indicator
	IndicatorTab store.WindowID

	startRect geometry.Rect
	moved     bool
}

// Coordinator owns the drag session and applies its outcomes through the
// manager. Safe for the dwell timer goroutine to call back into.
type Coordinator struct {
	mu      sync.Mutex
	mgr     *manager.Manager
	session Session
	epoch   int
	dwell   *time.Timer

	// newTimer is a hook for tests to trigger the dwell deadline
	// deterministically.
	newTimer func(d time.Duration, fn func()) *time.Timer
}

// NewCoordinator creates a coordinator over the given manager.
func NewCoordinator(mgr *manager.Manager) *Coordinator {
	return &Coordinator{
		mgr:      mgr,
		newTimer: time.AfterFunc,
	}
}

// State returns a snapshot of the current session for rendering.
func (c *Coordinator) State() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Active reports whether a gesture is in flight.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Phase != PhaseIdle
}

// StartTabDrag begins dragging a tab. Unknown ids leave the coordinator
// idle so a racing close cannot start a dead gesture.
func (c *Coordinator) StartTabDrag(id store.WindowID, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()

	src := c.mgr.Store().ContainerOf(id)
	if src == nil {
		return
	}
	c.session = Session{
		Phase:       PhaseTabDragging,
		WindowID:    id,
		ContainerID: src.ID,
		StartX:      x,
		StartY:      y,
		X:           x,
		Y:           y,
	}
}

// StartHeaderDrag begins moving a container by its header. The container
// is raised immediately.
func (c *Coordinator) StartHeaderDrag(id store.ContainerID, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()

	ct := c.mgr.Store().Container(id)
	if ct == nil {
		return
	}
	c.mgr.BringContainerToFront(id)
	c.session = Session{
		Phase:       PhaseHeaderDragging,
		ContainerID: id,
		StartX:      x,
		StartY:      y,
		X:           x,
		Y:           y,
		startRect:   ct.Rect,
	}
}

// Move feeds a pointer-move event into the active gesture. It only
// updates session/indicator state and live geometry; data ownership never
// changes until End.
func (c *Coordinator) Move(ctx Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.Phase {
	case PhaseTabDragging:
		c.moveTabLocked(ctx)
	case PhaseHeaderDragging:
		c.moveHeaderLocked(ctx)
	}
}

// End finishes the active gesture at the given context and applies its
// outcome. A drop with no valid target only clears indicator state.
func (c *Coordinator) End(ctx Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.Phase {
	case PhaseTabDragging:
		c.endTabLocked(ctx)
	case PhaseHeaderDragging:
		c.endHeaderLocked(ctx)
	}
	c.resetLocked()
}

// Cancel aborts the active gesture without applying any outcome beyond
// indicator cleanup.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Coordinator) moveTabLocked(ctx Context) {
	s := &c.session
	s.X, s.Y = ctx.X, ctx.Y
	s.Indicator = IndicatorNone
	s.IndicatorTab = ""
	s.PendingMergeTarget = ""

	// The dragged window may have been closed mid-drag.
	src := c.mgr.Store().ContainerOf(s.WindowID)
	if src == nil {
		return
	}
	s.ContainerID = src.ID

	if ctx.Tab != "" && ctx.Tab != s.WindowID {
		if tc := c.mgr.Store().ContainerOf(ctx.Tab); tc == src {
			if before(ctx) {
				s.Indicator = IndicatorInsertBefore
			} else {
				s.Indicator = IndicatorInsertAfter
			}
			s.IndicatorTab = ctx.Tab
			return
		}
	}
	if ctx.Container != "" && ctx.Container != src.ID && (ctx.InTabBar || ctx.Tab != "") {
		s.Indicator = IndicatorMerge
		s.PendingMergeTarget = ctx.Container
	}
}

func (c *Coordinator) endTabLocked(ctx Context) {
	s := &c.session
	if c.mgr.Window(s.WindowID) == nil {
		return
	}
	src := c.mgr.Store().ContainerOf(s.WindowID)
	if src == nil {
		return
	}
	if ctx.Tab == s.WindowID {
		return
	}

	// Outcomes are decided from the drop context, never from stale
	// indicator state.
	if ctx.Tab != "" {
		if tc := c.mgr.Store().ContainerOf(ctx.Tab); tc == src {
			c.mgr.ReorderWindow(s.WindowID, ctx.Tab, before(ctx))
			return
		}
	}
	if ctx.Container != "" {
		if ctx.Container != src.ID && (ctx.InTabBar || ctx.Tab != "") {
			c.mgr.MoveWindowToContainer(s.WindowID, ctx.Container)
		}
		return
	}
	c.mgr.MoveWindowToPoint(s.WindowID, c.mgr.DropPointRect(ctx.X, ctx.Y))
}

func (c *Coordinator) moveHeaderLocked(ctx Context) {
	s := &c.session
	s.X, s.Y = ctx.X, ctx.Y
	dx, dy := ctx.X-s.StartX, ctx.Y-s.StartY

	if !s.moved {
		threshold := c.mgr.Config().DragThreshold
		if abs(dx) < threshold && abs(dy) < threshold {
			return
		}
		s.moved = true
	}

	x, y := geometry.ClampDrag(s.startRect, dx, dy, c.mgr.Viewport(), c.mgr.Config().MinVisible)
	rect := s.startRect
	rect.X, rect.Y = x, y
	c.mgr.SetContainerRect(s.ContainerID, rect)

	candidate := ctx.Container
	if candidate == s.ContainerID {
		candidate = ""
	}
	if candidate == s.PendingMergeTarget {
		return
	}

	// Leaving the previous candidate cancels its dwell and highlight.
	c.stopDwellLocked()
	s.PendingMergeTarget = candidate
	s.MergeEligible = false
	if candidate == "" {
		return
	}
	epoch := c.epoch
	c.dwell = c.newTimer(c.mgr.Config().MergeDwell(), func() {
		c.dwellElapsed(epoch, candidate)
	})
}

func (c *Coordinator) endHeaderLocked(ctx Context) {
	s := &c.session
	if !s.moved {
		// Below the threshold this was a click; the raise already
		// happened on gesture start.
		return
	}
	if s.MergeEligible && s.PendingMergeTarget != "" &&
		c.mgr.Store().Container(s.PendingMergeTarget) != nil {
		c.mgr.MergeContainers(s.ContainerID, s.PendingMergeTarget)
		return
	}
	c.mgr.ConstrainContainer(s.ContainerID)
}

// dwellElapsed marks the hovered container merge-eligible. It runs on the
// timer goroutine; the epoch guard drops firings from a finished gesture.
func (c *Coordinator) dwellElapsed(epoch int, candidate store.ContainerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.session.Phase != PhaseHeaderDragging {
		return
	}
	if c.session.PendingMergeTarget != candidate {
		return
	}
	c.session.MergeEligible = true
}

func (c *Coordinator) stopDwellLocked() {
	if c.dwell != nil {
		c.dwell.Stop()
		c.dwell = nil
	}
}

func (c *Coordinator) resetLocked() {
	c.stopDwellLocked()
	c.epoch++
	c.session = Session{Phase: PhaseIdle}
}

func before(ctx Context) bool {
	return ctx.X < ctx.TabRect.X+ctx.TabRect.Width/2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
