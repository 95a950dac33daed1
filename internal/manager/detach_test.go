package manager

import (
	"errors"
	"testing"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/detach"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/hooks"
	"github.com/1broseidon/floatile/internal/store"
)

type stubSurface struct {
	closed  bool
	onClose func()
}

func (s *stubSurface) Mount(title, content string) {}
func (s *stubSurface) NotifyClose(fn func()) bool {
	s.onClose = fn
	return true
}
func (s *stubSurface) Closed() bool { return s.closed }
func (s *stubSurface) Close()       { s.closed = true }

type stubOpener struct {
	blocked bool
	last    *stubSurface
}

func (o *stubOpener) OpenSurface(title, content string) (detach.Surface, error) {
	if o.blocked {
		return nil, errors.New("blocked by host")
	}
	o.last = &stubSurface{}
	return o.last, nil
}

func newDetachManager(t *testing.T, opener detach.Opener) *Manager {
	t.Helper()
	return New(store.New(), config.Default(), geometry.Size{Width: 1600, Height: 1000}, opener)
}

func TestDetachWindow_RoundTripReturnsToHomeContainer(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w := createWindow(t, m, "w1")
	home := m.Store().ContainerOf(w.ID)

	var events []hooks.Event
	m.hooks.Register(w.ID, hooks.Hooks{
		OnDetach:      func() { events = append(events, hooks.EventDetach) },
		OnDetachClose: func() { events = append(events, hooks.EventDetachClose) },
	})

	m.DetachWindow(w.ID)
	checkInvariants(t, m)
	if !w.Detached {
		t.Fatalf("window not marked detached")
	}
	if w.ContainerID != home.ID {
		t.Fatalf("detach must keep the home container reference, got %q", w.ContainerID)
	}
	if !home.Hidden {
		t.Fatalf("container with no visible member must hide, not die")
	}
	if home.ActiveWindowID != "" {
		t.Fatalf("active window must clear when all members are detached")
	}

	// The surface closing brings the window home.
	opener.last.onClose()
	checkInvariants(t, m)
	if w.Detached {
		t.Fatalf("window still detached after surface closed")
	}
	if w.ContainerID != home.ID || home.Hidden {
		t.Fatalf("window did not return home: container=%q hidden=%v", w.ContainerID, home.Hidden)
	}
	if home.ActiveWindowID != w.ID {
		t.Fatalf("sole visible tab must be focused, active=%q", home.ActiveWindowID)
	}
	if w.Title != "w1 title" || w.Content != "<blob>" {
		t.Fatalf("round trip altered window payload")
	}
	if len(events) != 2 || events[0] != hooks.EventDetach || events[1] != hooks.EventDetachClose {
		t.Fatalf("unexpected hook sequence: %v", events)
	}
}

func TestDetachWindow_SiblingGetsFocus(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)
	m.FocusWindow(w1.ID)

	m.DetachWindow(w1.ID)
	checkInvariants(t, m)
	if c.Hidden {
		t.Fatalf("container with a visible member must stay visible")
	}
	if c.ActiveWindowID != w2.ID {
		t.Fatalf("expected remaining window focused, got %q", c.ActiveWindowID)
	}
}

func TestDetachWindow_BlockedHostFallsBackInEditor(t *testing.T) {
	opener := &stubOpener{blocked: true}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)

	m.DetachWindow(w2.ID)
	checkInvariants(t, m)
	if w2.Detached {
		t.Fatalf("blocked detach must not mark the window detached")
	}
	if m.Store().ContainerOf(w2.ID) == c {
		t.Fatalf("blocked detach must move the window to a new container")
	}
}

func TestSurfaceClosed_HomeGoneFabricatesContainer(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)

	m.DetachWindow(w2.ID)
	// Closing the sibling empties and (with the detached member moved out
	// by merge) removes the home.
	other := m.Store().ContainerOf(w1.ID)
	m.MergeContainers(other.ID, other.ID) // no-op guard
	m.CloseWindow(w1.ID)

	// Simulate the home vanishing entirely.
	m.Store().Detach(w2.ID)
	m.Store().DeleteContainer(c.ID)
	before := m.Store().ContainerCount()

	opener.last.onClose()
	checkInvariants(t, m)
	if w2.Detached {
		t.Fatalf("window still detached")
	}
	if m.Store().ContainerCount() != before+1 {
		t.Fatalf("expected a fabricated container")
	}
	if got := m.Store().ContainerOf(w2.ID); got == nil || got.ActiveWindowID != w2.ID {
		t.Fatalf("window not focused in fabricated container")
	}
}

func TestCloseWindow_LastVisibleTabHidesHome(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)

	m.DetachWindow(w2.ID)
	m.CloseWindow(w1.ID)
	checkInvariants(t, m)
	if m.Store().Container(c.ID) == nil {
		t.Fatalf("home container must survive while a detached member remains")
	}
	if !c.Hidden {
		t.Fatalf("container with only detached members must hide")
	}

	// The surface closing unhides the home.
	opener.last.onClose()
	checkInvariants(t, m)
	if c.Hidden || c.ActiveWindowID != w2.ID {
		t.Fatalf("window did not return to the hidden home: hidden=%v active=%q",
			c.Hidden, c.ActiveWindowID)
	}
}

func TestMoveWindowToContainer_LastVisibleTabHidesSource(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	w3 := createWindow(t, m, "w3")
	src := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, src.ID)
	tgt := m.Store().ContainerOf(w3.ID)

	m.DetachWindow(w2.ID)
	m.MoveWindowToContainer(w1.ID, tgt.ID)
	checkInvariants(t, m)
	if m.Store().Container(src.ID) == nil {
		t.Fatalf("source container must survive while a detached member remains")
	}
	if !src.Hidden {
		t.Fatalf("source with only detached members must hide")
	}
}

func TestMoveWindowToPoint_LastVisibleTabHidesSource(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w1 := createWindow(t, m, "w1")
	w2 := createWindow(t, m, "w2")
	src := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, src.ID)

	m.DetachWindow(w2.ID)
	m.MoveWindowToPoint(w1.ID, geometry.Rect{X: 40, Y: 40, Width: 300, Height: 200})
	checkInvariants(t, m)
	if !src.Hidden {
		t.Fatalf("source with only detached members must hide")
	}
	if m.Store().ContainerOf(w1.ID).ID == src.ID {
		t.Fatalf("moved window must land in a fresh container")
	}
}

func TestDetachWindow_AlreadyDetachedIsNoOp(t *testing.T) {
	opener := &stubOpener{}
	m := newDetachManager(t, opener)
	w := createWindow(t, m, "w1")
	m.DetachWindow(w.ID)
	first := opener.last
	m.DetachWindow(w.ID)
	if opener.last != first {
		t.Fatalf("second detach opened another surface")
	}
}
