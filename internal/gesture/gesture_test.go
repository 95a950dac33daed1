package gesture

import (
	"testing"
	"time"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

func newFixture(t *testing.T) (*manager.Manager, *Coordinator) {
	t.Helper()
	m := manager.New(store.New(), config.Default(), geometry.Size{Width: 1600, Height: 1000}, nil)
	return m, NewCoordinator(m)
}

func addWindow(t *testing.T, m *manager.Manager, id store.WindowID) *store.Window {
	t.Helper()
	w, err := m.CreateWindow(manager.WindowSpec{ID: id, Title: string(id), Content: "x"})
	if err != nil {
		t.Fatalf("CreateWindow(%q): %v", id, err)
	}
	return w
}

// manualDwell replaces the dwell timer so tests elapse it deterministically.
func manualDwell(c *Coordinator) *func() {
	var fire func()
	c.newTimer = func(d time.Duration, fn func()) *time.Timer {
		fire = fn
		return time.NewTimer(time.Hour)
	}
	return &fire
}

func checkInvariants(t *testing.T, m *manager.Manager) {
	t.Helper()
	if err := m.Store().Validate(); err != nil {
		t.Fatalf("store invariant violated: %v", err)
	}
}

func TestTabDrag_ReorderBeforeByMidpoint(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	w3 := addWindow(t, m, "w3")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)
	m.MoveWindowToContainer(w3.ID, c.ID)

	// Drag w3 and drop on the left half of w1's tab.
	g.StartTabDrag(w3.ID, 300, 20)
	target := Context{X: 110, Y: 20, Container: c.ID, Tab: w1.ID, TabRect: geometry.Rect{X: 100, Y: 10, Width: 80, Height: 20}, InTabBar: true}
	g.Move(target)
	if st := g.State(); st.Indicator != IndicatorInsertBefore || st.IndicatorTab != w1.ID {
		t.Fatalf("expected insert-before indicator on w1, got %+v", st)
	}
	g.End(target)
	checkInvariants(t, m)

	if got := c.WindowIDs; got[0] != "w3" || got[1] != "w1" || got[2] != "w2" {
		t.Fatalf("expected [w3 w1 w2], got %v", got)
	}
	if g.Active() {
		t.Fatalf("session must clear after drop")
	}
}

func TestTabDrag_ReorderAfterByMidpoint(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	w3 := addWindow(t, m, "w3")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)
	m.MoveWindowToContainer(w3.ID, c.ID)

	// Drop w1 on the right half of w2's tab.
	g.StartTabDrag(w1.ID, 100, 20)
	target := Context{X: 260, Y: 20, Container: c.ID, Tab: w2.ID, TabRect: geometry.Rect{X: 200, Y: 10, Width: 80, Height: 20}, InTabBar: true}
	g.End(target)
	checkInvariants(t, m)

	if got := c.WindowIDs; got[0] != "w2" || got[1] != "w1" || got[2] != "w3" {
		t.Fatalf("expected [w2 w1 w3], got %v", got)
	}
}

func TestTabDrag_DropOnOtherContainerMerges(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	src := m.Store().ContainerOf(w1.ID)
	tgt := m.Store().ContainerOf(w2.ID)

	g.StartTabDrag(w1.ID, 100, 20)
	drop := Context{X: 700, Y: 300, Container: tgt.ID, InTabBar: true}
	g.Move(drop)
	if st := g.State(); st.Indicator != IndicatorMerge || st.PendingMergeTarget != tgt.ID {
		t.Fatalf("expected merge indicator over target, got %+v", st)
	}
	g.End(drop)
	checkInvariants(t, m)

	if m.Store().Container(src.ID) != nil {
		t.Fatalf("empty source container must be destroyed")
	}
	if w1.ContainerID != tgt.ID {
		t.Fatalf("window not moved to target container")
	}
	if tgt.ActiveWindowID != w1.ID {
		t.Fatalf("moved window must be focused in target")
	}
}

func TestTabDrag_DropOutsideCreatesContainerAtPoint(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)
	before := m.Store().ContainerCount()

	g.StartTabDrag(w2.ID, 100, 20)
	g.End(Context{X: 900, Y: 600})
	checkInvariants(t, m)

	if m.Store().ContainerCount() != before+1 {
		t.Fatalf("expected detach to create a container")
	}
	nc := m.Store().ContainerOf(w2.ID)
	if nc == c {
		t.Fatalf("window still in source container")
	}
	if !nc.Rect.Contains(900, 600) {
		t.Fatalf("drop point %v must land inside the new container %+v", [2]int{900, 600}, nc.Rect)
	}
}

func TestTabDrag_SingleWindowDropOutsideRelocates(t *testing.T) {
	m, g := newFixture(t)
	w := addWindow(t, m, "w1")
	c := m.Store().ContainerOf(w.ID)
	before := m.Store().ContainerCount()

	g.StartTabDrag(w.ID, 100, 20)
	g.End(Context{X: 900, Y: 600})
	checkInvariants(t, m)

	if m.Store().ContainerCount() != before {
		t.Fatalf("single-window detach must reuse the container")
	}
	if m.Store().ContainerOf(w.ID) != c {
		t.Fatalf("container identity changed")
	}
}

func TestTabDrag_SelfDropIsNoOp(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c := m.Store().ContainerOf(w1.ID)
	m.MoveWindowToContainer(w2.ID, c.ID)
	order := append([]store.WindowID(nil), c.WindowIDs...)

	g.StartTabDrag(w1.ID, 100, 20)
	g.End(Context{X: 105, Y: 20, Container: c.ID, Tab: w1.ID, TabRect: geometry.Rect{X: 100, Y: 10, Width: 80, Height: 20}, InTabBar: true})
	for i, wid := range c.WindowIDs {
		if order[i] != wid {
			t.Fatalf("self-drop changed order: %v -> %v", order, c.WindowIDs)
		}
	}
}

func TestTabDrag_WindowClosedMidDragIsSafe(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	tgt := m.Store().ContainerOf(w2.ID)

	g.StartTabDrag(w1.ID, 100, 20)
	m.CloseWindow(w1.ID)
	g.Move(Context{X: 700, Y: 300, Container: tgt.ID, InTabBar: true})
	g.End(Context{X: 700, Y: 300, Container: tgt.ID, InTabBar: true})
	checkInvariants(t, m)
	if g.Active() {
		t.Fatalf("session must clear")
	}
}

func TestHeaderDrag_BelowThresholdIsClick(t *testing.T) {
	m, g := newFixture(t)
	w := addWindow(t, m, "w1")
	c := m.Store().ContainerOf(w.ID)
	rect := c.Rect

	g.StartHeaderDrag(c.ID, 500, 300)
	g.Move(Context{X: 503, Y: 302})
	g.End(Context{X: 503, Y: 302})

	if c.Rect != rect {
		t.Fatalf("sub-threshold movement must not move the container: %+v", c.Rect)
	}
}

func TestHeaderDrag_RaisesOnPressAndMovesContainer(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c1 := m.Store().ContainerOf(w1.ID)
	c2 := m.Store().ContainerOf(w2.ID)
	start := c1.Rect

	g.StartHeaderDrag(c1.ID, 500, 300)
	if c1.ZOrder <= c2.ZOrder {
		t.Fatalf("header press must raise the container immediately")
	}
	g.Move(Context{X: 540, Y: 330})
	if c1.Rect.X != start.X+40 || c1.Rect.Y != start.Y+30 {
		t.Fatalf("container did not follow the pointer: %+v", c1.Rect)
	}
	g.End(Context{X: 540, Y: 330})
	checkInvariants(t, m)
}

func TestHeaderDrag_ReleaseBeforeDwellDoesNotMerge(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c1 := m.Store().ContainerOf(w1.ID)
	c2 := m.Store().ContainerOf(w2.ID)
	manualDwell(g)

	g.StartHeaderDrag(c1.ID, 500, 300)
	g.Move(Context{X: 600, Y: 400, Container: c2.ID})
	// Release without the dwell deadline elapsing.
	g.End(Context{X: 600, Y: 400, Container: c2.ID})
	checkInvariants(t, m)

	if m.Store().Container(c1.ID) == nil {
		t.Fatalf("under-dwell release must not merge")
	}
}

func TestHeaderDrag_ReleaseAfterDwellMerges(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c1 := m.Store().ContainerOf(w1.ID)
	c2 := m.Store().ContainerOf(w2.ID)
	fire := manualDwell(g)

	g.StartHeaderDrag(c1.ID, 500, 300)
	g.Move(Context{X: 600, Y: 400, Container: c2.ID})
	(*fire)()
	if st := g.State(); !st.MergeEligible || st.PendingMergeTarget != c2.ID {
		t.Fatalf("dwell deadline must mark candidate eligible, got %+v", st)
	}
	g.End(Context{X: 600, Y: 400, Container: c2.ID})
	checkInvariants(t, m)

	if m.Store().Container(c1.ID) != nil {
		t.Fatalf("past-dwell release must merge the containers")
	}
	if w1.ContainerID != c2.ID {
		t.Fatalf("window not merged into target")
	}
}

func TestHeaderDrag_LeavingCandidateCancelsDwell(t *testing.T) {
	m, g := newFixture(t)
	w1 := addWindow(t, m, "w1")
	w2 := addWindow(t, m, "w2")
	c1 := m.Store().ContainerOf(w1.ID)
	c2 := m.Store().ContainerOf(w2.ID)
	fire := manualDwell(g)

	g.StartHeaderDrag(c1.ID, 500, 300)
	g.Move(Context{X: 600, Y: 400, Container: c2.ID})
	pending := *fire
	g.Move(Context{X: 700, Y: 500}) // left the candidate
	pending()                       // stale deadline fires anyway

	if st := g.State(); st.MergeEligible || st.PendingMergeTarget != "" {
		t.Fatalf("stale dwell deadline must not mark eligibility, got %+v", st)
	}
	g.End(Context{X: 700, Y: 500})
	if m.Store().Container(c1.ID) == nil {
		t.Fatalf("container merged despite leaving the candidate")
	}
}

func TestHeaderDrag_SnapBackIntoViewport(t *testing.T) {
	m, g := newFixture(t)
	w := addWindow(t, m, "w1")
	c := m.Store().ContainerOf(w.ID)

	g.StartHeaderDrag(c.ID, 500, 300)
	g.Move(Context{X: 500, Y: -5000})
	g.End(Context{X: 500, Y: -5000})

	if c.Rect.Y < 0 {
		t.Fatalf("release must snap the container back, got y=%d", c.Rect.Y)
	}
}

func TestEnd_WithoutGestureIsNoOp(t *testing.T) {
	m, g := newFixture(t)
	addWindow(t, m, "w1")
	g.End(Context{X: 10, Y: 10})
	g.Cancel()
	checkInvariants(t, m)
}
