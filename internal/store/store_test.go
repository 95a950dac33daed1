package store

import (
	"testing"

	"github.com/1broseidon/floatile/internal/geometry"
)

func mustCreate(t *testing.T, s *Store, id WindowID) *Window {
	t.Helper()
	w, err := s.CreateWindow(id, string(id)+" title", "<content>")
	if err != nil {
		t.Fatalf("CreateWindow(%q): %v", id, err)
	}
	return w
}

func mustValidate(t *testing.T, s *Store) {
	t.Helper()
	if err := s.Validate(); err != nil {
		t.Fatalf("store invariant violated: %v", err)
	}
}

func TestCreateWindow_RejectsDuplicateID(t *testing.T) {
	s := New()
	mustCreate(t, s, "w1")
	if _, err := s.CreateWindow("w1", "again", ""); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestAttachDetach_MaintainsReferences(t *testing.T) {
	s := New()
	w := mustCreate(t, s, "w1")
	c := s.CreateContainer(geometry.Rect{X: 10, Y: 10, Width: 200, Height: 100})

	if err := s.Attach(w.ID, c.ID, -1); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	s.SetActive(c.ID, w.ID)
	mustValidate(t, s)

	if w.ContainerID != c.ID {
		t.Fatalf("expected window to reference %q, got %q", c.ID, w.ContainerID)
	}
	if got := s.ContainerOf(w.ID); got != c {
		t.Fatalf("ContainerOf returned %v", got)
	}

	s.Detach(w.ID)
	mustValidate(t, s)
	if w.ContainerID != "" || len(c.WindowIDs) != 0 || c.ActiveWindowID != "" {
		t.Fatalf("detach left residue: window=%q tabs=%v active=%q", w.ContainerID, c.WindowIDs, c.ActiveWindowID)
	}
}

func TestAttach_RejectsSecondContainer(t *testing.T) {
	s := New()
	w := mustCreate(t, s, "w1")
	c1 := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	c2 := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})

	if err := s.Attach(w.ID, c1.ID, -1); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := s.Attach(w.ID, c2.ID, -1); err == nil {
		t.Fatalf("expected attach to second container to fail")
	}
	mustValidate(t, s)
}

func TestDeleteWindow_RefusesWhileMember(t *testing.T) {
	s := New()
	w := mustCreate(t, s, "w1")
	c := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	if err := s.Attach(w.ID, c.ID, -1); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if err := s.DeleteWindow(w.ID); err == nil {
		t.Fatalf("expected delete of attached window to fail")
	}
	s.Detach(w.ID)
	if err := s.DeleteWindow(w.ID); err != nil {
		t.Fatalf("DeleteWindow after detach: %v", err)
	}
	if s.Window(w.ID) != nil {
		t.Fatalf("window record survived delete")
	}
}

func TestDeleteContainer_SilentlyKeepsNonEmpty(t *testing.T) {
	s := New()
	w := mustCreate(t, s, "w1")
	c := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	if err := s.Attach(w.ID, c.ID, -1); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	s.DeleteContainer(c.ID)
	if s.Container(c.ID) == nil {
		t.Fatalf("non-empty container was deleted")
	}

	s.Detach(w.ID)
	s.DeleteContainer(c.ID)
	if s.Container(c.ID) != nil {
		t.Fatalf("empty container survived delete")
	}
}

func TestReorder_MovesTabWithinContainer(t *testing.T) {
	s := New()
	c := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	for _, id := range []WindowID{"w1", "w2", "w3"} {
		mustCreate(t, s, id)
		if err := s.Attach(id, c.ID, -1); err != nil {
			t.Fatalf("Attach(%q): %v", id, err)
		}
	}
	s.SetActive(c.ID, "w1")

	// Drop w3 before w1.
	s.Reorder("w3", 0)
	mustValidate(t, s)
	if got := c.WindowIDs; got[0] != "w3" || got[1] != "w1" || got[2] != "w2" {
		t.Fatalf("expected [w3 w1 w2], got %v", got)
	}

	// Drop w3 after w2 (back to the end).
	s.Reorder("w3", 2)
	mustValidate(t, s)
	if got := c.WindowIDs; got[0] != "w1" || got[1] != "w2" || got[2] != "w3" {
		t.Fatalf("expected [w1 w2 w3], got %v", got)
	}
}

func TestSetActive_NeverSelectsDetachedWindow(t *testing.T) {
	s := New()
	c := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	w1 := mustCreate(t, s, "w1")
	w2 := mustCreate(t, s, "w2")
	for _, id := range []WindowID{"w1", "w2"} {
		if err := s.Attach(id, c.ID, -1); err != nil {
			t.Fatalf("Attach(%q): %v", id, err)
		}
	}

	w1.Detached = true
	s.SetActive(c.ID, w1.ID)
	if c.ActiveWindowID != w2.ID {
		t.Fatalf("expected active to fall back to w2, got %q", c.ActiveWindowID)
	}
	mustValidate(t, s)

	w2.Detached = true
	s.ReassignActive(c.ID)
	if c.ActiveWindowID != "" {
		t.Fatalf("expected no active window when all members are detached, got %q", c.ActiveWindowID)
	}
	mustValidate(t, s)
}

func TestContainers_SortedByZOrder(t *testing.T) {
	s := New()
	c1 := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	c2 := s.CreateContainer(geometry.Rect{Width: 100, Height: 100})
	c1.ZOrder = 5
	c2.ZOrder = 2

	got := s.Containers()
	if len(got) != 2 || got[0] != c2 || got[1] != c1 {
		t.Fatalf("expected [c2 c1] by z-order, got %v", got)
	}
}
