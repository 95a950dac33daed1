// Package tui hosts the window engine on a terminal canvas. Containers
// render as bordered boxes with a tab bar in the top border; the mouse
// drives the same drag gestures a graphical host would.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/floatile/internal/config"
	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/gesture"
	"github.com/1broseidon/floatile/internal/manager"
	"github.com/1broseidon/floatile/internal/store"
)

// model is the root bubbletea model for the TUI host.
type model struct {
	cfg   *config.Config
	mgr   *manager.Manager
	coord *gesture.Coordinator

	// New-window prompt
	prompting  bool
	titleInput textinput.Model
	nextWindow int

	// Border resize drag; tab and header drags live in the coordinator.
	resize *resizeDrag

	// Terminal dimensions
	width  int
	height int
}

// resizeDrag tracks an in-flight border resize.
type resizeDrag struct {
	container store.ContainerID
	start     geometry.Rect
	startX    int
	startY    int
	edges     geometry.Edge
}

// surfaceClosedMsg reports that a detached window's external surface was
// closed and the window should return home.
type surfaceClosedMsg struct {
	id store.WindowID
}

func newModel(cfg *config.Config) model {
	ti := textinput.New()
	ti.Placeholder = "window title"
	ti.CharLimit = 64
	ti.Width = 32

	mgr := manager.New(store.New(), cfg, geometry.Size{Width: 80, Height: 23}, nil)
	return model{
		cfg:        cfg,
		mgr:        mgr,
		coord:      gesture.NewCoordinator(mgr),
		titleInput: ti,
	}
}

// Run starts the TUI host, blocking until quit.
func Run(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m := newModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())

	// Surface-closure events arrive on a poll goroutine; route them onto
	// the bubbletea loop so all engine mutations stay single-threaded.
	m.mgr.SurfaceNotify = func(id store.WindowID) {
		p.Send(surfaceClosedMsg{id: id})
	}

	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Bottom row is the dock.
		m.mgr.SetViewport(geometry.Size{Width: m.width, Height: m.height - 1})
		return m, nil

	case surfaceClosedMsg:
		m.mgr.SurfaceClosed(msg.id)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}

	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The prompt captures all input while open.
	if m.prompting {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.prompting = false
			m.titleInput.Blur()
			return m, nil
		case "enter":
			m.prompting = false
			m.titleInput.Blur()
			m.createWindow(m.titleInput.Value())
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "n":
		m.prompting = true
		m.titleInput.SetValue("")
		m.titleInput.Focus()
		return m, textinput.Blink

	case "m":
		if c := m.frontContainer(); c != nil {
			m.mgr.MinimizeContainer(c.ID)
		}
		return m, nil

	case "d":
		if c := m.frontContainer(); c != nil && c.ActiveWindowID != "" {
			m.mgr.DetachWindow(c.ActiveWindowID)
		}
		return m, nil

	case "x":
		if c := m.frontContainer(); c != nil && c.ActiveWindowID != "" {
			m.mgr.CloseWindow(c.ActiveWindowID)
		}
		return m, nil

	case "esc":
		m.coord.Cancel()
		return m, nil
	}

	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		return m.mousePress(msg.X, msg.Y)

	case tea.MouseActionMotion:
		if m.resize != nil {
			m.mgr.ResizeContainer(
				m.resize.container, m.resize.start,
				msg.X-m.resize.startX, msg.Y-m.resize.startY,
				m.resize.edges,
			)
			return m, nil
		}
		if m.coord.Active() {
			m.coord.Move(m.gestureContext(msg.X, msg.Y))
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.resize != nil {
			m.mgr.ConstrainContainer(m.resize.container)
			m.resize = nil
			return m, nil
		}
		if m.coord.Active() {
			m.coord.End(m.gestureContext(msg.X, msg.Y))
		}
		return m, nil
	}

	return m, nil
}

func (m model) mousePress(x, y int) (tea.Model, tea.Cmd) {
	// Dock row
	if y == m.height-1 {
		for _, slot := range m.dockSlots() {
			if x >= slot.x && x < slot.x+slot.width {
				m.mgr.RestoreContainer(slot.container)
				break
			}
		}
		return m, nil
	}

	hit := m.hitTest(x, y, "")
	if hit.container == "" {
		return m, nil
	}

	switch hit.zone {
	case zoneTab:
		m.coord.StartTabDrag(hit.tab, x, y)
	case zoneHeader:
		m.coord.StartHeaderDrag(hit.container, x, y)
	case zoneBorder:
		c := m.mgr.Store().Container(hit.container)
		m.mgr.BringContainerToFront(hit.container)
		m.resize = &resizeDrag{
			container: hit.container,
			start:     c.Rect,
			startX:    x,
			startY:    y,
			edges:     hit.edges,
		}
	case zoneContent:
		m.mgr.BringContainerToFront(hit.container)
	}

	return m, nil
}

// gestureContext hit-tests the pointer for the coordinator. During a
// header drag the dragged container tracks the pointer, so it is excluded
// from the search.
func (m model) gestureContext(x, y int) gesture.Context {
	var exclude store.ContainerID
	s := m.coord.State()
	if s.Phase == gesture.PhaseHeaderDragging {
		exclude = s.ContainerID
	}

	hit := m.hitTest(x, y, exclude)
	return gesture.Context{
		X:         x,
		Y:         y,
		Container: hit.container,
		Tab:       hit.tab,
		TabRect:   hit.tabRect,
		InTabBar:  hit.zone == zoneTab || hit.zone == zoneHeader,
	}
}

func (m *model) createWindow(title string) {
	m.nextWindow++
	id := store.WindowID(fmt.Sprintf("w%d", m.nextWindow))
	if title == "" {
		title = fmt.Sprintf("Window %d", m.nextWindow)
	}
	if _, err := m.mgr.CreateWindow(manager.WindowSpec{ID: id, Title: title}); err != nil {
		// Generated ids are unique per session; only exhaustion of the
		// prompt input could fail here.
		m.nextWindow--
		return
	}
	m.mgr.FlushHooks()
}

// frontContainer returns the top-most visible container.
func (m model) frontContainer() *store.Container {
	var front *store.Container
	for _, c := range m.mgr.Store().Containers() {
		if c.Minimized || c.Hidden {
			continue
		}
		front = c
	}
	return front
}
