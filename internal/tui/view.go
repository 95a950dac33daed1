package tui

import (
	"strings"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/floatile/internal/geometry"
	"github.com/1broseidon/floatile/internal/gesture"
	"github.com/1broseidon/floatile/internal/store"
)

// Cell styles. Rows render as runs of equal style.
const (
	styleNone = iota
	styleBorder
	styleBorderFront
	styleBorderMerge
	styleTab
	styleTabActive
	styleTabMark
	styleContent
	styleDock
)

var palette = []lipgloss.Style{
	styleNone:        lipgloss.NewStyle(),
	styleBorder:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	styleBorderFront: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	styleBorderMerge: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	styleTab:         lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
	styleTabActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	styleTabMark:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Reverse(true),
	styleContent:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	styleDock:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(lipgloss.Color("236")),
}

type cell struct {
	r     rune
	style int
}

// hitZone classifies what part of a container a point landed on.
type hitZone int

const (
	zoneNone hitZone = iota
	zoneHeader
	zoneTab
	zoneBorder
	zoneContent
)

type hitResult struct {
	container store.ContainerID
	zone      hitZone
	tab       store.WindowID
	tabRect   geometry.Rect
	edges     geometry.Edge
}

// tabSlot is the on-screen extent of one tab label.
type tabSlot struct {
	window store.WindowID
	label  string
	rect   geometry.Rect
}

// dockSlot is the on-screen extent of one dock entry.
type dockSlot struct {
	container store.ContainerID
	label     string
	x         int
	width     int
}

// tabSlots computes the tab label extents in a container's top border.
// Detached tabs keep their slot in the sequence but render dimmed.
func (m model) tabSlots(c *store.Container) []tabSlot {
	slots := make([]tabSlot, 0, len(c.WindowIDs))
	x := c.Rect.X + 2
	for _, wid := range c.WindowIDs {
		w := m.mgr.Window(wid)
		if w == nil {
			continue
		}
		label := " " + w.Title + " "
		if w.Detached {
			label = " " + w.Title + "⇱ "
		}
		slots = append(slots, tabSlot{
			window: wid,
			label:  label,
			rect:   geometry.Rect{X: x, Y: c.Rect.Y, Width: len([]rune(label)), Height: 1},
		})
		x += len([]rune(label)) + 1
	}
	return slots
}

func (m model) dockSlots() []dockSlot {
	slots := make([]dockSlot, 0, 4)
	x := 1
	for _, item := range m.mgr.DockItems() {
		text := "▣ " + item.Label
		slots = append(slots, dockSlot{
			container: item.ContainerID,
			label:     text,
			x:         x,
			width:     len([]rune(text)),
		})
		x += len([]rune(text)) + 3
	}
	return slots
}

// hitTest finds the top-most container at a point, classifying the zone.
// exclude skips the dragged container during header drags.
func (m model) hitTest(x, y int, exclude store.ContainerID) hitResult {
	containers := m.mgr.Store().Containers()
	for i := len(containers) - 1; i >= 0; i-- {
		c := containers[i]
		if c.ID == exclude || c.Minimized || c.Hidden {
			continue
		}
		if !c.Rect.Contains(x, y) {
			continue
		}

		r := c.Rect
		res := hitResult{container: c.ID}

		switch {
		case y == r.Y:
			// Top border: corners resize, tab labels drag tabs, the
			// rest drags the container.
			switch x {
			case r.X:
				res.zone = zoneBorder
				res.edges = geometry.EdgeTop | geometry.EdgeLeft
			case r.X + r.Width - 1:
				res.zone = zoneBorder
				res.edges = geometry.EdgeTop | geometry.EdgeRight
			default:
				res.zone = zoneHeader
				for _, slot := range m.tabSlots(c) {
					if slot.rect.Contains(x, y) {
						res.zone = zoneTab
						res.tab = slot.window
						res.tabRect = slot.rect
						break
					}
				}
			}
		case y == r.Y+r.Height-1:
			res.zone = zoneBorder
			switch x {
			case r.X:
				res.edges = geometry.EdgeBottom | geometry.EdgeLeft
			case r.X + r.Width - 1:
				res.edges = geometry.EdgeBottom | geometry.EdgeRight
			default:
				res.edges = geometry.EdgeBottom
			}
		case x == r.X:
			res.zone = zoneBorder
			res.edges = geometry.EdgeLeft
		case x == r.X+r.Width-1:
			res.zone = zoneBorder
			res.edges = geometry.EdgeRight
		default:
			res.zone = zoneContent
		}
		return res
	}
	return hitResult{}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	desktopHeight := m.height - 1
	grid := make([][]cell, desktopHeight)
	for row := range grid {
		grid[row] = make([]cell, m.width)
		for col := range grid[row] {
			grid[row][col] = cell{r: ' ', style: styleNone}
		}
	}

	session := m.coord.State()
	containers := m.mgr.Store().Containers()
	front := m.frontContainer()

	for _, c := range containers {
		if c.Minimized || c.Hidden {
			continue
		}
		borderStyle := styleBorder
		if front != nil && c.ID == front.ID {
			borderStyle = styleBorderFront
		}
		if session.Phase == gesture.PhaseHeaderDragging &&
			session.MergeEligible && session.PendingMergeTarget == c.ID {
			borderStyle = styleBorderMerge
		}
		m.drawContainer(grid, c, borderStyle, session)
	}

	rows := make([]string, 0, m.height)
	for _, row := range grid {
		rows = append(rows, renderRow(row))
	}
	rows = append(rows, m.renderDock())

	out := strings.Join(rows, "\n")
	if m.prompting {
		out = overlayPrompt(out, m.titleInput.View(), m.width)
	}
	return out
}

func (m model) drawContainer(grid [][]cell, c *store.Container, borderStyle int, session gesture.Session) {
	r := c.Rect
	right := r.X + r.Width - 1
	bottom := r.Y + r.Height - 1

	// Top border with inline tab bar
	put(grid, r.X, r.Y, '╭', borderStyle)
	for x := r.X + 1; x < right; x++ {
		put(grid, x, r.Y, '─', borderStyle)
	}
	put(grid, right, r.Y, '╮', borderStyle)

	for _, slot := range m.tabSlots(c) {
		w := m.mgr.Window(slot.window)
		style := styleTab
		switch {
		case session.Phase == gesture.PhaseTabDragging && session.IndicatorTab == slot.window:
			style = styleTabMark
		case w != nil && w.Detached:
			style = styleTab
		case c.ActiveWindowID == slot.window:
			style = styleTabActive
		}
		for i, ch := range []rune(slot.label) {
			x := slot.rect.X + i
			if x >= right {
				break
			}
			put(grid, x, r.Y, ch, style)
		}
	}

	// Sides and bottom
	for y := r.Y + 1; y < bottom; y++ {
		put(grid, r.X, y, '│', borderStyle)
		put(grid, right, y, '│', borderStyle)
	}
	put(grid, r.X, bottom, '╰', borderStyle)
	for x := r.X + 1; x < right; x++ {
		put(grid, x, bottom, '─', borderStyle)
	}
	put(grid, right, bottom, '╯', borderStyle)

	// Content: the active tab's text, clipped to the interior
	m.drawContent(grid, c)
}

func (m model) drawContent(grid [][]cell, c *store.Container) {
	r := c.Rect
	w := m.mgr.Window(c.ActiveWindowID)

	// Clear the interior so stacked containers occlude correctly.
	for y := r.Y + 1; y < r.Y+r.Height-1; y++ {
		for x := r.X + 1; x < r.X+r.Width-1; x++ {
			put(grid, x, y, ' ', styleNone)
		}
	}
	if w == nil {
		return
	}

	lines := strings.Split(w.Content, "\n")
	for i, line := range lines {
		y := r.Y + 1 + i
		if y >= r.Y+r.Height-1 {
			break
		}
		x := r.X + 1
		for _, ch := range line {
			if x >= r.X+r.Width-1 {
				break
			}
			put(grid, x, y, ch, styleContent)
			x++
		}
	}
}

func (m model) renderDock() string {
	row := make([]cell, m.width)
	for i := range row {
		row[i] = cell{r: ' ', style: styleDock}
	}
	for _, slot := range m.dockSlots() {
		for i, ch := range []rune(slot.label) {
			x := slot.x + i
			if x >= m.width {
				break
			}
			row[x] = cell{r: ch, style: styleDock}
		}
	}
	return renderRow(row)
}

func put(grid [][]cell, x, y int, r rune, style int) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = cell{r: r, style: style}
}

// renderRow converts a row of cells into a styled string, batching
// consecutive cells with the same style.
func renderRow(row []cell) string {
	var sb strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].style == row[start].style {
			continue
		}
		runes := make([]rune, 0, i-start)
		for _, c := range row[start:i] {
			runes = append(runes, c.r)
		}
		if row[start].style == styleNone {
			sb.WriteString(string(runes))
		} else {
			sb.WriteString(palette[row[start].style].Render(string(runes)))
		}
		start = i
	}
	return sb.String()
}

// overlayPrompt draws the new-window prompt over the first canvas row.
func overlayPrompt(canvas, input string, width int) string {
	prompt := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("25")).
		Render(" new window: " + input + " ")

	lines := strings.Split(canvas, "\n")
	if len(lines) == 0 {
		return prompt
	}
	lines[0] = prompt
	return strings.Join(lines, "\n")
}

var _ tea.Model = model{}
