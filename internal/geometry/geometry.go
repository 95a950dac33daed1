package geometry

// Rect represents a container's position and size in viewport coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size represents the dimensions of the hosting viewport.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Edge identifies which edges of a rectangle are active during a resize.
// Corners combine two edges (e.g. EdgeTop|EdgeLeft).
type Edge uint8

const (
	EdgeTop Edge = 1 << iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Has reports whether e includes the given edge.
func (e Edge) Has(edge Edge) bool {
	return e&edge != 0
}

// ClampDrag returns the new top-left for a rectangle dragged by (dx, dy),
// keeping at least minVisible pixels of the rectangle inside the viewport
// on every edge. The horizontal and vertical axes clamp independently.
func ClampDrag(start Rect, dx, dy int, viewport Size, minVisible int) (x, y int) {
	x = clampAxis(start.X+dx, minVisible-start.Width, viewport.Width-minVisible)
	y = clampAxis(start.Y+dy, minVisible-start.Height, viewport.Height-minVisible)
	return x, y
}

// ClampResize returns the rectangle that results from moving the given
// edges by (dx, dy). The size never drops below minWidth/minHeight and a
// moving edge never crosses more than edgeMargin pixels past the nearest
// viewport boundary. Top and left edges move the origin as well as the size.
func ClampResize(start Rect, dx, dy int, edges Edge, minWidth, minHeight int, viewport Size, edgeMargin int) Rect {
	r := start

	if edges.Has(EdgeRight) {
		maxWidth := viewport.Width + edgeMargin - start.X
		r.Width = clampAxis(start.Width+dx, minWidth, maxWidth)
	}
	if edges.Has(EdgeBottom) {
		maxHeight := viewport.Height + edgeMargin - start.Y
		r.Height = clampAxis(start.Height+dy, minHeight, maxHeight)
	}
	if edges.Has(EdgeLeft) {
		right := start.X + start.Width
		x := clampAxis(start.X+dx, -edgeMargin, right-minWidth)
		r.X = x
		r.Width = right - x
	}
	if edges.Has(EdgeTop) {
		bottom := start.Y + start.Height
		y := clampAxis(start.Y+dy, -edgeMargin, bottom-minHeight)
		r.Y = y
		r.Height = bottom - y
	}

	return r
}

// ConstrainToViewport pushes a rectangle back into reach after a gesture
// ends or the viewport shrinks: the top edge is never negative and at
// least minVisible pixels remain reachable on the left, right and bottom.
// Applying it twice yields the same result.
func ConstrainToViewport(rect Rect, viewport Size, minVisible int) Rect {
	r := rect
	r.X = clampAxis(r.X, minVisible-r.Width, viewport.Width-minVisible)
	r.Y = clampAxis(r.Y, 0, viewport.Height-minVisible)
	return r
}

func clampAxis(v, lo, hi int) int {
	if hi < lo {
		// Degenerate bounds (viewport smaller than the minimums); pin to
		// the lower bound so the title edge stays reachable.
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
