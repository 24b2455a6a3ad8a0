package geometry

import "math"

// Point is a location in either capture space or input space, depending on
// context. Capture space has its origin at the top-left of the primary display
// with y increasing downward; input space has its origin at the bottom-left of
// the primary display with y increasing upward.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle identified by its min corner and size.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the far edge of the rectangle along y.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies within the rectangle. The min edges are
// inclusive and the max edges exclusive, matching display frame containment.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Intersect returns the overlapping region of r and o. The result may be
// empty; callers must check Empty before using it.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inflate grows the rectangle by pad units on every side. A negative pad
// shrinks it.
func (r Rect) Inflate(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + 2*pad, H: r.H + 2*pad}
}

// DiffersBy reports whether any edge of a and b differs by more than eps.
// Used for hysteresis so micro-jitter from introspection does not produce
// a stream of near-identical updates.
func DiffersBy(a, b Rect, eps float64) bool {
	return math.Abs(a.X-b.X) > eps ||
		math.Abs(a.Y-b.Y) > eps ||
		math.Abs(a.MaxX()-b.MaxX()) > eps ||
		math.Abs(a.MaxY()-b.MaxY()) > eps
}

// Transformer converts between capture space and input space. Both spaces are
// anchored to the primary display, so the only parameter needed is the primary
// display's height. Non-primary displays sit at arbitrary offsets relative to
// the primary; all cross-display arithmetic must route through this type
// rather than local ad hoc math.
type Transformer struct {
	PrimaryHeight float64
}

// PointToCapture converts an input-space point to capture space.
func (t Transformer) PointToCapture(p Point) Point {
	return Point{X: p.X, Y: t.PrimaryHeight - p.Y}
}

// PointToInput converts a capture-space point to input space. The conversion
// is an involution: PointToInput(PointToCapture(p)) == p.
func (t Transformer) PointToInput(p Point) Point {
	return Point{X: p.X, Y: t.PrimaryHeight - p.Y}
}

// RectToCapture converts an input-space rectangle to capture space. The min
// corner flips from bottom-left to top-left.
func (t Transformer) RectToCapture(r Rect) Rect {
	return Rect{X: r.X, Y: t.PrimaryHeight - r.Y - r.H, W: r.W, H: r.H}
}

// RectToInput converts a capture-space rectangle to input space.
func (t Transformer) RectToInput(r Rect) Rect {
	return Rect{X: r.X, Y: t.PrimaryHeight - r.Y - r.H, W: r.W, H: r.H}
}

// ClampOversized guards against introspection returning scroll-container
// extents. If r exceeds maxDim in either axis it is intersected with frame.
// The second return value is false when the result is empty or under one unit
// in either dimension, meaning the caller should treat it as "no target".
func ClampOversized(r Rect, frame Rect, maxDim float64) (Rect, bool) {
	if r.W <= maxDim && r.H <= maxDim {
		return r, true
	}
	clipped := r.Intersect(frame)
	if clipped.W < 1 || clipped.H < 1 {
		return Rect{}, false
	}
	return clipped, true
}

// ClampToBounds clamps a display-relative rectangle into [0,w] x [0,h].
// A negative origin reduces the size by the overflow and zeroes the origin;
// a far edge past the bound reduces the size to fit. The result is idempotent:
// clamping an already-clamped rectangle returns it unchanged.
func ClampToBounds(r Rect, w, h float64) Rect {
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if r.MaxX() > w {
		r.W = w - r.X
	}
	if r.MaxY() > h {
		r.H = h - r.Y
	}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}
