package overlay

import (
	"github.com/charmbracelet/harmonica"

	"hoversnap/src/geometry"
)

// RectSpring interpolates a rectangle toward a target with a critically-ish
// damped spring per edge. It holds no timer of its own: the host calls Tick
// once per update step, so interpolation advances deterministically with the
// render loop instead of self-rescheduling.
type RectSpring struct {
	spring harmonica.Spring
	pos    [4]float64 // x, y, w, h
	vel    [4]float64
	target [4]float64
	set    bool
}

// NewRectSpring builds a spring tuned for the given update rate.
func NewRectSpring(fps int) *RectSpring {
	return &RectSpring{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.85),
	}
}

// SetTarget retargets the spring. Setting the current target again is a
// no-op, which is what makes the overlay's animate-to call idempotent.
func (s *RectSpring) SetTarget(r geometry.Rect) {
	t := [4]float64{r.X, r.Y, r.W, r.H}
	if s.set && t == s.target {
		return
	}
	if !s.set {
		// First target: snap instead of animating in from the zero rect.
		s.pos = t
		s.vel = [4]float64{}
	}
	s.target = t
	s.set = true
}

// Snap jumps straight to the target, discarding velocity.
func (s *RectSpring) Snap() {
	s.pos = s.target
	s.vel = [4]float64{}
}

// Tick advances one fixed step.
func (s *RectSpring) Tick() {
	if !s.set {
		return
	}
	for i := range s.pos {
		s.pos[i], s.vel[i] = s.spring.Update(s.pos[i], s.vel[i], s.target[i])
	}
}

// Current returns the interpolated rectangle.
func (s *RectSpring) Current() geometry.Rect {
	return geometry.Rect{X: s.pos[0], Y: s.pos[1], W: s.pos[2], H: s.pos[3]}
}

// Settled reports whether the spring has effectively reached its target.
func (s *RectSpring) Settled() bool {
	if !s.set {
		return true
	}
	for i := range s.pos {
		if diff := s.pos[i] - s.target[i]; diff > 0.5 || diff < -0.5 {
			return false
		}
		if s.vel[i] > 0.5 || s.vel[i] < -0.5 {
			return false
		}
	}
	return true
}
