// Package overlay defines the surface the tracker talks to. Rendering and
// easing live in the host application; this package carries the contract plus
// the deterministic interpolation state an implementation can drive from the
// host's update tick.
package overlay

import "hoversnap/src/geometry"

// Overlay consumes the tracker's target stream. AnimateTo is idempotent:
// re-sending the current target rectangle must not restart the animation.
// Flash is a discrete capture-feedback signal.
type Overlay interface {
	AnimateTo(rect geometry.Rect, displayID int)
	SetTargetVisible(visible bool)
	Flash()
}

// Nop discards all overlay signals. Used when no highlight surface is wired,
// and in tests that don't assert on overlay traffic.
type Nop struct{}

func (Nop) AnimateTo(geometry.Rect, int) {}
func (Nop) SetTargetVisible(bool)        {}
func (Nop) Flash()                       {}
