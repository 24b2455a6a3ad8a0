package display

import (
	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"hoversnap/src/geometry"
)

// Descriptor describes one attached display. Frame is expressed in input
// space (origin at the bottom-left of the primary display, y up), which is
// the native space of pointer and window queries. Exactly one descriptor in
// an active set has Primary set.
type Descriptor struct {
	ID      int
	Frame   geometry.Rect
	Scale   float64
	Primary bool
}

// Provider yields the current display set. The tracker re-reads it every tick
// so display hot-plug is tolerated without restart.
type Provider interface {
	Displays() []Descriptor
}

// Primary returns the primary descriptor from a set, or false when the set is
// empty. The provider guarantees at most one primary.
func Primary(set []Descriptor) (Descriptor, bool) {
	for _, d := range set {
		if d.Primary {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ByID resolves a descriptor by the id recorded during tracking. Resolving by
// id rather than geometric intersection is more robust when a rectangle
// straddles a display boundary.
func ByID(set []Descriptor, id int) (Descriptor, bool) {
	for _, d := range set {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// At returns the descriptor whose frame contains the given input-space point.
func At(set []Descriptor, p geometry.Point) (Descriptor, bool) {
	for _, d := range set {
		if d.Frame.Contains(p) {
			return d, true
		}
	}
	return Descriptor{}, false
}

type screenProvider struct{}

// NewProvider returns the platform-backed display provider.
func NewProvider() Provider { return screenProvider{} }

// Displays enumerates the active displays. The platform reports bounds with
// the origin at the top-left of the primary display and y down; they are
// converted here so the rest of the pipeline sees input space only.
func (screenProvider) Displays() []Descriptor {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil
	}
	primaryH := float64(screenshot.GetDisplayBounds(0).Dy())
	set := make([]Descriptor, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		scale := robotgo.ScaleF(i)
		if scale <= 0 {
			scale = 1
		}
		set = append(set, Descriptor{
			ID: i,
			Frame: geometry.Rect{
				X: float64(b.Min.X),
				Y: primaryH - float64(b.Min.Y) - float64(b.Dy()),
				W: float64(b.Dx()),
				H: float64(b.Dy()),
			},
			Scale:   scale,
			Primary: i == 0,
		})
	}
	return set
}
