// Package hittest determines which on-screen rectangle lies under a point.
// The primary path asks the OS accessibility tree for the element at the
// point; when that is unavailable the fallback walks the on-screen window
// list front to back.
package hittest

import (
	"os"

	"hoversnap/src/geometry"
)

// MinWindowDim is the smallest window edge the fallback will consider.
// Anything smaller is chrome (tooltips, drag handles) rather than a window
// the user means to capture.
const MinWindowDim = 50

// Introspector queries the accessibility tree for the UI element at a
// capture-space point. ok is false when introspection is unavailable or the
// point hits nothing.
type Introspector interface {
	ElementAt(p geometry.Point) (rect geometry.Rect, ok bool)
}

// WindowInfo is one entry of the on-screen window list, front to back.
// Frame is in capture space.
type WindowInfo struct {
	PID   int
	Frame geometry.Rect
}

// WindowLister enumerates on-screen windows in top-to-bottom z-order.
type WindowLister interface {
	OnScreenWindows() ([]WindowInfo, error)
}

// Resolver runs the two-stage hit test.
type Resolver struct {
	Introspector Introspector // optional; nil skips straight to the fallback
	Windows      WindowLister
	OwnPID       int
}

// NewResolver wires the platform introspector and window lister.
func NewResolver() *Resolver {
	return &Resolver{
		Introspector: newIntrospector(),
		Windows:      newWindowLister(),
		OwnPID:       os.Getpid(),
	}
}

// TargetAt returns the capture-space rectangle under p (capture space).
// Introspection wins when it yields anything; otherwise the first window
// whose frame contains the point is used, excluding sub-50x50 windows and
// the host application's own windows.
func (r *Resolver) TargetAt(p geometry.Point) (geometry.Rect, bool) {
	if r.Introspector != nil {
		if rect, ok := r.Introspector.ElementAt(p); ok {
			return rect, true
		}
	}
	return r.WindowAt(p)
}

// WindowAt returns the frame of the frontmost qualifying window under p.
func (r *Resolver) WindowAt(p geometry.Point) (geometry.Rect, bool) {
	if r.Windows == nil {
		return geometry.Rect{}, false
	}
	wins, err := r.Windows.OnScreenWindows()
	if err != nil {
		return geometry.Rect{}, false
	}
	for _, w := range wins {
		if w.PID == r.OwnPID {
			continue
		}
		if w.Frame.W < MinWindowDim || w.Frame.H < MinWindowDim {
			continue
		}
		if w.Frame.Contains(p) {
			return w.Frame, true
		}
	}
	return geometry.Rect{}, false
}
