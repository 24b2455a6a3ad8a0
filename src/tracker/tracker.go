// Package tracker polls the pointer and resolves the capture target beneath
// it. It runs on the event loop's fixed cadence, never on its own goroutine,
// so rectangle delivery stays synchronized with the overlay consumer.
package tracker

import (
	"time"

	"hoversnap/src/display"
	"hoversnap/src/geometry"
	"hoversnap/src/hittest"
	"hoversnap/src/overlay"
	"hoversnap/src/pointer"
)

const (
	// TicksPerSecond is the polling rate.
	TicksPerSecond = 60
	// TickInterval is the polling cadence.
	TickInterval = time.Second / TicksPerSecond
	// MaxTargetDim caps a hit-test result before padding. Introspection is
	// known to return scroll-container extents far beyond any display;
	// results past this are intersected with the active display's frame.
	// The threshold is fixed regardless of actual display size.
	MaxTargetDim = 10000
	// Padding inflates the final rectangle on all sides.
	Padding = 4
	// HysteresisEps suppresses updates whose edges all moved by no more
	// than this many units.
	HysteresisEps = 2
)

// Update is one emission of the target stream.
type Update struct {
	HasTarget bool
	Rect      geometry.Rect // capture space, padded
	DisplayID int
}

// Tracker performs one hit-test pipeline pass per Tick.
type Tracker struct {
	Displays display.Provider
	Pointer  pointer.Source
	Resolver *hittest.Resolver
	Overlay  overlay.Overlay

	current Update // last emitted state; the hysteresis baseline
}

// New wires a tracker. The overlay may be overlay.Nop.
func New(displays display.Provider, ptr pointer.Source, resolver *hittest.Resolver, ov overlay.Overlay) *Tracker {
	return &Tracker{Displays: displays, Pointer: ptr, Resolver: resolver, Overlay: ov}
}

// Current returns the last emitted target state.
func (t *Tracker) Current() Update { return t.current }

// Reset clears tracking state when a session disarms, hiding the overlay if
// a target was showing.
func (t *Tracker) Reset() {
	if t.current.HasTarget {
		t.Overlay.SetTargetVisible(false)
	}
	t.current = Update{}
}

// Tick runs one polling step. The display set is re-read every tick so
// display hot-plug is tolerated mid-session.
func (t *Tracker) Tick() {
	set := t.Displays.Displays()
	pos := t.Pointer.Position()

	d, ok := display.At(set, pos)
	if !ok {
		t.reportNone()
		return
	}
	primary, ok := display.Primary(set)
	if !ok {
		t.reportNone()
		return
	}

	tr := geometry.Transformer{PrimaryHeight: primary.Frame.H}
	rect, ok := t.Resolver.TargetAt(tr.PointToCapture(pos))
	if !ok {
		t.reportNone()
		return
	}

	frame := tr.RectToCapture(d.Frame)
	rect, ok = geometry.ClampOversized(rect, frame, MaxTargetDim)
	if !ok {
		t.reportNone()
		return
	}
	rect = rect.Inflate(Padding)

	if t.current.HasTarget && t.current.DisplayID == d.ID &&
		!geometry.DiffersBy(rect, t.current.Rect, HysteresisEps) {
		return
	}

	t.current = Update{HasTarget: true, Rect: rect, DisplayID: d.ID}
	t.Overlay.AnimateTo(rect, d.ID)
	t.Overlay.SetTargetVisible(true)
}

func (t *Tracker) reportNone() {
	if !t.current.HasTarget {
		return
	}
	t.current = Update{}
	t.Overlay.SetTargetVisible(false)
}
