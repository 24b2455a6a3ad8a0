package tracker

import (
	"testing"

	"hoversnap/src/display"
	"hoversnap/src/geometry"
	"hoversnap/src/hittest"
)

type fakeDisplays struct{ set []display.Descriptor }

func (f fakeDisplays) Displays() []display.Descriptor { return f.set }

type fakePointer struct{ p geometry.Point }

func (f *fakePointer) Position() geometry.Point { return f.p }

type fakeIntrospector struct {
	rect geometry.Rect
	ok   bool
}

func (f *fakeIntrospector) ElementAt(geometry.Point) (geometry.Rect, bool) { return f.rect, f.ok }

type recordingOverlay struct {
	animates []geometry.Rect
	visible  []bool
	flashes  int
}

func (r *recordingOverlay) AnimateTo(rect geometry.Rect, _ int) { r.animates = append(r.animates, rect) }
func (r *recordingOverlay) SetTargetVisible(v bool)             { r.visible = append(r.visible, v) }
func (r *recordingOverlay) Flash()                              { r.flashes++ }

func singleDisplay() []display.Descriptor {
	return []display.Descriptor{
		{ID: 0, Frame: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Scale: 1, Primary: true},
	}
}

func newTestTracker(set []display.Descriptor, intro *fakeIntrospector) (*Tracker, *fakePointer, *recordingOverlay) {
	ptr := &fakePointer{p: geometry.Point{X: 500, Y: 500}}
	ov := &recordingOverlay{}
	res := &hittest.Resolver{Introspector: intro, OwnPID: 1}
	return New(fakeDisplays{set: set}, ptr, res, ov), ptr, ov
}

func TestTickEmitsPaddedTarget(t *testing.T) {
	intro := &fakeIntrospector{rect: geometry.Rect{X: 100, Y: 100, W: 50, H: 50}, ok: true}
	tr, _, ov := newTestTracker(singleDisplay(), intro)

	tr.Tick()
	cur := tr.Current()
	if !cur.HasTarget {
		t.Fatal("expected a target")
	}
	want := geometry.Rect{X: 96, Y: 96, W: 58, H: 58}
	if cur.Rect != want {
		t.Errorf("padded rect = %+v, want %+v", cur.Rect, want)
	}
	if len(ov.animates) != 1 || ov.animates[0] != want {
		t.Errorf("overlay animates = %+v", ov.animates)
	}
}

func TestTickHysteresis(t *testing.T) {
	intro := &fakeIntrospector{rect: geometry.Rect{X: 100, Y: 100, W: 50, H: 50}, ok: true}
	tr, _, ov := newTestTracker(singleDisplay(), intro)

	tr.Tick()
	// Jitter within 2 units on every edge: no new emission.
	intro.rect = geometry.Rect{X: 101, Y: 99, W: 50, H: 51}
	tr.Tick()
	if len(ov.animates) != 1 {
		t.Errorf("jitter produced %d emissions, want 1", len(ov.animates))
	}

	// A real move re-emits.
	intro.rect = geometry.Rect{X: 200, Y: 100, W: 50, H: 50}
	tr.Tick()
	if len(ov.animates) != 2 {
		t.Errorf("move produced %d emissions, want 2", len(ov.animates))
	}
}

func TestTickPointerOffAllDisplays(t *testing.T) {
	intro := &fakeIntrospector{rect: geometry.Rect{X: 0, Y: 0, W: 50, H: 50}, ok: true}
	tr, ptr, ov := newTestTracker(singleDisplay(), intro)

	tr.Tick()
	if !tr.Current().HasTarget {
		t.Fatal("expected a target first")
	}
	ptr.p = geometry.Point{X: -500, Y: -500}
	tr.Tick()
	if tr.Current().HasTarget {
		t.Error("target should clear when pointer leaves every display")
	}
	if len(ov.visible) == 0 || ov.visible[len(ov.visible)-1] != false {
		t.Error("overlay should be hidden")
	}
	// Polling continues; the pointer coming back restores the target.
	ptr.p = geometry.Point{X: 500, Y: 500}
	tr.Tick()
	if !tr.Current().HasTarget {
		t.Error("target should return")
	}
}

func TestTickOversizedRectClampedToDisplay(t *testing.T) {
	// Scroll-container extent: 200000 units tall on a 1080-tall display.
	intro := &fakeIntrospector{rect: geometry.Rect{X: 100, Y: -90000, W: 300, H: 200000}, ok: true}
	tr, _, _ := newTestTracker(singleDisplay(), intro)

	tr.Tick()
	cur := tr.Current()
	if !cur.HasTarget {
		t.Fatal("expected a clamped target")
	}
	// Contained within the display frame before padding, so at most the
	// frame plus padding afterwards.
	if cur.Rect.H > 1080+2*Padding {
		t.Errorf("clamped height %g exceeds display height plus padding", cur.Rect.H)
	}
}

func TestTickOversizedRectMissingDisplayIsNoTarget(t *testing.T) {
	intro := &fakeIntrospector{rect: geometry.Rect{X: 50000, Y: 0, W: 20000, H: 10}, ok: true}
	tr, _, _ := newTestTracker(singleDisplay(), intro)
	tr.Tick()
	if tr.Current().HasTarget {
		t.Error("oversized rect outside the display should be no target")
	}
}

func TestTickSecondaryDisplay(t *testing.T) {
	set := []display.Descriptor{
		{ID: 0, Frame: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Scale: 1, Primary: true},
		{ID: 1, Frame: geometry.Rect{X: 1920, Y: 0, W: 1920, H: 1080}, Scale: 1},
	}
	intro := &fakeIntrospector{rect: geometry.Rect{X: 2000, Y: 300, W: 80, H: 40}, ok: true}
	tr, ptr, _ := newTestTracker(set, intro)
	ptr.p = geometry.Point{X: 2040, Y: 320}

	tr.Tick()
	cur := tr.Current()
	if !cur.HasTarget || cur.DisplayID != 1 {
		t.Errorf("expected target on display 1, got %+v", cur)
	}
}

func TestReset(t *testing.T) {
	intro := &fakeIntrospector{rect: geometry.Rect{X: 0, Y: 0, W: 50, H: 50}, ok: true}
	tr, _, ov := newTestTracker(singleDisplay(), intro)
	tr.Tick()
	tr.Reset()
	if tr.Current().HasTarget {
		t.Error("Reset should clear the target")
	}
	if len(ov.visible) == 0 || ov.visible[len(ov.visible)-1] != false {
		t.Error("Reset should hide the overlay")
	}
}
