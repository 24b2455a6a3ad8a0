package hittest

import (
	"fmt"
	"testing"

	"hoversnap/src/geometry"
)

type fakeIntrospector struct {
	rect geometry.Rect
	ok   bool
}

func (f fakeIntrospector) ElementAt(geometry.Point) (geometry.Rect, bool) {
	return f.rect, f.ok
}

type fakeLister struct {
	wins []WindowInfo
	err  error
}

func (f fakeLister) OnScreenWindows() ([]WindowInfo, error) { return f.wins, f.err }

func TestTargetAtPrefersIntrospection(t *testing.T) {
	elem := geometry.Rect{X: 10, Y: 10, W: 80, H: 20}
	r := &Resolver{
		Introspector: fakeIntrospector{rect: elem, ok: true},
		Windows: fakeLister{wins: []WindowInfo{
			{PID: 99, Frame: geometry.Rect{X: 0, Y: 0, W: 800, H: 600}},
		}},
		OwnPID: 1,
	}
	got, ok := r.TargetAt(geometry.Point{X: 20, Y: 15})
	if !ok || got != elem {
		t.Errorf("TargetAt = %+v ok=%v, want element rect", got, ok)
	}
}

func TestWindowFallbackOrdering(t *testing.T) {
	front := geometry.Rect{X: 100, Y: 100, W: 400, H: 300}
	back := geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	r := &Resolver{
		Windows: fakeLister{wins: []WindowInfo{
			{PID: 10, Frame: front},
			{PID: 20, Frame: back},
		}},
		OwnPID: 1,
	}
	got, ok := r.TargetAt(geometry.Point{X: 150, Y: 150})
	if !ok || got != front {
		t.Errorf("expected frontmost window, got %+v ok=%v", got, ok)
	}

	// A point outside the front window falls through to the one behind it.
	got, ok = r.TargetAt(geometry.Point{X: 900, Y: 900})
	if !ok || got != back {
		t.Errorf("expected back window, got %+v ok=%v", got, ok)
	}
}

func TestWindowFallbackExclusions(t *testing.T) {
	tiny := geometry.Rect{X: 0, Y: 0, W: 40, H: 40}
	own := geometry.Rect{X: 0, Y: 0, W: 500, H: 500}
	other := geometry.Rect{X: 0, Y: 0, W: 600, H: 600}
	r := &Resolver{
		Windows: fakeLister{wins: []WindowInfo{
			{PID: 10, Frame: tiny},
			{PID: 42, Frame: own},
			{PID: 10, Frame: other},
		}},
		OwnPID: 42,
	}
	got, ok := r.TargetAt(geometry.Point{X: 10, Y: 10})
	if !ok || got != other {
		t.Errorf("exclusions not applied: got %+v ok=%v", got, ok)
	}
}

func TestNoTarget(t *testing.T) {
	r := &Resolver{Windows: fakeLister{}, OwnPID: 1}
	if _, ok := r.TargetAt(geometry.Point{X: 5, Y: 5}); ok {
		t.Error("empty window list should yield no target")
	}

	r = &Resolver{Windows: fakeLister{err: fmt.Errorf("boom")}, OwnPID: 1}
	if _, ok := r.TargetAt(geometry.Point{X: 5, Y: 5}); ok {
		t.Error("lister error should yield no target")
	}
}
