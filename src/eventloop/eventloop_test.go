package eventloop

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"hoversnap/src/capture"
	"hoversnap/src/display"
	"hoversnap/src/geometry"
	"hoversnap/src/hittest"
	"hoversnap/src/interceptor"
	"hoversnap/src/overlay"
	"hoversnap/src/session"
	"hoversnap/src/sink"
	"hoversnap/src/tracker"
	"hoversnap/src/worker"
)

type fakeTaps struct {
	tap       func(interceptor.MouseEvent) bool
	cancelKey uint16
	cancelCB  func()

	tapInstalls    int
	tapRemoves     int
	reenables      int
	reenableErr    error
	monitorCount   int
	monitorRemoves int
}

func (f *fakeTaps) InstallTap(h func(interceptor.MouseEvent) bool) error {
	if f.tap != nil {
		return errors.New("tap already installed")
	}
	f.tap = h
	f.tapInstalls++
	return nil
}

func (f *fakeTaps) ReenableTap() error {
	f.reenables++
	return f.reenableErr
}

func (f *fakeTaps) RemoveTap() {
	if f.tap != nil {
		f.tapRemoves++
	}
	f.tap = nil
}

func (f *fakeTaps) InstallCancelMonitor(key uint16, h func()) error {
	if f.cancelCB != nil {
		return errors.New("cancel monitor already installed")
	}
	f.cancelKey = key
	f.cancelCB = h
	f.monitorCount++
	return nil
}

func (f *fakeTaps) RemoveCancelMonitor() {
	if f.cancelCB != nil {
		f.monitorRemoves++
	}
	f.cancelCB = nil
}

type fakeChecker struct {
	access, screen       bool
	accessReq, screenReq int
}

func (f *fakeChecker) IsAccessibilityGranted() bool   { return f.access }
func (f *fakeChecker) IsScreenRecordingGranted() bool { return f.screen }
func (f *fakeChecker) RequestAccessibility() bool     { f.accessReq++; return f.access }
func (f *fakeChecker) RequestScreenRecording()        { f.screenReq++ }

type fakeDisplays struct{ set []display.Descriptor }

func (f fakeDisplays) Displays() []display.Descriptor { return f.set }

type fakePointer struct{ p geometry.Point }

func (f *fakePointer) Position() geometry.Point { return f.p }

type fakeIntrospector struct {
	rect geometry.Rect
	ok   bool
}

func (f *fakeIntrospector) ElementAt(geometry.Point) (geometry.Rect, bool) { return f.rect, f.ok }

type fakeWindows struct{ wins []hittest.WindowInfo }

func (f fakeWindows) OnScreenWindows() ([]hittest.WindowInfo, error) { return f.wins, nil }

type fakePrimitive struct{}

func (fakePrimitive) CaptureRect(_ int, _ geometry.Rect, pxW, pxH int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, pxW, pxH)), nil
}

// Written to from the loop goroutine in the Run test, read from the test
// goroutine, hence the atomic counter.
type recClipboard struct{ writes atomic.Int32 }

func (r *recClipboard) WriteImage([]byte) error { r.writes.Add(1); return nil }

type recPreviewer struct{ shown []image.Image }

func (r *recPreviewer) Show(img image.Image) { r.shown = append(r.shown, img) }

type fixture struct {
	loop    *Loop
	taps    *fakeTaps
	checker *fakeChecker
	ptr     *fakePointer
	intro   *fakeIntrospector
	clip    *recClipboard
	preview *recPreviewer
	pool    *worker.Pool
}

// fakeAnimator counts tick-driven advances through the Overlay it embeds.
type fakeAnimator struct {
	overlay.Nop
	advances int
}

func (f *fakeAnimator) Advance() { f.advances++ }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, fakePrimitive{}, nil)
}

func newFixtureWith(t *testing.T, prim capture.Primitive, ov overlay.Overlay) *fixture {
	t.Helper()
	set := []display.Descriptor{
		{ID: 0, Frame: geometry.Rect{X: 0, Y: 0, W: 1920, H: 1080}, Scale: 1, Primary: true},
	}
	taps := &fakeTaps{}
	checker := &fakeChecker{access: true, screen: true}
	ptr := &fakePointer{p: geometry.Point{X: 500, Y: 500}}
	intro := &fakeIntrospector{rect: geometry.Rect{X: 100, Y: 100, W: 50, H: 50}, ok: true}
	clip := &recClipboard{}
	preview := &recPreviewer{}

	displays := fakeDisplays{set: set}
	resolver := &hittest.Resolver{
		Introspector: intro,
		Windows: fakeWindows{wins: []hittest.WindowInfo{
			{PID: 99, Frame: geometry.Rect{X: 200, Y: 200, W: 600, H: 400}},
		}},
		OwnPID: 1,
	}
	engine := &capture.Engine{Permissions: checker, Primitive: prim}
	pool := worker.New(engine)
	t.Cleanup(pool.Close)

	l := New(Options{
		Displays:    displays,
		Pointer:     ptr,
		Resolver:    resolver,
		Tracker:     tracker.New(displays, ptr, resolver, overlay.Nop{}),
		Overlay:     ov,
		Taps:        taps,
		Permissions: checker,
		Pool:        pool,
		Sink:        &sink.Sink{Clipboard: clip, Previewer: preview},
	})
	l.ctx = context.Background()
	return &fixture{loop: l, taps: taps, checker: checker, ptr: ptr,
		intro: intro, clip: clip, preview: preview, pool: pool}
}

// pumpResult waits for the worker completion and feeds it to the loop the way
// Run's select would.
func (f *fixture) pumpResult(t *testing.T) {
	t.Helper()
	select {
	case res := <-f.loop.results:
		f.loop.handleResult(res)
	case <-time.After(2 * time.Second):
		t.Fatal("no capture result")
	}
}

func TestElementSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	l := f.loop

	l.handleStart(session.ModeElement)
	if f.taps.tapInstalls != 1 || f.taps.monitorCount != 1 {
		t.Fatalf("installs = %d/%d, want 1/1", f.taps.tapInstalls, f.taps.monitorCount)
	}
	if l.tickCh == nil {
		t.Fatal("ticker not armed")
	}

	// First tick resolves a target and publishes it for the tap handler.
	l.handleTick()
	if _, has := l.loadSnapshot(); !has {
		t.Fatal("snapshot should report a target")
	}

	if !f.taps.tap(interceptor.MouseEvent{Kind: interceptor.LeftDown, Pos: geometry.Point{X: 500, Y: 500}}) {
		t.Fatal("click over a target should be swallowed")
	}
	select {
	case id := <-l.clickCh:
		l.dispatch(id, session.EventClick{})
	default:
		t.Fatal("click not posted to the loop")
	}

	// Disarm happens at click time, before the capture completes.
	if f.taps.tapRemoves != 1 || f.taps.monitorRemoves != 1 {
		t.Fatalf("removes = %d/%d, want 1/1", f.taps.tapRemoves, f.taps.monitorRemoves)
	}
	if l.tickCh != nil {
		t.Error("ticker should be torn down on disarm")
	}

	f.pumpResult(t)
	if l.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", l.cur.State())
	}
	if f.clip.writes.Load() != 1 || len(f.preview.shown) != 1 {
		t.Errorf("delivery = clipboard %d / preview %d, want 1/1", f.clip.writes.Load(), len(f.preview.shown))
	}
}

func TestClickWithoutTargetPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.intro.ok = false
	f.ptr.p = geometry.Point{X: 1500, Y: 200} // clear of the fake window too
	f.loop.handleStart(session.ModeElement)
	f.loop.handleTick()

	if f.taps.tap(interceptor.MouseEvent{Kind: interceptor.LeftDown}) {
		t.Error("click without a target should pass through")
	}
	select {
	case <-f.loop.clickCh:
		t.Error("no click should be posted")
	default:
	}
}

func TestCancelStopsWithoutCapture(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeElement)
	l.handleTick()

	f.taps.cancelCB()
	select {
	case id := <-l.cancelCh:
		l.dispatch(id, session.EventCancel{})
	default:
		t.Fatal("cancel not posted")
	}
	if l.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", l.cur.State())
	}
	if f.taps.tapRemoves != 1 || f.taps.monitorRemoves != 1 {
		t.Errorf("removes = %d/%d, want 1/1", f.taps.tapRemoves, f.taps.monitorRemoves)
	}
	if f.clip.writes.Load() != 0 {
		t.Error("cancel must not deliver anything")
	}
}

func TestFullscreenImmediateDelivers(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeFullscreen)
	if f.taps.tapInstalls != 0 {
		t.Error("one-shot mode must not install the tap")
	}
	f.pumpResult(t)
	if f.clip.writes.Load() != 1 || len(f.preview.shown) != 1 {
		t.Fatalf("delivery = clipboard %d / preview %d, want 1/1", f.clip.writes.Load(), len(f.preview.shown))
	}
	b := f.preview.shown[0].Bounds()
	if b.Dx() != 1920 || b.Dy() != 1080 {
		t.Errorf("fullscreen capture = %dx%d, want 1920x1080", b.Dx(), b.Dy())
	}
}

func TestWindowImmediateUsesWindowFrame(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	f.ptr.p = geometry.Point{X: 400, Y: 500} // capture-space (400, 580) hits the fake window
	l.handleStart(session.ModeWindow)
	f.pumpResult(t)
	if len(f.preview.shown) != 1 {
		t.Fatal("expected a delivery")
	}
	b := f.preview.shown[0].Bounds()
	if b.Dx() != 600 || b.Dy() != 400 {
		t.Errorf("window capture = %dx%d, want 600x400", b.Dx(), b.Dy())
	}
}

func TestWindowImmediateNoWindowStops(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	f.ptr.p = geometry.Point{X: 10, Y: 1000} // off the fake window
	l.handleStart(session.ModeWindow)
	if l.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", l.cur.State())
	}
	if f.clip.writes.Load() != 0 {
		t.Error("no delivery expected")
	}
}

func TestPermissionDeniedRequestsConsent(t *testing.T) {
	f := newFixture(t)
	f.checker.screen = false
	f.loop.handleStart(session.ModeElement)
	if f.checker.screenReq != 1 {
		t.Errorf("screen recording requests = %d, want 1", f.checker.screenReq)
	}
	if f.loop.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", f.loop.cur.State())
	}
	if f.taps.tapInstalls != 0 {
		t.Error("denied session must not arm the tap")
	}
}

func TestTapDisabledReenabledOnce(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeElement)

	f.taps.tap(interceptor.MouseEvent{Kind: interceptor.TapDisabled})
	select {
	case id := <-l.tapDisabledCh:
		l.dispatch(id, session.EventTapDisabled{AccessibilityGranted: true})
	default:
		t.Fatal("tap-disable not posted")
	}
	if f.taps.reenables != 1 {
		t.Errorf("reenables = %d, want 1", f.taps.reenables)
	}
	if l.cur.State() != session.Tracking {
		t.Errorf("state = %v, want Tracking after revival", l.cur.State())
	}

	// Second disable is terminal.
	l.dispatch(l.cur.ID, session.EventTapDisabled{AccessibilityGranted: true})
	if l.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", l.cur.State())
	}
	if f.taps.reenables != 1 {
		t.Errorf("reenables = %d, want still 1", f.taps.reenables)
	}
}

func TestStaleResultDropped(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeFullscreen)
	l.handleResult(worker.Result{SessionID: 999, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))})
	if f.clip.writes.Load() != 0 {
		t.Error("stale result must not deliver")
	}
	f.pumpResult(t) // the real one still lands
	if f.clip.writes.Load() != 1 {
		t.Error("live result should deliver")
	}
}

func TestInFlightResultDeliveredAfterStop(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeElement)
	l.handleTick()
	select {
	case <-l.clickCh:
	default:
	}
	if !f.taps.tap(interceptor.MouseEvent{Kind: interceptor.LeftDown}) {
		t.Fatal("expected swallow")
	}
	id := <-l.clickCh
	l.dispatch(id, session.EventClick{})

	// Stop lands while the capture is in flight.
	l.apply(l.cur.Apply(session.EventStop{}))
	if l.cur.State() != session.Stopped {
		t.Fatal("expected Stopped")
	}
	f.pumpResult(t)
	if f.clip.writes.Load() != 1 {
		t.Error("in-flight capture should still deliver after stop")
	}
}

func TestSecondStartWhileActiveIgnored(t *testing.T) {
	f := newFixture(t)
	l := f.loop
	l.handleStart(session.ModeElement)
	first := l.cur.ID
	l.handleStart(session.ModeElement)
	if l.cur.ID != first {
		t.Error("second start while active must not replace the session")
	}
	if f.taps.tapInstalls != 1 {
		t.Errorf("installs = %d, want 1", f.taps.tapInstalls)
	}
}

func TestTickAdvancesOverlayAnimation(t *testing.T) {
	anim := &fakeAnimator{}
	f := newFixtureWith(t, fakePrimitive{}, anim)
	l := f.loop

	l.handleTick() // no session: nothing to animate
	if anim.advances != 0 {
		t.Fatalf("advances = %d before any session", anim.advances)
	}

	l.handleStart(session.ModeElement)
	for i := 0; i < 3; i++ {
		l.handleTick()
	}
	if anim.advances != 3 {
		t.Errorf("advances = %d, want 3", anim.advances)
	}
}

// gatedPrim pins a grab in flight until released.
type gatedPrim struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedPrim) CaptureRect(_ int, _ geometry.Rect, pxW, pxH int) (image.Image, error) {
	g.started <- struct{}{}
	<-g.release
	return image.NewRGBA(image.Rect(0, 0, pxW, pxH)), nil
}

func TestNewSessionCapturesWhileStaleGrabInFlight(t *testing.T) {
	prim := &gatedPrim{started: make(chan struct{}, 2), release: make(chan struct{})}
	f := newFixtureWith(t, prim, nil)
	l := f.loop

	l.handleStart(session.ModeFullscreen)
	select {
	case <-prim.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first grab never started")
	}
	l.apply(l.cur.Apply(session.EventStop{}))

	// The stopped session's grab is still blocked inside the platform call;
	// a fresh session must still get its capture submitted.
	l.handleStart(session.ModeFullscreen)
	if l.cur.State() != session.Capturing {
		t.Fatalf("state = %v, want Capturing", l.cur.State())
	}

	close(prim.release)
	f.pumpResult(t) // stale session's result, dropped
	f.pumpResult(t) // live session's result
	if f.clip.writes.Load() != 1 {
		t.Errorf("writes = %d, want 1 (stale dropped, live delivered)", f.clip.writes.Load())
	}
	if l.cur.State() != session.Stopped {
		t.Errorf("state = %v, want Stopped", l.cur.State())
	}
}

func TestRunStopAndContextCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	f.loop.Start(session.ModeFullscreen)
	deadline := time.After(2 * time.Second)
	for f.clip.writes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no delivery")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit")
	}
}
