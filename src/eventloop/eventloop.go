// Package eventloop is the single-threaded coordinator. All session state
// lives on the loop goroutine; tap callbacks and worker completions are
// marshaled onto it through channels, stamped with the session generation so
// stragglers from a torn-down session are dropped.
package eventloop

import (
	"context"
	"image"
	"log"
	"sync/atomic"
	"time"

	"hoversnap/src/capture"
	"hoversnap/src/display"
	"hoversnap/src/geometry"
	"hoversnap/src/hittest"
	"hoversnap/src/interceptor"
	"hoversnap/src/overlay"
	"hoversnap/src/permissions"
	"hoversnap/src/pointer"
	"hoversnap/src/session"
	"hoversnap/src/sink"
	"hoversnap/src/tracker"
	"hoversnap/src/worker"
)

// DefaultCancelKey is the Escape rawcode.
const DefaultCancelKey uint16 = 27

// Options wires the loop's collaborators. All are required except Overlay
// (defaults to overlay.Nop) and CancelKey (defaults to Escape).
type Options struct {
	Displays    display.Provider
	Pointer     pointer.Source
	Resolver    *hittest.Resolver
	Tracker     *tracker.Tracker
	Overlay     overlay.Overlay
	Taps        interceptor.Taps
	Permissions permissions.Checker
	Pool        *worker.Pool
	Sink        *sink.Sink
	CancelKey   uint16
}

// Loop owns the current session and applies its effects.
type Loop struct {
	opts Options

	// animator is set when the overlay interpolates; the loop advances it on
	// every tracking tick so easing stays in step with hit-testing.
	animator overlay.Animator

	startCh       chan session.Mode
	clickCh       chan uint64
	cancelCh      chan uint64
	tapDisabledCh chan uint64
	stopCh        chan struct{}
	results       chan worker.Result

	// snapshot packs the armed session's generation and hasTarget flag so
	// the hook goroutine can decide swallowing without taking a lock:
	// generation<<1 | hasTarget. Zero means nothing armed.
	snapshot atomic.Uint64

	ctx    context.Context
	cur    *session.Session
	nextID uint64
	ticker *time.Ticker
	tickCh <-chan time.Time
}

// New creates the loop. Run must be called before Start has any effect.
func New(opts Options) *Loop {
	if opts.Overlay == nil {
		opts.Overlay = overlay.Nop{}
	}
	if opts.CancelKey == 0 {
		opts.CancelKey = DefaultCancelKey
	}
	animator, _ := opts.Overlay.(overlay.Animator)
	return &Loop{
		opts:          opts,
		animator:      animator,
		startCh:       make(chan session.Mode, 4),
		clickCh:       make(chan uint64, 4),
		cancelCh:      make(chan uint64, 4),
		tapDisabledCh: make(chan uint64, 4),
		stopCh:        make(chan struct{}, 4),
		results:       make(chan worker.Result, 1),
	}
}

// Start requests a new capture session. Safe from any goroutine; dropped if
// the loop is flooded.
func (l *Loop) Start(mode session.Mode) {
	select {
	case l.startCh <- mode:
	default:
		log.Printf("eventloop: start(%v) dropped, queue full", mode)
	}
}

// Stop requests the current session stop. Safe from any goroutine.
func (l *Loop) Stop() {
	select {
	case l.stopCh <- struct{}{}:
	default:
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.ctx = ctx
	defer l.disarm()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case mode := <-l.startCh:
			l.handleStart(mode)
		case id := <-l.clickCh:
			l.dispatch(id, session.EventClick{})
		case id := <-l.cancelCh:
			l.dispatch(id, session.EventCancel{})
		case id := <-l.tapDisabledCh:
			l.dispatch(id, session.EventTapDisabled{
				AccessibilityGranted: l.opts.Permissions.IsAccessibilityGranted(),
			})
		case <-l.stopCh:
			if l.cur != nil {
				l.apply(l.cur.Apply(session.EventStop{}))
			}
		case res := <-l.results:
			l.handleResult(res)
		case <-l.tickCh:
			l.handleTick()
		}
	}
}

func (l *Loop) handleStart(mode session.Mode) {
	if l.cur != nil && l.cur.State() != session.Stopped {
		log.Printf("eventloop: session %d still active, ignoring start(%v)", l.cur.ID, mode)
		return
	}
	l.nextID++
	l.cur = session.New(l.nextID)
	log.Printf("eventloop: session %d starting (mode=%v)", l.cur.ID, mode)
	l.apply(l.cur.Apply(session.EventStart{
		Mode:            mode,
		ScreenGranted:   l.opts.Permissions.IsScreenRecordingGranted(),
		TrackingAllowed: l.opts.Permissions.IsAccessibilityGranted(),
	}))
}

// dispatch applies ev if the generation still matches the live session.
func (l *Loop) dispatch(id uint64, ev session.Event) {
	if l.cur == nil || l.cur.ID != id {
		log.Printf("eventloop: dropping stale %s from session %d", ev.Event(), id)
		return
	}
	l.apply(l.cur.Apply(ev))
}

func (l *Loop) handleTick() {
	if l.cur == nil || l.cur.State() != session.Tracking {
		return
	}
	l.opts.Tracker.Tick()
	if l.animator != nil {
		l.animator.Advance()
	}
	cur := l.opts.Tracker.Current()
	l.cur.Apply(session.EventTarget{Update: cur})
	l.publishSnapshot(l.cur.ID, cur.HasTarget)
}

func (l *Loop) handleResult(res worker.Result) {
	if l.cur == nil || l.cur.ID != res.SessionID {
		log.Printf("eventloop: dropping result from stale session %d", res.SessionID)
		return
	}
	if l.cur.State() == session.Stopped {
		// The session was cancelled or torn down while the capture ran. The
		// image is already paid for, so deliver it anyway.
		if res.Err == nil && res.Image != nil {
			l.deliver(res.Image)
		}
		return
	}
	l.apply(l.cur.Apply(session.EventCaptureResult{Image: res.Image, Err: res.Err}))
}

func (l *Loop) apply(effects []session.Effect) {
	for _, e := range effects {
		switch eff := e.(type) {
		case session.ArmTracking:
			l.arm()
		case session.DisarmTracking:
			l.disarm()
		case session.ReenableTap:
			if err := l.opts.Taps.ReenableTap(); err != nil {
				log.Printf("eventloop: tap revival failed: %v", err)
				l.apply(l.cur.Apply(session.EventStop{}))
			}
		case session.CaptureTarget:
			l.submitCapture(eff.Rect, eff.DisplayID)
		case session.CaptureImmediate:
			l.captureImmediate(eff.Mode)
		case session.Flash:
			l.opts.Overlay.Flash()
		case session.Deliver:
			l.deliver(eff.Image)
		case session.SignalPermissionDenied:
			l.requestPermissions()
		}
	}
}

func (l *Loop) arm() {
	id := l.cur.ID
	tapHandler := func(ev interceptor.MouseEvent) bool {
		switch ev.Kind {
		case interceptor.TapDisabled:
			select {
			case l.tapDisabledCh <- id:
			default:
			}
			return false
		case interceptor.LeftDown:
			gen, has := l.loadSnapshot()
			if gen != id || !has {
				// No target under the pointer: the click belongs to the
				// application beneath.
				return false
			}
			select {
			case l.clickCh <- id:
			default:
			}
			return true
		}
		return false
	}
	if err := l.opts.Taps.InstallTap(tapHandler); err != nil {
		log.Printf("eventloop: tap install failed: %v", err)
		l.apply(l.cur.Apply(session.EventStop{}))
		return
	}
	if err := l.opts.Taps.InstallCancelMonitor(l.opts.CancelKey, func() {
		select {
		case l.cancelCh <- id:
		default:
		}
	}); err != nil {
		log.Printf("eventloop: cancel monitor install failed: %v", err)
		l.opts.Taps.RemoveTap()
		l.apply(l.cur.Apply(session.EventStop{}))
		return
	}
	l.ticker = time.NewTicker(tracker.TickInterval)
	l.tickCh = l.ticker.C
	l.publishSnapshot(id, false)
}

func (l *Loop) disarm() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
		l.tickCh = nil
	}
	l.opts.Taps.RemoveTap()
	l.opts.Taps.RemoveCancelMonitor()
	if l.opts.Tracker != nil {
		l.opts.Tracker.Reset()
	}
	l.snapshot.Store(0)
}

func (l *Loop) submitCapture(rect geometry.Rect, displayID int) {
	job := worker.Job{
		SessionID: l.cur.ID,
		Rect:      rect,
		Displays:  l.opts.Displays.Displays(),
		DisplayID: displayID,
	}
	ok := l.opts.Pool.Submit(l.ctx, job, func(r worker.Result) {
		l.results <- r
	})
	if !ok {
		l.apply(l.cur.Apply(session.EventCaptureResult{Err: capture.ErrCaptureFailed}))
	}
}

// captureImmediate resolves the one-shot rectangle for fullscreen and window
// modes and submits it. Fullscreen takes the display under the pointer
// (primary when the pointer is off every display); window takes the frontmost
// qualifying window under the pointer.
func (l *Loop) captureImmediate(mode session.Mode) {
	set := l.opts.Displays.Displays()
	primary, ok := display.Primary(set)
	if !ok {
		l.apply(l.cur.Apply(session.EventCaptureResult{Err: capture.ErrNoDisplay}))
		return
	}
	tr := geometry.Transformer{PrimaryHeight: primary.Frame.H}
	pos := l.opts.Pointer.Position()
	d, onDisplay := display.At(set, pos)
	if !onDisplay {
		d = primary
	}

	var rect geometry.Rect
	switch mode {
	case session.ModeFullscreen:
		rect = tr.RectToCapture(d.Frame)
	case session.ModeWindow:
		win, found := l.opts.Resolver.WindowAt(tr.PointToCapture(pos))
		if !found {
			l.apply(l.cur.Apply(session.EventCaptureResult{Err: capture.ErrNoElement}))
			return
		}
		rect = win
	default:
		l.apply(l.cur.Apply(session.EventCaptureResult{Err: capture.ErrNoElement}))
		return
	}
	l.submitCapture(rect, d.ID)
}

func (l *Loop) deliver(img image.Image) {
	if err := l.opts.Sink.Deliver(img); err != nil {
		log.Printf("eventloop: delivery failed: %v", err)
	}
}

func (l *Loop) requestPermissions() {
	p := l.opts.Permissions
	if !p.IsScreenRecordingGranted() {
		p.RequestScreenRecording()
	}
	if !p.IsAccessibilityGranted() {
		p.RequestAccessibility()
	}
}

func (l *Loop) publishSnapshot(id uint64, hasTarget bool) {
	v := id << 1
	if hasTarget {
		v |= 1
	}
	l.snapshot.Store(v)
}

func (l *Loop) loadSnapshot() (id uint64, hasTarget bool) {
	v := l.snapshot.Load()
	return v >> 1, v&1 == 1
}
