package overlay

import (
	"sync"

	"hoversnap/src/geometry"
)

// Animator is the advance side of an overlay that interpolates between target
// updates. The session loop calls Advance once per tracking tick so the
// highlight eases toward the latest target in step with hit-testing.
type Animator interface {
	Advance()
}

// Frame is one rendered overlay state: where the highlight sits right now and
// whether it should be drawn at all.
type Frame struct {
	Rect      geometry.Rect
	DisplayID int
	Visible   bool
	Flash     bool
}

// FrameSink receives interpolated frames. Implementations draw them; a nil
// sink means the frames are only queryable through Current.
type FrameSink interface {
	Publish(Frame)
}

// Animated is the spring-backed Overlay. Target updates from the tracker
// retarget the spring; Advance steps it and publishes the eased frame.
// Safe for concurrent use: the tracker and the session loop run on the same
// goroutine, but Flash can arrive from capture completion.
type Animated struct {
	mu        sync.Mutex
	spring    *RectSpring
	sink      FrameSink
	displayID int
	visible   bool
	flash     bool
}

// NewAnimated builds an animated overlay ticking at the given rate. sink may
// be nil.
func NewAnimated(fps int, sink FrameSink) *Animated {
	return &Animated{
		spring: NewRectSpring(fps),
		sink:   sink,
	}
}

// AnimateTo retargets the highlight. Re-sending the current target is a no-op
// in the underlying spring, so the animation never restarts on jitter-free
// repeat updates.
func (a *Animated) AnimateTo(rect geometry.Rect, displayID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if displayID != a.displayID {
		// Crossing displays: snap rather than sweep across the gap between
		// display coordinate spaces.
		a.spring.SetTarget(rect)
		a.spring.Snap()
		a.displayID = displayID
		return
	}
	a.spring.SetTarget(rect)
}

// SetTargetVisible shows or hides the highlight without disturbing the spring
// state, so a target that flickers out and back resumes from where it eased to.
func (a *Animated) SetTargetVisible(visible bool) {
	a.mu.Lock()
	a.visible = visible
	sink := a.sink
	frame := a.frameLocked()
	a.mu.Unlock()
	if sink != nil {
		sink.Publish(frame)
	}
}

// Flash marks the next published frame as capture feedback.
func (a *Animated) Flash() {
	a.mu.Lock()
	a.flash = true
	sink := a.sink
	frame := a.frameLocked()
	a.mu.Unlock()
	if sink != nil {
		sink.Publish(frame)
	}
}

// Advance steps the spring one tick and publishes the eased frame.
func (a *Animated) Advance() {
	a.mu.Lock()
	a.spring.Tick()
	sink := a.sink
	frame := a.frameLocked()
	a.flash = false
	a.mu.Unlock()
	if sink != nil {
		sink.Publish(frame)
	}
}

// Current returns the highlight as last advanced.
func (a *Animated) Current() (geometry.Rect, int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spring.Current(), a.displayID, a.visible
}

// frameLocked must be called with mu held.
func (a *Animated) frameLocked() Frame {
	return Frame{
		Rect:      a.spring.Current(),
		DisplayID: a.displayID,
		Visible:   a.visible,
		Flash:     a.flash,
	}
}
