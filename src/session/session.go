// Package session is the capture session state machine. It is pure: inputs
// arrive as events, and every transition returns the list of effects the
// caller must apply. The event loop owns the resources those effects touch
// (tracker, tap, worker), which keeps re-entrancy out of the machine and
// makes every path unit-testable.
package session

import (
	"image"
	"log"

	"hoversnap/src/geometry"
	"hoversnap/src/tracker"
)

// Mode selects the capture workflow.
type Mode int

const (
	ModeElement Mode = iota
	ModeFullscreen
	ModeWindow
)

func (m Mode) String() string {
	switch m {
	case ModeElement:
		return "element"
	case ModeFullscreen:
		return "fullscreen"
	case ModeWindow:
		return "window"
	}
	return "unknown"
}

// State of a session. Stopped is terminal: a session never leaves it, and
// starting again means creating a new session.
type State int

const (
	Idle State = iota
	Arming
	Tracking
	Capturing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Arming:
		return "arming"
	case Tracking:
		return "tracking"
	case Capturing:
		return "capturing"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Event is an input to the machine.
type Event interface{ Event() string }

// EventStart begins the session. The caller performs the permission check
// and reports the result, keeping the machine free of platform queries.
type EventStart struct {
	Mode            Mode
	ScreenGranted   bool
	TrackingAllowed bool // accessibility; only element mode needs it
}

// EventTarget carries the tracker's latest emission.
type EventTarget struct{ Update tracker.Update }

// EventClick is a qualifying left-click-down, already marshaled onto the
// loop goroutine.
type EventClick struct{}

// EventCancel is the cancel key.
type EventCancel struct{}

// EventStop is an explicit stop request.
type EventStop struct{}

// EventTapDisabled reports the platform disabling the tap; the caller
// supplies the current accessibility grant so the machine can decide between
// re-enabling and shutting down.
type EventTapDisabled struct{ AccessibilityGranted bool }

// EventCaptureResult completes the single capture attempt.
type EventCaptureResult struct {
	Image image.Image
	Err   error
}

func (EventStart) Event() string         { return "Start" }
func (EventTarget) Event() string        { return "Target" }
func (EventClick) Event() string         { return "Click" }
func (EventCancel) Event() string        { return "Cancel" }
func (EventStop) Event() string          { return "Stop" }
func (EventTapDisabled) Event() string   { return "TapDisabled" }
func (EventCaptureResult) Event() string { return "CaptureResult" }

// Effect is an instruction for the caller.
type Effect interface{ Effect() string }

// ArmTracking installs the tracker ticker, the click tap, and the cancel
// monitor for this session.
type ArmTracking struct{}

// DisarmTracking tears all three down.
type DisarmTracking struct{}

// ReenableTap asks for the single permitted revival of a disabled tap.
type ReenableTap struct{}

// CaptureTarget submits the tracked rectangle for capture.
type CaptureTarget struct {
	Rect      geometry.Rect
	DisplayID int
}

// CaptureImmediate asks the caller to perform the one-shot hit test for
// fullscreen/window mode and submit the result for capture.
type CaptureImmediate struct{ Mode Mode }

// Flash signals capture feedback to the overlay.
type Flash struct{}

// Deliver hands the finished image to the result sink.
type Deliver struct{ Image image.Image }

// SignalPermissionDenied delegates to the platform consent surface.
type SignalPermissionDenied struct{}

func (ArmTracking) Effect() string            { return "ArmTracking" }
func (DisarmTracking) Effect() string         { return "DisarmTracking" }
func (ReenableTap) Effect() string            { return "ReenableTap" }
func (CaptureTarget) Effect() string          { return "CaptureTarget" }
func (CaptureImmediate) Effect() string       { return "CaptureImmediate" }
func (Flash) Effect() string                  { return "Flash" }
func (Deliver) Effect() string                { return "Deliver" }
func (SignalPermissionDenied) Effect() string { return "SignalPermissionDenied" }

// Session is one capture attempt's lifetime. ID is the generation stamp the
// event loop uses to drop callbacks from sessions that have already been
// torn down.
type Session struct {
	ID   uint64
	mode Mode

	state     State
	target    tracker.Update
	reenabled bool
}

// New creates an Idle session.
func New(id uint64) *Session {
	return &Session{ID: id}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Mode returns the mode the session was started with.
func (s *Session) Mode() Mode { return s.mode }

// Target returns the last tracked target.
func (s *Session) Target() tracker.Update { return s.target }

// Apply advances the machine and returns the effects to run. Unknown or
// out-of-state events produce no effects; in particular, every event is a
// no-op on a Stopped session, which is what makes stop() idempotent and
// late clicks harmless.
func (s *Session) Apply(ev Event) []Effect {
	if s.state == Stopped {
		return nil
	}
	switch e := ev.(type) {
	case EventStart:
		return s.applyStart(e)
	case EventTarget:
		if s.state == Tracking {
			s.target = e.Update
		}
		return nil
	case EventClick:
		return s.applyClick()
	case EventCancel, EventStop:
		log.Printf("session %d: stopped from %v", s.ID, s.state)
		return s.stop()
	case EventTapDisabled:
		return s.applyTapDisabled(e)
	case EventCaptureResult:
		return s.applyResult(e)
	}
	return nil
}

func (s *Session) applyStart(e EventStart) []Effect {
	if s.state != Idle {
		return nil
	}
	s.mode = e.Mode
	s.state = Arming
	if !e.ScreenGranted || (e.Mode == ModeElement && !e.TrackingAllowed) {
		log.Printf("session %d: permission denied (mode=%v)", s.ID, e.Mode)
		s.state = Stopped
		return []Effect{SignalPermissionDenied{}}
	}
	if e.Mode == ModeElement {
		s.state = Tracking
		return []Effect{ArmTracking{}}
	}
	// Fullscreen and window modes never pass through Tracking: one
	// immediate hit test feeds straight into the capture phase.
	s.state = Capturing
	return []Effect{CaptureImmediate{Mode: e.Mode}}
}

func (s *Session) applyClick() []Effect {
	if s.state != Tracking || !s.target.HasTarget {
		return nil
	}
	s.state = Capturing
	return []Effect{
		DisarmTracking{},
		Flash{},
		CaptureTarget{Rect: s.target.Rect, DisplayID: s.target.DisplayID},
	}
}

func (s *Session) applyTapDisabled(e EventTapDisabled) []Effect {
	if s.state != Tracking {
		return nil
	}
	if e.AccessibilityGranted && !s.reenabled {
		s.reenabled = true
		return []Effect{ReenableTap{}}
	}
	log.Printf("session %d: tap disabled, accessibility revoked; stopping", s.ID)
	return s.stop()
}

func (s *Session) applyResult(e EventCaptureResult) []Effect {
	if s.state != Capturing {
		return nil
	}
	s.state = Stopped
	if e.Err != nil {
		// Routine outcome, not a fault: log and stop silently.
		log.Printf("session %d: capture failed: %v", s.ID, e.Err)
		return nil
	}
	return []Effect{Deliver{Image: e.Image}}
}

func (s *Session) stop() []Effect {
	prev := s.state
	s.state = Stopped
	if prev == Tracking {
		return []Effect{DisarmTracking{}}
	}
	return nil
}
