// Package interceptor owns the process-wide input hook. It multiplexes the
// low-level event streams into the capture tap, the cancel-key monitor, and
// hotkey chord listeners. The hook handle is an explicit dependency, created
// once in main and injected wherever interception is needed; nothing resolves
// it through a global.
//
// Keyboard events flow through the shared gohook stream, which is
// observation-only. Clicks go through a per-platform tap instead, because the
// click tap must be able to withhold the event from the foreground
// application; see the tap_* files for what each platform can enforce.
package interceptor

import (
	"fmt"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"

	"hoversnap/src/geometry"
)

// MouseEventKind discriminates tap callback events.
type MouseEventKind int

const (
	// LeftDown is a left-button press at Pos.
	LeftDown MouseEventKind = iota
	// TapDisabled means the platform disabled the hook (timeout or security
	// revocation). Pos is meaningless.
	TapDisabled
)

// MouseEvent is what the tap handler receives. Pos is in capture space, the
// native space of the low-level hook.
type MouseEvent struct {
	Kind MouseEventKind
	Pos  geometry.Point
}

// Taps is the interception surface the session layer arms and disarms.
// At most one tap and one cancel monitor exist at any time; installing a
// second is an error. Removal is synchronous and safe from any goroutine.
type Taps interface {
	// InstallTap registers the click tap. The handler runs on the tap's own
	// event goroutine and must not touch session state directly; it returns
	// whether the event should be swallowed before reaching the foreground
	// application.
	InstallTap(handler func(MouseEvent) (swallow bool)) error
	// ReenableTap makes one attempt to revive a platform-disabled tap.
	ReenableTap() error
	RemoveTap()

	// InstallCancelMonitor watches for a single key (by rawcode) and invokes
	// handler when it is pressed.
	InstallCancelMonitor(keyCode uint16, handler func()) error
	RemoveCancelMonitor()
}

// platformTap is the per-OS click interception backend. Its handler's return
// value is the swallow decision; whether the platform can enforce it is up to
// the implementation.
type platformTap interface {
	install(handler func(MouseEvent) bool) error
	reenable() error
	remove()
}

type chordListener struct {
	id      int
	keys    [][]uint16 // each entry: acceptable rawcodes for one key
	pressed []bool
	cb      func()
}

// Hook is the process-wide implementation of Taps plus chord registration for
// global hotkeys. One Hook exists per process.
type Hook struct {
	mu      sync.Mutex
	started bool
	ptap    platformTap
	tap     func(MouseEvent) bool
	// mouseFallback routes gohook mouse events to the tap on platforms whose
	// platformTap is observation-only; suppressing taps leave it nil.
	mouseFallback func(MouseEvent) bool
	cancelKey     uint16
	cancelCB      func()
	chords        []*chordListener
	nextChord     int
}

// NewHook creates the hook without touching the OS; the low-level hooks are
// installed on first use.
func NewHook() *Hook {
	h := &Hook{}
	h.ptap = newPlatformTap(h)
	return h
}

// ensureStarted must be called with mu held.
func (h *Hook) ensureStarted() {
	if h.started {
		return
	}
	h.started = true
	go h.pump()
}

func (h *Hook) pump() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("interceptor: hook goroutine panic: %v", r)
		}
	}()
	ch := gohook.Start()
	if ch == nil {
		log.Printf("interceptor: low-level hook unavailable")
		return
	}
	for ev := range ch {
		h.dispatch(ev)
	}
	log.Printf("interceptor: hook event channel closed")
}

func (h *Hook) dispatch(ev gohook.Event) {
	switch ev.Kind {
	case gohook.MouseDown:
		if ev.Button != 1 {
			return
		}
		h.mu.Lock()
		obs := h.mouseFallback
		h.mu.Unlock()
		if obs != nil {
			obs(MouseEvent{Kind: LeftDown, Pos: geometry.Point{X: float64(ev.X), Y: float64(ev.Y)}})
		}
	case gohook.HookDisabled:
		h.mu.Lock()
		obs := h.mouseFallback
		h.mu.Unlock()
		if obs != nil {
			obs(MouseEvent{Kind: TapDisabled})
		}
	case gohook.KeyDown:
		h.keyDown(ev.Rawcode)
	case gohook.KeyUp:
		h.keyUp(ev.Rawcode)
	}
}

func (h *Hook) keyDown(rawcode uint16) {
	var fire []func()
	h.mu.Lock()
	if h.cancelCB != nil && rawcode == h.cancelKey {
		fire = append(fire, h.cancelCB)
	}
	for _, c := range h.chords {
		for i, codes := range c.keys {
			for _, code := range codes {
				if code == rawcode {
					c.pressed[i] = true
				}
			}
		}
		all := true
		for _, p := range c.pressed {
			if !p {
				all = false
				break
			}
		}
		if all && len(c.pressed) > 0 {
			for i := range c.pressed {
				c.pressed[i] = false
			}
			fire = append(fire, c.cb)
		}
	}
	h.mu.Unlock()
	for _, f := range fire {
		f()
	}
}

func (h *Hook) keyUp(rawcode uint16) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.chords {
		for i, codes := range c.keys {
			for _, code := range codes {
				if code == rawcode {
					c.pressed[i] = false
				}
			}
		}
	}
}

// tapEvent runs on the platform tap's event thread. Its return value is the
// swallow decision the platform layer enforces.
func (h *Hook) tapEvent(ev MouseEvent) bool {
	h.mu.Lock()
	tap := h.tap
	h.mu.Unlock()
	if tap == nil {
		return false
	}
	return tap(ev)
}

// InstallTap registers the click tap. Only one may exist.
func (h *Hook) InstallTap(handler func(MouseEvent) bool) error {
	h.mu.Lock()
	if h.tap != nil {
		h.mu.Unlock()
		return fmt.Errorf("tap already installed")
	}
	h.tap = handler
	h.mu.Unlock()

	if err := h.ptap.install(h.tapEvent); err != nil {
		h.mu.Lock()
		h.tap = nil
		h.mu.Unlock()
		return fmt.Errorf("install tap: %w", err)
	}
	return nil
}

// ReenableTap re-arms a platform-disabled tap.
func (h *Hook) ReenableTap() error {
	h.mu.Lock()
	installed := h.tap != nil
	h.mu.Unlock()
	if !installed {
		return fmt.Errorf("no tap installed")
	}
	if err := h.ptap.reenable(); err != nil {
		return err
	}
	log.Printf("interceptor: tap re-enabled after platform disable")
	return nil
}

// RemoveTap tears the tap down synchronously. Safe from any goroutine; after
// it returns, no further tap callbacks fire.
func (h *Hook) RemoveTap() {
	h.mu.Lock()
	had := h.tap != nil
	h.tap = nil
	h.mu.Unlock()
	if had {
		h.ptap.remove()
	}
}

// InstallCancelMonitor watches for keyCode. Only one may exist.
func (h *Hook) InstallCancelMonitor(keyCode uint16, handler func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelCB != nil {
		return fmt.Errorf("cancel monitor already installed")
	}
	h.cancelKey = keyCode
	h.cancelCB = handler
	h.ensureStarted()
	return nil
}

// RemoveCancelMonitor tears the monitor down synchronously.
func (h *Hook) RemoveCancelMonitor() {
	h.mu.Lock()
	h.cancelCB = nil
	h.mu.Unlock()
}

// RegisterChord adds a hotkey chord. Each entry of keys lists the acceptable
// rawcodes for one participating key (left/right modifier variants). The
// returned function removes the registration.
func (h *Hook) RegisterChord(keys [][]uint16, cb func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextChord++
	c := &chordListener{
		id:      h.nextChord,
		keys:    keys,
		pressed: make([]bool, len(keys)),
		cb:      cb,
	}
	h.chords = append(h.chords, c)
	h.ensureStarted()
	id := c.id
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, existing := range h.chords {
			if existing.id == id {
				h.chords = append(h.chords[:i], h.chords[i+1:]...)
				return
			}
		}
	}
}
