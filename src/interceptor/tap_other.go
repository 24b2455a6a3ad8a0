//go:build !darwin && !windows

package interceptor

import "log"

// goHookTap observes clicks through the shared gohook stream. The stream has
// no suppression API, so here the swallow decision is advisory only: the
// capture still fires, but the click also reaches the application underneath.
// Platforms with a real suppressing tap (darwin, windows) replace this.
type goHookTap struct{ h *Hook }

func newPlatformTap(h *Hook) platformTap { return &goHookTap{h: h} }

func (t *goHookTap) install(handler func(MouseEvent) bool) error {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	t.h.mouseFallback = handler
	t.h.ensureStarted()
	log.Printf("interceptor: click suppression unavailable on this platform, observing only")
	return nil
}

func (t *goHookTap) reenable() error { return nil }

func (t *goHookTap) remove() {
	t.h.mu.Lock()
	t.h.mouseFallback = nil
	t.h.mu.Unlock()
}
