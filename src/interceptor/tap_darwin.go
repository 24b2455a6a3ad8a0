//go:build darwin

package interceptor

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>

extern int hoversnapTapEvent(double x, double y);
extern void hoversnapTapDisabled(void);

static CFMachPortRef gTapPort = NULL;
static CFRunLoopSourceRef gTapSource = NULL;
static CFRunLoopRef gTapLoop = NULL;

static CGEventRef tapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
	if (type == kCGEventTapDisabledByTimeout || type == kCGEventTapDisabledByUserInput) {
		hoversnapTapDisabled();
		return event;
	}
	if (type == kCGEventLeftMouseDown) {
		CGPoint p = CGEventGetLocation(event);
		if (hoversnapTapEvent(p.x, p.y)) {
			// Returning NULL is what withholds the click from the
			// foreground application.
			return NULL;
		}
	}
	return event;
}

static int createTap(void) {
	if (gTapPort != NULL) {
		return 1;
	}
	gTapPort = CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap,
		kCGEventTapOptionDefault,
		CGEventMaskBit(kCGEventLeftMouseDown),
		tapCallback, NULL);
	if (gTapPort == NULL) {
		return 0;
	}
	gTapSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, gTapPort, 0);
	return 1;
}

// runTapLoop blocks servicing the tap until stopTapLoop is called.
static void runTapLoop(void) {
	gTapLoop = CFRunLoopGetCurrent();
	CFRunLoopAddSource(gTapLoop, gTapSource, kCFRunLoopCommonModes);
	CGEventTapEnable(gTapPort, true);
	CFRunLoopRun();
}

static void stopTapLoop(void) {
	if (gTapPort != NULL) {
		CGEventTapEnable(gTapPort, false);
	}
	if (gTapLoop != NULL) {
		CFRunLoopStop(gTapLoop);
	}
}

static void destroyTap(void) {
	if (gTapSource != NULL) {
		CFRelease(gTapSource);
		gTapSource = NULL;
	}
	if (gTapPort != NULL) {
		CFRelease(gTapPort);
		gTapPort = NULL;
	}
	gTapLoop = NULL;
}

static int reenableTap(void) {
	if (gTapPort == NULL) {
		return 0;
	}
	CGEventTapEnable(gTapPort, true);
	return CGEventTapIsEnabled(gTapPort) ? 1 : 0;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"

	"hoversnap/src/geometry"
)

// eventTap is the CGEventTap-backed click tap. The tap callback can return
// NULL, so the swallow decision is enforced: a swallowed click never reaches
// the application underneath.
type eventTap struct {
	mu   sync.Mutex
	done chan struct{}
}

// The tap callback arrives from C with no refcon we can trust across the
// cgo pointer rules, so the active handler lives in a package global.
var (
	tapHandlerMu sync.Mutex
	tapHandler   func(MouseEvent) bool
)

func newPlatformTap(*Hook) platformTap { return &eventTap{} }

//export hoversnapTapEvent
func hoversnapTapEvent(x, y C.double) C.int {
	tapHandlerMu.Lock()
	handler := tapHandler
	tapHandlerMu.Unlock()
	if handler == nil {
		return 0
	}
	if handler(MouseEvent{Kind: LeftDown, Pos: geometry.Point{X: float64(x), Y: float64(y)}}) {
		return 1
	}
	return 0
}

//export hoversnapTapDisabled
func hoversnapTapDisabled() {
	tapHandlerMu.Lock()
	handler := tapHandler
	tapHandlerMu.Unlock()
	if handler != nil {
		handler(MouseEvent{Kind: TapDisabled})
	}
}

func (t *eventTap) install(handler func(MouseEvent) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return fmt.Errorf("event tap already running")
	}
	tapHandlerMu.Lock()
	tapHandler = handler
	tapHandlerMu.Unlock()

	if C.createTap() == 0 {
		tapHandlerMu.Lock()
		tapHandler = nil
		tapHandlerMu.Unlock()
		return fmt.Errorf("event tap creation refused (accessibility not granted?)")
	}
	done := make(chan struct{})
	t.done = done
	go func() {
		// The tap's run loop must stay on one OS thread for its lifetime.
		runtime.LockOSThread()
		C.runTapLoop()
		C.destroyTap()
		close(done)
	}()
	return nil
}

func (t *eventTap) reenable() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return fmt.Errorf("no event tap running")
	}
	if C.reenableTap() == 0 {
		return fmt.Errorf("event tap would not re-enable")
	}
	return nil
}

func (t *eventTap) remove() {
	t.mu.Lock()
	done := t.done
	t.done = nil
	t.mu.Unlock()
	if done == nil {
		return
	}
	tapHandlerMu.Lock()
	tapHandler = nil
	tapHandlerMu.Unlock()
	C.stopTapLoop()
	<-done
}
