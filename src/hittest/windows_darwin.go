//go:build darwin

package hittest

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

typedef struct {
    double x, y, w, h;
    int pid;
} winrec;

// Fills out with up to max on-screen layer-0 windows, front to back, in the
// global top-left-origin coordinate space. Returns the count.
static int copyWindowList(winrec *out, int max) {
    CFArrayRef windows = CGWindowListCopyWindowInfo(
        kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
        kCGNullWindowID);
    if (windows == NULL) {
        return -1;
    }
    CFIndex count = CFArrayGetCount(windows);
    int n = 0;
    for (CFIndex i = 0; i < count && n < max; i++) {
        CFDictionaryRef w = (CFDictionaryRef)CFArrayGetValueAtIndex(windows, i);

        CFNumberRef layerRef = (CFNumberRef)CFDictionaryGetValue(w, kCGWindowLayer);
        int layer = 0;
        if (layerRef != NULL) {
            CFNumberGetValue(layerRef, kCFNumberIntType, &layer);
        }
        if (layer != 0) {
            continue;
        }

        CFDictionaryRef boundsRef = (CFDictionaryRef)CFDictionaryGetValue(w, kCGWindowBounds);
        CGRect bounds;
        if (boundsRef == NULL || !CGRectMakeWithDictionaryRepresentation(boundsRef, &bounds)) {
            continue;
        }

        CFNumberRef pidRef = (CFNumberRef)CFDictionaryGetValue(w, kCGWindowOwnerPID);
        int pid = 0;
        if (pidRef != NULL) {
            CFNumberGetValue(pidRef, kCFNumberIntType, &pid);
        }

        out[n].x = bounds.origin.x;
        out[n].y = bounds.origin.y;
        out[n].w = bounds.size.width;
        out[n].h = bounds.size.height;
        out[n].pid = pid;
        n++;
    }
    CFRelease(windows);
    return n;
}
*/
import "C"

import (
	"fmt"

	"hoversnap/src/geometry"
)

const maxWindows = 256

type cgWindowLister struct{}

func newWindowLister() WindowLister { return cgWindowLister{} }

// OnScreenWindows lists normal-layer windows front to back. The window server
// already reports bounds in the top-left-origin global space, which matches
// capture space directly.
func (cgWindowLister) OnScreenWindows() ([]WindowInfo, error) {
	var recs [maxWindows]C.winrec
	n := int(C.copyWindowList(&recs[0], maxWindows))
	if n < 0 {
		return nil, fmt.Errorf("window list unavailable")
	}
	wins := make([]WindowInfo, 0, n)
	for i := 0; i < n; i++ {
		wins = append(wins, WindowInfo{
			PID: int(recs[i].pid),
			Frame: geometry.Rect{
				X: float64(recs[i].x),
				Y: float64(recs[i].y),
				W: float64(recs[i].w),
				H: float64(recs[i].h),
			},
		})
	}
	return wins, nil
}
