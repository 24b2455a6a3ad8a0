//go:build darwin

package hittest

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

// Looks up the accessibility element at a top-left-origin global point and
// reports its bounding rectangle in the same space. Returns 1 on success.
static int elementFrameAt(double x, double y, double *ox, double *oy, double *ow, double *oh) {
    AXUIElementRef systemWide = AXUIElementCreateSystemWide();
    AXUIElementRef element = NULL;
    AXError err = AXUIElementCopyElementAtPosition(systemWide, (float)x, (float)y, &element);
    CFRelease(systemWide);
    if (err != kAXErrorSuccess || element == NULL) {
        return 0;
    }

    AXValueRef posVal = NULL;
    AXValueRef sizeVal = NULL;
    CGPoint pos;
    CGSize size;
    int ok = 0;
    if (AXUIElementCopyAttributeValue(element, kAXPositionAttribute, (CFTypeRef *)&posVal) == kAXErrorSuccess &&
        AXUIElementCopyAttributeValue(element, kAXSizeAttribute, (CFTypeRef *)&sizeVal) == kAXErrorSuccess &&
        AXValueGetValue(posVal, kAXValueCGPointType, &pos) &&
        AXValueGetValue(sizeVal, kAXValueCGSizeType, &size)) {
        *ox = pos.x;
        *oy = pos.y;
        *ow = size.width;
        *oh = size.height;
        ok = 1;
    }
    if (posVal != NULL) CFRelease(posVal);
    if (sizeVal != NULL) CFRelease(sizeVal);
    CFRelease(element);
    return ok;
}
*/
import "C"

import "hoversnap/src/geometry"

type axIntrospector struct{}

func newIntrospector() Introspector { return axIntrospector{} }

func (axIntrospector) ElementAt(p geometry.Point) (geometry.Rect, bool) {
	var x, y, w, h C.double
	if C.elementFrameAt(C.double(p.X), C.double(p.Y), &x, &y, &w, &h) == 0 {
		return geometry.Rect{}, false
	}
	r := geometry.Rect{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
	if r.Empty() {
		return geometry.Rect{}, false
	}
	return r, true
}
