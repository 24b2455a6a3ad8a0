// Package capture turns a validated target rectangle into a raster image via
// the platform capture primitive, with safety clamping so an invalid request
// never reaches the compositor.
package capture

import (
	"fmt"
	"image"
	"log"
	"math"

	"hoversnap/src/display"
	"hoversnap/src/geometry"
	"hoversnap/src/permissions"
)

// MaxRequestDim bounds the width and height a capture request may have before
// any clamping. Anything outside (0, MaxRequestDim) is rejected outright.
const MaxRequestDim = 50000

// Primitive rasterizes a display-relative rectangle into an image of exactly
// pxW x pxH pixels. Scaling is always explicit; the primitive must never
// infer it from the display.
type Primitive interface {
	CaptureRect(displayID int, rel geometry.Rect, pxW, pxH int) (image.Image, error)
}

// Engine performs one capture attempt. Every step is a hard gate: a failure
// aborts with no retry.
type Engine struct {
	Permissions permissions.Checker
	Primitive   Primitive
}

// Capture grabs the given capture-space rectangle from the display recorded
// during tracking. The display set must be the one the rectangle was tracked
// against.
func (e *Engine) Capture(rect geometry.Rect, set []display.Descriptor, displayID int) (image.Image, error) {
	// Checked eagerly so the platform's own reactive consent surface never
	// fires mid-capture.
	if !e.Permissions.IsScreenRecordingGranted() {
		e.Permissions.RequestScreenRecording()
		return nil, ErrPermissionDenied
	}

	if rect.W <= 0 || rect.H <= 0 || rect.W >= MaxRequestDim || rect.H >= MaxRequestDim {
		return nil, fmt.Errorf("%w: %gx%g", ErrNoElement, rect.W, rect.H)
	}

	d, ok := display.ByID(set, displayID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoDisplay, displayID)
	}
	primary, ok := display.Primary(set)
	if !ok {
		return nil, fmt.Errorf("%w: no primary display", ErrNoDisplay)
	}

	tr := geometry.Transformer{PrimaryHeight: primary.Frame.H}
	frame := tr.RectToCapture(d.Frame)
	rel := geometry.Rect{X: rect.X - frame.X, Y: rect.Y - frame.Y, W: rect.W, H: rect.H}

	rel = geometry.ClampToBounds(rel, d.Frame.W, d.Frame.H)
	if rel.W < 1 || rel.H < 1 {
		return nil, fmt.Errorf("%w: empty after clamping", ErrNoElement)
	}

	pxW := int(math.Ceil(rel.W * d.Scale))
	pxH := int(math.Ceil(rel.H * d.Scale))

	log.Printf("capture: display=%d rel=%+v px=%dx%d scale=%g", d.ID, rel, pxW, pxH, d.Scale)
	img, err := e.Primitive.CaptureRect(d.ID, rel, pxW, pxH)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return img, nil
}
