package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/nfnt/resize"

	"hoversnap/src/geometry"
)

type screenPrimitive struct{}

// NewPrimitive returns the platform capture primitive.
func NewPrimitive() Primitive { return screenPrimitive{} }

// CaptureRect grabs the display-relative rectangle and guarantees the exact
// requested pixel dimensions. The underlying grab works in virtual-screen
// units, so on scaled displays the raw image is resampled to the explicit
// pixel size rather than trusting the platform's notion of scale.
func (screenPrimitive) CaptureRect(displayID int, rel geometry.Rect, pxW, pxH int) (image.Image, error) {
	if displayID < 0 || displayID >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d not active", displayID)
	}
	bounds := screenshot.GetDisplayBounds(displayID)
	x0 := bounds.Min.X + int(rel.X)
	y0 := bounds.Min.Y + int(rel.Y)
	raw, err := screenshot.CaptureRect(image.Rect(x0, y0, x0+int(rel.W), y0+int(rel.H)))
	if err != nil {
		return nil, err
	}
	if raw.Bounds().Dx() == pxW && raw.Bounds().Dy() == pxH {
		return raw, nil
	}
	return resize.Resize(uint(pxW), uint(pxH), raw, resize.Lanczos3), nil
}
