package pointer

import (
	"github.com/go-vgo/robotgo"

	"hoversnap/src/geometry"
)

// Source reads the global pointer position in input space.
type Source interface {
	Position() geometry.Point
}

type robotgoSource struct {
	primaryHeight func() float64
}

// NewSource returns a pointer source backed by the system mouse query.
// primaryHeight supplies the current primary display height so the native
// top-left-origin reading can be converted to input space; it is called on
// every read to stay correct across display reconfiguration.
func NewSource(primaryHeight func() float64) Source {
	return robotgoSource{primaryHeight: primaryHeight}
}

func (s robotgoSource) Position() geometry.Point {
	x, y := robotgo.Location()
	t := geometry.Transformer{PrimaryHeight: s.primaryHeight()}
	return t.PointToInput(geometry.Point{X: float64(x), Y: float64(y)})
}
