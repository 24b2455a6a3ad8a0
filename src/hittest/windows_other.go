//go:build !darwin && !windows

package hittest

import "fmt"

type noWindowLister struct{}

func newWindowLister() WindowLister { return noWindowLister{} }

func (noWindowLister) OnScreenWindows() ([]WindowInfo, error) {
	return nil, fmt.Errorf("window enumeration not supported on this platform")
}
