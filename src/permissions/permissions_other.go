//go:build !darwin

package permissions

// NewChecker returns an always-granted checker. Outside macOS there is no
// accessibility or screen-recording consent model to query.
func NewChecker() Checker {
	return Static{Accessibility: true, ScreenRecording: true}
}
