// Package permissions exposes the platform permission surface the capture
// core depends on. The core only queries and requests; all consent UI belongs
// to the operating system.
package permissions

// Checker reports and requests the two permissions capture needs: input
// interception (accessibility) and screen recording.
type Checker interface {
	IsAccessibilityGranted() bool
	IsScreenRecordingGranted() bool
	// RequestAccessibility triggers the platform consent prompt and reports
	// whether the permission is granted afterwards.
	RequestAccessibility() bool
	// RequestScreenRecording opens the platform's screen-recording consent
	// surface. Grant state must be re-queried afterwards; on most platforms
	// the grant only takes effect for a freshly started process.
	RequestScreenRecording()
}

// Static is a fixed-answer Checker for tests and for platforms without a
// permission model.
type Static struct {
	Accessibility   bool
	ScreenRecording bool
}

func (s Static) IsAccessibilityGranted() bool   { return s.Accessibility }
func (s Static) IsScreenRecordingGranted() bool { return s.ScreenRecording }
func (s Static) RequestAccessibility() bool     { return s.Accessibility }
func (s Static) RequestScreenRecording()        {}
