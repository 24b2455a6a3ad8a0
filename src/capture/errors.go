package capture

import "errors"

// Failure taxonomy for a capture attempt. PermissionDenied is surfaced through
// the platform's own consent flow; the rest abort the session silently with
// diagnostic logging only, since they routinely arise from ordinary user
// behavior (pointer left the target, window closed mid-capture).
var (
	ErrPermissionDenied = errors.New("screen recording permission denied")
	ErrNoDisplay        = errors.New("display not found")
	ErrNoElement        = errors.New("no capturable rectangle")
	ErrCaptureFailed    = errors.New("capture failed")
)
