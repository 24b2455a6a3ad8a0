//go:build !darwin

package hittest

// newIntrospector returns nil outside macOS; the resolver then relies on the
// window-list fallback.
func newIntrospector() Introspector { return nil }
