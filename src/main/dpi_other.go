//go:build !windows

package main

// enableDPIAwareness is a no-op outside Windows; other platforms report
// display metrics in points with an explicit scale factor.
func enableDPIAwareness() {}
