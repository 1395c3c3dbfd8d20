// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether per-frame logs are shown (every capture, every skip)
// Use --debug-frames flag to enable these very verbose logs
var Frames bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// FrameLog prints a message only if frame debug mode is enabled
func FrameLog(format string, args ...interface{}) {
	if Frames {
		fmt.Printf(format, args...)
	}
}
