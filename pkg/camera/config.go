// Package camera provides the network frame source for bagwatch.
// It wraps an OpenCV capture session and exposes a pull-style Next/Release API.
package camera

import "fmt"

// Config holds the capture session parameters.
// Width, Height and Framerate are hints: the backend may ignore any it cannot honor.
type Config struct {
	URL       string // Network address of the video stream
	Width     int    // Requested frame width in pixels
	Height    int    // Requested frame height in pixels
	Framerate int    // Requested FPS
}

// Hint limits accepted by Validate
const (
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultURL is the phone-camera MJPEG endpoint the watcher was built against.
const DefaultURL = "http://192.168.244.14:4747/video"

// DefaultConfig returns the capture parameters used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		URL:       DefaultURL,
		Width:     640,
		Height:    360,
		Framerate: 30,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.URL == "" {
		errors = append(errors, "url must not be empty")
	}
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between 160 and %d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between 120 and %d", MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}

	return errors
}

// String returns a short description for logs.
func (c Config) String() string {
	return fmt.Sprintf("%s %dx%d@%d", c.URL, c.Width, c.Height, c.Framerate)
}
