// Package config provides configuration for the bagwatch command.
// Every field defaults to a literal constant; environment variables and
// flags can only replace those defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/teslashibe/bagwatch/pkg/camera"
	"github.com/teslashibe/bagwatch/pkg/detection"
)

// Default process settings.
const (
	DefaultTitle       = "Real-Time Object Tracking"
	DefaultDetectEvery = 30
	DefaultLogLevel    = "info"

	// MinDetectEvery keeps at least 29 skipped frames between detection passes.
	MinDetectEvery = 30
)

// Config holds everything the command needs to build a session.
type Config struct {
	Camera      camera.Config
	Detector    detection.Config
	Title       string
	DetectEvery uint64
	LogLevel    string
	Debug       bool
	DebugFrames bool
}

// Default returns the configuration made only of literal constants.
func Default() Config {
	return Config{
		Camera:      camera.DefaultConfig(),
		Detector:    detection.DefaultConfig(),
		Title:       DefaultTitle,
		DetectEvery: DefaultDetectEvery,
		LogLevel:    DefaultLogLevel,
	}
}

// CameraURL returns the stream URL from CAMERA_URL env var.
// Falls back to the provided default if not set.
func CameraURL(defaultURL string) string {
	if url := os.Getenv("CAMERA_URL"); url != "" {
		return url
	}
	return defaultURL
}

// ModelPath returns the ONNX model path from MODEL_PATH env var.
// Falls back to the provided default if not set.
func ModelPath(defaultPath string) string {
	if p := os.Getenv("MODEL_PATH"); p != "" {
		return p
	}
	return defaultPath
}

// ApplyEnv overrides cfg with CAMERA_URL, MODEL_PATH and LOG_LEVEL when set.
func (c *Config) ApplyEnv() {
	c.Camera.URL = CameraURL(c.Camera.URL)
	c.Detector.ModelPath = ModelPath(c.Detector.ModelPath)
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	problems := c.Camera.Validate()

	if c.Detector.ModelPath == "" {
		problems = append(problems, "model path must not be empty")
	}
	if c.Detector.InputWidth <= 0 || c.Detector.InputHeight <= 0 {
		problems = append(problems, "model input size must be positive")
	}
	if c.DetectEvery < MinDetectEvery {
		problems = append(problems, fmt.Sprintf("detect-every must be at least %d", MinDetectEvery))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
