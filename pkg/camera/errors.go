package camera

import "errors"

// Sentinel errors for capture failures.
var (
	// ErrSourceUnavailable is returned when the capture session cannot be opened.
	ErrSourceUnavailable = errors.New("camera: source unavailable")

	// ErrFrameRead is returned when a read yields no frame. Callers treat it as end of stream.
	ErrFrameRead = errors.New("camera: failed to grab frame")
)
