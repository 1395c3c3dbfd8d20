package camera

import (
	"fmt"

	"github.com/teslashibe/bagwatch/internal/log"
	"gocv.io/x/gocv"
)

// Source produces frames sequentially until the stream ends.
type Source interface {
	// Next reads the next frame into dst. Returns ErrFrameRead at end of stream.
	Next(dst *gocv.Mat) error

	// Release closes the capture session. Safe to call more than once.
	Release() error
}

// Stream is a Source backed by an OpenCV VideoCapture
type Stream struct {
	capture *gocv.VideoCapture

	released bool
}

// Open starts a capture session against cfg.URL and applies the capture hints.
func Open(cfg Config) (*Stream, error) {
	capture, err := gocv.OpenVideoCapture(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, cfg.URL, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, cfg.URL)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	log.Info("camera opened",
		"url", cfg.URL,
		"width", int(capture.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(capture.Get(gocv.VideoCaptureFrameHeight)),
		"fps", capture.Get(gocv.VideoCaptureFPS),
	)

	return &Stream{capture: capture}, nil
}

// Next reads the next frame into dst.
func (s *Stream) Next(dst *gocv.Mat) error {
	if ok := s.capture.Read(dst); !ok || dst.Empty() {
		return ErrFrameRead
	}
	return nil
}

// Release closes the capture session. Later calls are no-ops.
func (s *Stream) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.capture.Close()
}
