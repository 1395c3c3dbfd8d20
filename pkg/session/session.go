// Package session owns the capture/detect/display loop.
//
// A Session is single-threaded: capture, detection and display run in
// sequence on the caller's goroutine. Detection frames block the loop for
// as long as inference takes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/bagwatch/internal/log"
	"github.com/teslashibe/bagwatch/pkg/camera"
	"github.com/teslashibe/bagwatch/pkg/debug"
	"gocv.io/x/gocv"
)

// FrameAnnotator produces the frame shown on detection iterations
type FrameAnnotator interface {
	DetectAndAnnotate(frame gocv.Mat) (gocv.Mat, error)
}

// StopReason says why Run returned
type StopReason int

const (
	StopNone        StopReason = iota
	StopEndOfStream            // capture yielded no frame
	StopQuit                   // quit key pressed
	StopCancelled              // context cancelled (SIGINT/SIGTERM)
	StopError                  // annotator failed
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end_of_stream"
	case StopQuit:
		return "quit"
	case StopCancelled:
		return "cancelled"
	case StopError:
		return "error"
	default:
		return "none"
	}
}

// Options tunes the loop
type Options struct {
	DetectEvery uint64        // Run detection when counter % DetectEvery == 0
	QuitKey     int           // Key code that stops the loop
	KeyDelay    time.Duration // How long each key poll blocks
	RunID       string        // Attached to every log line
}

// MinDetectEvery is the smallest detection spacing a session accepts:
// two detection passes are always at least 29 frames apart.
const MinDetectEvery = 30

// DefaultOptions returns the production loop settings
func DefaultOptions() Options {
	return Options{
		DetectEvery: 30,
		QuitKey:     'q',
		KeyDelay:    time.Millisecond,
	}
}

// ShouldDetect reports whether frame number counter is a detection frame.
// counter is 1-based: the first captured frame is 1.
func ShouldDetect(counter, every uint64) bool {
	if every == 0 {
		return false
	}
	return counter%every == 0
}

// Session owns the frame counter and the resources the loop uses
type Session struct {
	source    camera.Source
	annotator FrameAnnotator
	viewer    Viewer
	opts      Options
	logger    *slog.Logger

	counter    uint64
	detections uint64
	done       bool
}

// New creates a session. The session takes ownership of source and viewer:
// Run releases both exactly once, whatever the stop cause.
func New(source camera.Source, annotator FrameAnnotator, viewer Viewer, opts Options) *Session {
	if opts.DetectEvery < MinDetectEvery {
		opts.DetectEvery = MinDetectEvery
	}
	if opts.QuitKey == 0 {
		opts.QuitKey = DefaultOptions().QuitKey
	}
	if opts.KeyDelay <= 0 {
		opts.KeyDelay = DefaultOptions().KeyDelay
	}

	return &Session{
		source:    source,
		annotator: annotator,
		viewer:    viewer,
		opts:      opts,
		logger:    log.With("run_id", opts.RunID),
	}
}

// Frames returns how many frames have been captured
func (s *Session) Frames() uint64 {
	return s.counter
}

// Detections returns how many detection passes have run
func (s *Session) Detections() uint64 {
	return s.detections
}

// Run loops until the stream ends, the quit key is pressed, ctx is cancelled
// or the annotator fails. Only annotator failures are returned as errors.
// Run may only be called once.
func (s *Session) Run(ctx context.Context) (StopReason, error) {
	if s.done {
		return StopNone, errors.New("session: already run")
	}
	s.done = true
	defer s.release()

	frame := gocv.NewMat()
	defer frame.Close()

	keyDelay := int(s.opts.KeyDelay / time.Millisecond)
	if keyDelay < 1 {
		keyDelay = 1
	}

	for {
		if ctx.Err() != nil {
			return StopCancelled, nil
		}

		if err := s.source.Next(&frame); err != nil {
			// Any read failure ends the stream; there is no retry.
			s.logger.Warn("failed to grab frame", "frame", s.counter+1, "error", err)
			return StopEndOfStream, nil
		}

		s.counter++

		if ShouldDetect(s.counter, s.opts.DetectEvery) {
			annotated, err := s.annotate(frame)
			if err != nil {
				annotated.Close()
				return StopError, err
			}
			s.viewer.Show(annotated)
			annotated.Close()
		} else {
			debug.FrameLog("frame %d passthrough\n", s.counter)
			s.viewer.Show(frame)
		}

		if key := s.viewer.WaitKey(keyDelay); key >= 0 && key&0xFF == s.opts.QuitKey {
			s.logger.Info("quit key pressed", "frame", s.counter)
			return StopQuit, nil
		}
	}
}

func (s *Session) annotate(frame gocv.Mat) (gocv.Mat, error) {
	start := time.Now()
	annotated, err := s.annotator.DetectAndAnnotate(frame)
	s.detections++
	if err != nil {
		return annotated, fmt.Errorf("detect frame %d: %w", s.counter, err)
	}

	s.logger.Debug("detection pass",
		"frame", s.counter,
		"pass", s.detections,
		"elapsed", time.Since(start),
	)
	return annotated, nil
}

func (s *Session) release() {
	if err := s.source.Release(); err != nil {
		s.logger.Warn("release source", "error", err)
	}
	if err := s.viewer.Close(); err != nil {
		s.logger.Warn("close viewer", "error", err)
	}
}
