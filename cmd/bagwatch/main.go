// bagwatch - periodic luggage detection over a network camera stream
//
// Shows the stream in a window and, every 30th frame, runs YOLOv8 over a
// 640x360 copy and draws boxes around backpacks, handbags and suitcases.
// Press q in the window to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/teslashibe/bagwatch/internal/config"
	"github.com/teslashibe/bagwatch/internal/log"
	"github.com/teslashibe/bagwatch/pkg/camera"
	"github.com/teslashibe/bagwatch/pkg/debug"
	"github.com/teslashibe/bagwatch/pkg/detection"
	"github.com/teslashibe/bagwatch/pkg/overlay"
	"github.com/teslashibe/bagwatch/pkg/session"
)

// deps are the constructors run wires together; tests swap them for fakes.
type deps struct {
	openSource  func(camera.Config) (camera.Source, error)
	newDetector func(detection.Config) (detection.Detector, error)
	newViewer   func(title string) session.Viewer
}

func defaultDeps() deps {
	return deps{
		openSource: func(cfg camera.Config) (camera.Source, error) {
			return camera.Open(cfg)
		},
		newDetector: func(cfg detection.Config) (detection.Detector, error) {
			return detection.NewYOLO(cfg)
		},
		newViewer: func(title string) session.Viewer {
			return session.NewWindow(title)
		},
	}
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.LogLevel)
	debug.Enabled, debug.Frames = cfg.Debug, cfg.DebugFrames

	runID := uuid.New().String()
	logger := log.With("run_id", runID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting", "camera", cfg.Camera.String(), "model", cfg.Detector.ModelPath)

	reason, err := run(ctx, cfg, runID, defaultDeps())
	switch {
	case errors.Is(err, camera.ErrSourceUnavailable):
		logger.Error("could not open camera", "url", cfg.Camera.URL, "error", err)
	case err != nil:
		logger.Error("stopped on error", "reason", reason, "error", err)
	default:
		logger.Info("stopped", "reason", reason)
	}

	cancel()
	os.Exit(exitCode(err))
}

// exitCode maps a run result to the process status. A camera that cannot be
// opened is reported but not distinguished from a normal stop.
func exitCode(err error) int {
	if err == nil || errors.Is(err, camera.ErrSourceUnavailable) {
		return 0
	}
	return 1
}

// run opens the source, loads the model and drives a session until it stops.
// The source is released on every path once it has been opened.
func run(ctx context.Context, cfg config.Config, runID string, d deps) (session.StopReason, error) {
	src, err := d.openSource(cfg.Camera)
	if err != nil {
		return session.StopNone, err
	}

	det, err := d.newDetector(cfg.Detector)
	if err != nil {
		src.Release()
		return session.StopNone, fmt.Errorf("load detector: %w", err)
	}
	defer det.Close()

	s := session.New(src, overlay.New(det), d.newViewer(cfg.Title), session.Options{
		DetectEvery: cfg.DetectEvery,
		QuitKey:     'q',
		RunID:       runID,
	})

	reason, err := s.Run(ctx)
	log.Info("session summary",
		"run_id", runID,
		"frames", s.Frames(),
		"detections", s.Detections(),
	)
	return reason, err
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() (config.Config, error) {
	cfg := config.Default()
	cfg.ApplyEnv()

	url := flag.String("url", cfg.Camera.URL, "Video stream URL (overrides CAMERA_URL env var)")
	model := flag.String("model", cfg.Detector.ModelPath, "Path to YOLOv8 ONNX model (overrides MODEL_PATH env var)")
	preset := flag.String("preset", "", "Capture hint preset: default, 480p, 720p, 1080p")
	every := flag.Uint64("detect-every", cfg.DetectEvery, "Run detection on every Nth frame (at least 30)")
	title := flag.String("title", cfg.Title, "Window title")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every captured frame (very verbose)")
	flag.Parse()

	cfg.Camera.URL, cfg.Detector.ModelPath = *url, *model
	cfg.DetectEvery, cfg.Title, cfg.LogLevel = *every, *title, *logLevel
	cfg.Debug, cfg.DebugFrames = *debugFlag, *debugFrames

	if *preset != "" && !camera.ApplyPreset(&cfg.Camera, *preset) {
		return cfg, fmt.Errorf("unknown preset %q (want one of %v)", *preset, camera.PresetNames())
	}

	return cfg, cfg.Validate()
}
