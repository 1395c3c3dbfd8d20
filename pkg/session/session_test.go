package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/teslashibe/bagwatch/pkg/camera"
	"github.com/teslashibe/bagwatch/pkg/detection"
	"github.com/teslashibe/bagwatch/pkg/overlay"
	"gocv.io/x/gocv"
)

// fakeSource yields total frames of size w x h, each filled with its index,
// then reports end of stream. failAt > 0 ends the stream at that read instead.
type fakeSource struct {
	w, h     int
	total    int
	failAt   int
	reads    int
	produced [][]byte
	released int
}

func (s *fakeSource) Next(dst *gocv.Mat) error {
	s.reads++
	if s.reads > s.total || s.reads == s.failAt {
		return camera.ErrFrameRead
	}

	m := gocv.NewMatWithSize(s.h, s.w, gocv.MatTypeCV8UC3)
	defer m.Close()
	v := float64(s.reads % 256)
	m.SetTo(gocv.NewScalar(v, v, v, 0))
	m.CopyTo(dst)

	s.produced = append(s.produced, dst.ToBytes())
	return nil
}

func (s *fakeSource) Release() error {
	s.released++
	return nil
}

// fakeViewer records every shown frame and presses quitKey on frame quitAt.
type fakeViewer struct {
	quitAt int
	shown  [][]byte
	sizes  []image.Point
	polls  []int
	closed int
}

func (v *fakeViewer) Show(img gocv.Mat) {
	v.shown = append(v.shown, img.ToBytes())
	v.sizes = append(v.sizes, image.Pt(img.Cols(), img.Rows()))
}

func (v *fakeViewer) WaitKey(delayMs int) int {
	v.polls = append(v.polls, delayMs)
	if v.quitAt > 0 && len(v.shown) == v.quitAt {
		return 'q'
	}
	return -1
}

func (v *fakeViewer) Close() error {
	v.closed++
	return nil
}

func newTestSession(src *fakeSource, v *fakeViewer, det *detection.Mock) *Session {
	return New(src, overlay.New(det), v, DefaultOptions())
}

func assertReleasedOnce(t *testing.T, src *fakeSource, v *fakeViewer) {
	t.Helper()
	if src.released != 1 {
		t.Errorf("source released %d times, want 1", src.released)
	}
	if v.closed != 1 {
		t.Errorf("viewer closed %d times, want 1", v.closed)
	}
}

func TestShouldDetect(t *testing.T) {
	for n := uint64(1); n <= 300; n++ {
		want := n%30 == 0
		if got := ShouldDetect(n, 30); got != want {
			t.Errorf("ShouldDetect(%d, 30) = %v, want %v", n, got, want)
		}
	}

	if ShouldDetect(30, 0) {
		t.Error("ShouldDetect with every=0 should never detect")
	}
}

func TestRun_NinetyFrames(t *testing.T) {
	src := &fakeSource{w: 320, h: 240, total: 90}
	v := &fakeViewer{}
	det := detection.NewMock()

	s := newTestSession(src, v, det)
	reason, err := s.Run(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopEndOfStream {
		t.Errorf("reason: got %v, want %v", reason, StopEndOfStream)
	}
	if len(det.Calls) != 3 {
		t.Errorf("detector called %d times, want 3", len(det.Calls))
	}
	if s.Frames() != 90 || s.Detections() != 3 {
		t.Errorf("counters: frames=%d detections=%d, want 90/3", s.Frames(), s.Detections())
	}
	assertReleasedOnce(t, src, v)

	for i, sz := range v.sizes {
		frameNo := i + 1
		if frameNo%30 == 0 {
			if sz != image.Pt(640, 360) {
				t.Errorf("frame %d: annotated size %v, want 640x360", frameNo, sz)
			}
			continue
		}
		if sz != image.Pt(320, 240) {
			t.Errorf("frame %d: passthrough size %v, want 320x240", frameNo, sz)
		}
		if !bytes.Equal(v.shown[i], src.produced[i]) {
			t.Errorf("frame %d: passthrough frame differs from captured frame", frameNo)
		}
	}

	for _, d := range v.polls {
		if d != 1 {
			t.Errorf("key poll delay: got %dms, want 1ms", d)
			break
		}
	}
}

func TestRun_ReadFailureMidStream(t *testing.T) {
	src := &fakeSource{w: 640, h: 360, total: 1000, failAt: 45}
	v := &fakeViewer{}
	det := detection.NewMock()

	s := newTestSession(src, v, det)
	reason, err := s.Run(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopEndOfStream {
		t.Errorf("reason: got %v, want %v", reason, StopEndOfStream)
	}
	if s.Frames() != 44 {
		t.Errorf("frames: got %d, want 44", s.Frames())
	}
	if len(det.Calls) != 1 {
		t.Errorf("detector called %d times, want 1", len(det.Calls))
	}
	if src.reads != 45 {
		t.Errorf("reads after failure: got %d, want 45", src.reads)
	}
	assertReleasedOnce(t, src, v)
}

func TestRun_QuitKey(t *testing.T) {
	src := &fakeSource{w: 640, h: 360, total: 1000}
	v := &fakeViewer{quitAt: 10}
	det := detection.NewMock()

	s := newTestSession(src, v, det)
	reason, err := s.Run(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopQuit {
		t.Errorf("reason: got %v, want %v", reason, StopQuit)
	}
	if s.Frames() != 10 || len(det.Calls) != 0 {
		t.Errorf("frames=%d detector calls=%d, want 10/0", s.Frames(), len(det.Calls))
	}
	assertReleasedOnce(t, src, v)
}

func TestRun_Cancelled(t *testing.T) {
	src := &fakeSource{w: 640, h: 360, total: 1000}
	v := &fakeViewer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSession(src, v, detection.NewMock())
	reason, err := s.Run(ctx)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopCancelled {
		t.Errorf("reason: got %v, want %v", reason, StopCancelled)
	}
	if src.reads != 0 {
		t.Errorf("expected no reads after cancel, got %d", src.reads)
	}
	assertReleasedOnce(t, src, v)
}

func TestRun_DetectorError(t *testing.T) {
	boom := errors.New("inference exploded")
	src := &fakeSource{w: 640, h: 360, total: 1000}
	v := &fakeViewer{}
	det := &detection.Mock{
		InferFunc: func(gocv.Mat, detection.Params) ([]detection.Detection, error) {
			return nil, boom
		},
	}

	s := newTestSession(src, v, det)
	reason, err := s.Run(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("expected detector error, got %v", err)
	}
	if reason != StopError {
		t.Errorf("reason: got %v, want %v", reason, StopError)
	}
	if s.Frames() != 30 {
		t.Errorf("frames: got %d, want 30", s.Frames())
	}
	if len(v.shown) != 29 {
		t.Errorf("shown: got %d frames, want 29", len(v.shown))
	}
	assertReleasedOnce(t, src, v)
}

func TestRun_OnlyOnce(t *testing.T) {
	src := &fakeSource{w: 640, h: 360, total: 1}
	v := &fakeViewer{}

	s := newTestSession(src, v, detection.NewMock())
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := s.Run(context.Background()); err == nil {
		t.Error("expected error on second Run")
	}
	assertReleasedOnce(t, src, v)
}

func TestNew_FillsDefaults(t *testing.T) {
	s := New(&fakeSource{}, overlay.New(detection.NewMock()), &fakeViewer{}, Options{RunID: "abc"})

	def := DefaultOptions()
	if s.opts.DetectEvery != def.DetectEvery || s.opts.QuitKey != def.QuitKey || s.opts.KeyDelay != def.KeyDelay {
		t.Errorf("defaults not applied: %+v", s.opts)
	}
	if s.opts.RunID != "abc" {
		t.Errorf("RunID: got %q, want abc", s.opts.RunID)
	}
}

func TestNew_RaisesDetectSpacing(t *testing.T) {
	src := &fakeSource{w: 320, h: 240, total: 60}
	v := &fakeViewer{}
	det := detection.NewMock()

	s := New(src, overlay.New(det), v, Options{DetectEvery: 1})
	if s.opts.DetectEvery != MinDetectEvery {
		t.Fatalf("DetectEvery: got %d, want %d", s.opts.DetectEvery, MinDetectEvery)
	}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(det.Calls) != 2 {
		t.Errorf("detector called %d times over 60 frames, want 2", len(det.Calls))
	}
}

func TestStopReason_String(t *testing.T) {
	tests := map[StopReason]string{
		StopNone:        "none",
		StopEndOfStream: "end_of_stream",
		StopQuit:        "quit",
		StopCancelled:   "cancelled",
		StopError:       "error",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", r, got, want)
		}
	}
}
