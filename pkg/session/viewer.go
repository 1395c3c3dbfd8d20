package session

import "gocv.io/x/gocv"

// Viewer shows frames and reports key presses
type Viewer interface {
	// Show displays img until the next call
	Show(img gocv.Mat)

	// WaitKey waits up to delayMs for a key press and returns its code, or -1
	WaitKey(delayMs int) int

	// Close destroys the window
	Close() error
}

// Window is a Viewer backed by an OpenCV HighGUI window
type Window struct {
	w *gocv.Window
}

// NewWindow opens a window titled title
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// Show implements Viewer
func (w *Window) Show(img gocv.Mat) {
	w.w.IMShow(img)
}

// WaitKey implements Viewer
func (w *Window) WaitKey(delayMs int) int {
	return w.w.WaitKey(delayMs)
}

// Close implements Viewer
func (w *Window) Close() error {
	return w.w.Close()
}
