package detection

import "gocv.io/x/gocv"

// Mock implements Detector for testing.
type Mock struct {
	// InferFunc is called when Infer is invoked. Nil returns no detections.
	InferFunc func(img gocv.Mat, p Params) ([]Detection, error)

	// Calls records the params of every Infer call.
	Calls []Params

	// Closed is set by Close.
	Closed bool
}

// NewMock returns a Mock that always reports dets.
func NewMock(dets ...Detection) *Mock {
	return &Mock{
		InferFunc: func(gocv.Mat, Params) ([]Detection, error) {
			return dets, nil
		},
	}
}

// Infer implements Detector.
func (m *Mock) Infer(img gocv.Mat, p Params) ([]Detection, error) {
	m.Calls = append(m.Calls, p)
	if m.InferFunc == nil {
		return nil, nil
	}
	return m.InferFunc(img, p)
}

// ClassName implements Detector using the COCO table.
func (m *Mock) ClassName(id int) string {
	return ClassName(id)
}

// Close implements Detector.
func (m *Mock) Close() error {
	m.Closed = true
	return nil
}
