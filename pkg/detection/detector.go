// Package detection provides object detection using computer vision
package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Detection represents a detected object in pixel coordinates of the image it was found in
type Detection struct {
	ClassID    int             // COCO class ID
	Confidence float64         // Detection confidence (0-1)
	Box        image.Rectangle // Left, top, right, bottom
}

// String returns a compact description for debug logs
func (d Detection) String() string {
	return fmt.Sprintf("class=%d conf=%.2f box=%v", d.ClassID, d.Confidence, d.Box)
}

// Params bounds a single inference call
type Params struct {
	Confidence    float32 // Minimum class score kept
	IoU           float32 // NMS overlap threshold
	MaxDetections int     // Upper bound on returned detections, 0 = unlimited
}

// DefaultParams returns the thresholds the overlay runs with
func DefaultParams() Params {
	return Params{
		Confidence:    0.3,
		IoU:           0.5,
		MaxDetections: 5,
	}
}

// Detector is the interface for object detection backends
type Detector interface {
	// Infer finds objects in img. Boxes are in img's pixel space.
	Infer(img gocv.Mat, p Params) ([]Detection, error)

	// ClassName maps a class index to a human-readable name
	ClassName(id int) string

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath   string // Path to ONNX model
	InputWidth  int    // Model input width
	InputHeight int    // Model input height
}

// DefaultConfig returns production defaults for YOLOv8n
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/yolov8n.onnx",
		InputWidth:  640,
		InputHeight: 640,
	}
}
