package detection

import "errors"

// Sentinel errors for detector setup and inference.
var (
	// ErrModelNotFound is returned when the ONNX model file does not exist.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrModelLoad is returned when OpenCV cannot build a network from the model.
	ErrModelLoad = errors.New("detection: failed to load model")

	// ErrEmptyImage is returned when Infer is given an empty Mat.
	ErrEmptyImage = errors.New("detection: empty image")

	// ErrUnexpectedOutput is returned when the network output does not have the YOLOv8 shape.
	ErrUnexpectedOutput = errors.New("detection: unexpected output shape")
)
