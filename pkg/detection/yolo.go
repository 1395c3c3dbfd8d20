package detection

import (
	"fmt"
	"image"
	"os"
	"sort"

	"github.com/teslashibe/bagwatch/pkg/debug"
	"gocv.io/x/gocv"
)

// YOLODetector uses YOLOv8 for general object detection
type YOLODetector struct {
	net       gocv.Net
	config    Config
	inputSize image.Point
}

// NewYOLO creates a new YOLO object detector
func NewYOLO(cfg Config) (*YOLODetector, error) {
	// Check if model file exists
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	// Load ONNX model
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Infer runs one forward pass over img and returns at most p.MaxDetections
// objects, highest confidence first.
func (d *YOLODetector) Infer(img gocv.Mat, p Params) ([]Detection, error) {
	if img.Empty() {
		return nil, ErrEmptyImage
	}

	lb := newLetterbox(img.Cols(), img.Rows(), d.config.InputWidth, d.config.InputHeight)
	input := lb.apply(img)
	defer input.Close()

	blob := gocv.BlobFromImage(input, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	// Output shape: [1, 84, N] - 84 = 4 bbox + 80 classes
	dims := output.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedOutput, dims)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	cands := decodeYOLOv8(data, dims[1], dims[2], lb, p.Confidence)

	detections := suppress(cands, p)
	if len(detections) > 0 {
		debug.Log("🔍 YOLO found %d object(s)\n", len(detections))
	}

	return detections, nil
}

// candidates holds pre-NMS boxes in parallel slices, the layout NMSBoxes wants
type candidates struct {
	boxes    []image.Rectangle
	scores   []float32
	classIDs []int
}

// decodeYOLOv8 reads a channel-major [features x anchors] tensor.
// Rows 0-3 are center x, center y, width, height in model input pixels;
// the remaining rows are per-class scores. Boxes are mapped back through lb.
func decodeYOLOv8(data []float32, features, anchors int, lb letterbox, minScore float32) candidates {
	var c candidates

	for i := 0; i < anchors; i++ {
		maxScore := float32(0)
		maxClassID := 0

		for f := 4; f < features; f++ {
			score := data[f*anchors+i]
			if score > maxScore {
				maxScore = score
				maxClassID = f - 4
			}
		}

		if maxScore < minScore {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		x1, y1 := lb.unmap(cx-w/2, cy-h/2)
		x2, y2 := lb.unmap(cx+w/2, cy+h/2)

		c.boxes = append(c.boxes, image.Rect(x1, y1, x2, y2))
		c.scores = append(c.scores, maxScore)
		c.classIDs = append(c.classIDs, maxClassID)
	}

	return c
}

// suppress applies NMS within each class and the max-detections cap.
// Overlapping boxes of different classes never suppress each other.
func suppress(c candidates, p Params) []Detection {
	if len(c.boxes) == 0 {
		return nil
	}

	byClass := make(map[int][]int)
	var order []int
	for i, id := range c.classIDs {
		if _, ok := byClass[id]; !ok {
			order = append(order, id)
		}
		byClass[id] = append(byClass[id], i)
	}

	var detections []Detection
	for _, id := range order {
		members := byClass[id]
		boxes := make([]image.Rectangle, len(members))
		scores := make([]float32, len(members))
		for j, idx := range members {
			boxes[j] = c.boxes[idx]
			scores[j] = c.scores[idx]
		}

		for _, k := range gocv.NMSBoxes(boxes, scores, p.Confidence, p.IoU) {
			detections = append(detections, Detection{
				ClassID:    id,
				Confidence: float64(scores[k]),
				Box:        boxes[k],
			})
		}
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
	if p.MaxDetections > 0 && len(detections) > p.MaxDetections {
		detections = detections[:p.MaxDetections]
	}

	return detections
}

// ClassName returns the COCO name for id
func (d *YOLODetector) ClassName(id int) string {
	return ClassName(id)
}

// Close releases the detector resources
func (d *YOLODetector) Close() error {
	return d.net.Close()
}
