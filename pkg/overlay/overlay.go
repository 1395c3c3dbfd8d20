// Package overlay runs a detector over a downscaled frame and draws the
// boxes and labels of the classes worth showing.
//
// An Annotator keeps no state between calls: every frame is detected from
// scratch and nothing is associated across frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/teslashibe/bagwatch/pkg/debug"
	"github.com/teslashibe/bagwatch/pkg/detection"
	"gocv.io/x/gocv"
)

// WorkingSize is the resolution detection runs at and the size of every annotated frame.
var WorkingSize = image.Pt(640, 360)

// LabelOffset is how far above the box's top-left corner the label baseline sits.
const LabelOffset = 10

// TargetClasses are the COCO classes drawn on the frame (backpack, handbag, suitcase).
var TargetClasses = []int{
	detection.ClassBackpack,
	detection.ClassHandbag,
	detection.ClassSuitcase,
}

// Style controls how boxes and labels are drawn
type Style struct {
	Color     color.RGBA
	FontFace  gocv.HersheyFont
	FontScale float64
	Thickness int
}

// DefaultStyle draws green boxes with small Hershey simplex labels
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 0, G: 255, B: 0, A: 255},
		FontFace:  gocv.FontHersheySimplex,
		FontScale: 0.5,
		Thickness: 2,
	}
}

// Annotator turns a captured frame into a downscaled, annotated frame
type Annotator struct {
	detector detection.Detector
	params   detection.Params
	targets  map[int]bool
	style    Style
}

// New creates an Annotator with the default params, targets and style.
func New(det detection.Detector) *Annotator {
	targets := make(map[int]bool, len(TargetClasses))
	for _, id := range TargetClasses {
		targets[id] = true
	}

	return &Annotator{
		detector: det,
		params:   detection.DefaultParams(),
		targets:  targets,
		style:    DefaultStyle(),
	}
}

// Keep reports whether a detection is drawn: its class must be a target and its
// confidence strictly above the inference threshold.
func (a *Annotator) Keep(d detection.Detection) bool {
	return a.targets[d.ClassID] && d.Confidence > float64(a.params.Confidence)
}

// Label formats the text drawn above a box, e.g. "backpack (0.42)".
func Label(name string, confidence float64) string {
	return fmt.Sprintf("%s (%.2f)", name, confidence)
}

// DetectAndAnnotate resizes frame to WorkingSize, runs the detector on the copy
// and draws the kept detections onto it. The caller owns the returned Mat.
// The result is always WorkingSize, whatever the input resolution.
func (a *Annotator) DetectAndAnnotate(frame gocv.Mat) (gocv.Mat, error) {
	working := gocv.NewMat()
	gocv.Resize(frame, &working, WorkingSize, 0, 0, gocv.InterpolationLinear)

	dets, err := a.detector.Infer(working, a.params)
	if err != nil {
		working.Close()
		return gocv.NewMat(), fmt.Errorf("infer: %w", err)
	}

	for _, d := range dets {
		if !a.Keep(d) {
			debug.Log("  skip %v\n", d)
			continue
		}
		a.draw(&working, d)
	}

	return working, nil
}

// labelOrigin is the bottom-left of the label text: LabelOffset above the box's top-left corner.
func labelOrigin(box image.Rectangle) image.Point {
	return image.Pt(box.Min.X, box.Min.Y-LabelOffset)
}

func (a *Annotator) draw(img *gocv.Mat, d detection.Detection) {
	label := Label(a.detector.ClassName(d.ClassID), d.Confidence)
	origin := labelOrigin(d.Box)

	gocv.Rectangle(img, d.Box, a.style.Color, a.style.Thickness)
	gocv.PutText(img, label, origin, a.style.FontFace, a.style.FontScale, a.style.Color, a.style.Thickness)

	debug.Log("  🎒 %s at %v\n", label, d.Box)
}
