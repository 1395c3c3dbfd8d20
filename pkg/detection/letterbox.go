package detection

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// padColor is the gray YOLOv8 was trained with for letterbox borders
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 0}

// letterbox maps an image onto the model input keeping its aspect ratio:
// scale to fit, then pad the short side evenly.
type letterbox struct {
	scale         float32
	content       image.Point // Scaled image size before padding
	left, top     int
	right, bottom int
}

func newLetterbox(imgW, imgH, inW, inH int) letterbox {
	scale := math.Min(float64(inW)/float64(imgW), float64(inH)/float64(imgH))
	w := int(math.Round(float64(imgW) * scale))
	h := int(math.Round(float64(imgH) * scale))

	left := (inW - w) / 2
	top := (inH - h) / 2

	return letterbox{
		scale:   float32(scale),
		content: image.Pt(w, h),
		left:    left,
		top:     top,
		right:   inW - w - left,
		bottom:  inH - h - top,
	}
}

// apply returns a new Mat of the model input size. The caller owns it.
func (l letterbox) apply(img gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, l.content, 0, 0, gocv.InterpolationLinear)

	padded := gocv.NewMat()
	gocv.CopyMakeBorder(resized, &padded, l.top, l.bottom, l.left, l.right, gocv.BorderConstant, padColor)
	return padded
}

// unmap converts a model input coordinate back to the original image
func (l letterbox) unmap(x, y float32) (int, int) {
	return int((x - float32(l.left)) / l.scale), int((y - float32(l.top)) / l.scale)
}
