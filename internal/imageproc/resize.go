package imageproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// FitWithin downscales img so it fits into maxW x maxH keeping the aspect ratio.
// A zero bound is ignored. Images already inside the bounds are returned as is:
// nothing is ever upscaled.
func FitWithin(img *image.NRGBA, maxW, maxH int) (*image.NRGBA, bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	newW, newH, ok := fitSize(w, h, maxW, maxH)
	if !ok {
		return img, false
	}

	return imaging.Resize(img, newW, newH, imaging.Lanczos), true
}

func fitSize(w, h, maxW, maxH int) (int, int, bool) {
	if w <= 0 || h <= 0 || (maxW <= 0 && maxH <= 0) {
		return w, h, false
	}

	ratioW, ratioH := 1.0, 1.0
	if maxW > 0 {
		ratioW = float64(maxW) / float64(w)
	}
	if maxH > 0 {
		ratioH = float64(maxH) / float64(h)
	}

	ratio := math.Min(ratioW, ratioH)
	if ratio >= 1 {
		return w, h, false
	}

	newW := max(int(math.Floor(float64(w)*ratio)), 1)
	newH := max(int(math.Floor(float64(h)*ratio)), 1)
	return newW, newH, true
}
