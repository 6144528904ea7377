package ocr

import (
	"image"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/disintegration/imaging"
)

// rotateExpand rotates the image clockwise by the given right angle,
// expanding the canvas so no corner is clipped.
func rotateExpand(img image.Image, clockwiseDeg int) image.Image {
	switch normalizeRotation(clockwiseDeg) {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// normalizeRotation clamps an angle to {0, 90, 180, 270}, snapping to
// the nearest right angle the way tesseract reports orientations.
func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	// snap to the closest multiple of 90
	return ((deg + 45) / 90 % 4) * 90
}

// mapBoxToPage transforms a recognized line box from rotated, upscaled,
// region-local pixel coordinates back to page coordinates. rotW and
// rotH are the dimensions of the rotated region image the box was
// detected in; rotation is the clockwise angle previously applied to
// that image; scale is the upscale factor the region was rendered at;
// region is the OCR rectangle in page coordinates.
func mapBoxToPage(box image.Rectangle, rotW, rotH, rotation int, scale float64, region document.BoundingBox) document.BoundingBox {
	x0, y0 := unrotatePoint(float64(box.Min.X), float64(box.Min.Y), rotW, rotH, rotation)
	x1, y1 := unrotatePoint(float64(box.Max.X), float64(box.Max.Y), rotW, rotH, rotation)
	unrotated := document.NewBoundingBox(x0, y0, x1, y1)
	return unrotated.Scaled(1 / scale).Translated(region.L, region.T)
}

// unrotatePoint inverts a clockwise right-angle rotation: (x, y) are
// coordinates in the rotated image of size rotW x rotH; the result is
// in the unrotated image's coordinate space.
func unrotatePoint(x, y float64, rotW, rotH, rotation int) (float64, float64) {
	switch normalizeRotation(rotation) {
	case 90:
		// unrotated size was rotH x rotW; clockwise 90: xr = H0-y0, yr = x0
		return y, float64(rotW) - x
	case 180:
		return float64(rotW) - x, float64(rotH) - y
	case 270:
		// counter-clockwise 90: xr = y0, yr = W0-x0
		return float64(rotH) - y, x
	default:
		return x, y
	}
}
