package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// orientationHint estimates the reading rotation of a region from the
// luminance transition profile: upright text produces far more
// black/white transitions along rows than along columns. It only
// distinguishes 0 from 90 degrees; upside-down text is resolved later
// by recognition confidence, not here.
func orientationHint(img image.Image) (angle int, confidence float64) {
	if img == nil {
		return 0, 0
	}
	thumb := imaging.Fit(img, 128, 128, imaging.Lanczos)
	b := thumb.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return 0, 0
	}

	mean := meanLuminance(thumb)
	rows := countRowTransitions(thumb, mean)
	cols := countColumnTransitions(thumb, mean)
	if rows+cols == 0 {
		return 0, 0
	}

	// Normalize per scan line so the aspect ratio does not bias the vote.
	rowRate := rows / float64(b.Dy())
	colRate := cols / float64(b.Dx())
	total := rowRate + colRate
	if total == 0 {
		return 0, 0
	}
	if colRate > rowRate {
		return 90, colRate / total
	}
	return 0, rowRate / total
}

func meanLuminance(img image.Image) float64 {
	b := img.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += luminance(img, x, y)
		}
	}
	return sum / float64(b.Dx()*b.Dy())
}

func luminance(img image.Image, x, y int) float64 {
	r, g, bb, _ := img.At(x, y).RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bb>>8)
}

func countRowTransitions(img image.Image, mean float64) float64 {
	b := img.Bounds()
	var transitions float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		prev := luminance(img, b.Min.X, y) > mean
		for x := b.Min.X + 1; x < b.Max.X; x++ {
			cur := luminance(img, x, y) > mean
			if cur != prev {
				transitions++
			}
			prev = cur
		}
	}
	return transitions
}

func countColumnTransitions(img image.Image, mean float64) float64 {
	b := img.Bounds()
	var transitions float64
	for x := b.Min.X; x < b.Max.X; x++ {
		prev := luminance(img, x, b.Min.Y) > mean
		for y := b.Min.Y + 1; y < b.Max.Y; y++ {
			cur := luminance(img, x, y) > mean
			if cur != prev {
				transitions++
			}
			prev = cur
		}
	}
	return transitions
}
