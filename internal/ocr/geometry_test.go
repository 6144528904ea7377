package ocr

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0}, {90, 90}, {180, 180}, {270, 270},
		{360, 0}, {450, 90}, {-90, 270},
		{44, 0}, {46, 90}, {134, 90}, {136, 180}, {359, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRotation(tt.in), "deg=%d", tt.in)
	}
}

func TestRotateExpandSwapsDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 60))

	r90 := rotateExpand(img, 90)
	assert.Equal(t, 60, r90.Bounds().Dx())
	assert.Equal(t, 30, r90.Bounds().Dy())

	r180 := rotateExpand(img, 180)
	assert.Equal(t, 30, r180.Bounds().Dx())
	assert.Equal(t, 60, r180.Bounds().Dy())

	assert.Equal(t, img, rotateExpand(img, 0))
}

func TestUnrotatePointRoundTrip(t *testing.T) {
	// Forward clockwise rotation of a W0 x H0 image, then the inverse,
	// must restore the original coordinates.
	const w0, h0 = 300.0, 600.0
	points := []struct{ x, y float64 }{{0, 0}, {299, 0}, {0, 599}, {150, 400}}

	for _, p := range points {
		// clockwise 90: (x, y) -> (H0 - y, x); rotated size H0 x W0
		xr, yr := h0-p.y, p.x
		x, y := unrotatePoint(xr, yr, int(h0), int(w0), 90)
		assert.InDelta(t, p.x, x, 1e-9)
		assert.InDelta(t, p.y, y, 1e-9)

		// clockwise 180: (x, y) -> (W0 - x, H0 - y)
		xr, yr = w0-p.x, h0-p.y
		x, y = unrotatePoint(xr, yr, int(w0), int(h0), 180)
		assert.InDelta(t, p.x, x, 1e-9)
		assert.InDelta(t, p.y, y, 1e-9)

		// clockwise 270: (x, y) -> (y, W0 - x); rotated size H0 x W0
		xr, yr = p.y, w0-p.x
		x, y = unrotatePoint(xr, yr, int(h0), int(w0), 270)
		assert.InDelta(t, p.x, x, 1e-9)
		assert.InDelta(t, p.y, y, 1e-9)
	}
}

func TestMapBoxToPage(t *testing.T) {
	region := document.BoundingBox{L: 0, T: 0, R: 100, B: 200}

	// Unrotated: only the upscale and offset apply.
	got := mapBoxToPage(image.Rect(30, 60, 90, 120), 300, 600, 0, 3, region)
	assert.InDelta(t, 10, got.L, 1e-9)
	assert.InDelta(t, 20, got.T, 1e-9)
	assert.InDelta(t, 30, got.R, 1e-9)
	assert.InDelta(t, 40, got.B, 1e-9)

	// Rotated 90 clockwise: the rendered 300x600 region became 600x300.
	got = mapBoxToPage(image.Rect(60, 30, 120, 90), 600, 300, 90, 3, region)
	assert.InDelta(t, 10, got.L, 1e-9)
	assert.InDelta(t, 160, got.T, 1e-9)
	assert.InDelta(t, 30, got.R, 1e-9)
	assert.InDelta(t, 180, got.B, 1e-9)
	assert.True(t, region.Contains(got, 1e-6))
}

func TestMapBoxToPageWithRegionOffset(t *testing.T) {
	region := document.BoundingBox{L: 50, T: 80, R: 150, B: 280}
	got := mapBoxToPage(image.Rect(0, 0, 300, 600), 300, 600, 0, 3, region)
	assert.InDelta(t, 50, got.L, 1e-9)
	assert.InDelta(t, 80, got.T, 1e-9)
	assert.InDelta(t, 150, got.R, 1e-9)
	assert.InDelta(t, 280, got.B, 1e-9)
}
