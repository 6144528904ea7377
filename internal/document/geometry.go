package document

import "image"

// BoundingBox is an axis-aligned rectangle in page coordinates with a
// top-left origin.
type BoundingBox struct {
	L float64 `json:"l"`
	T float64 `json:"t"`
	R float64 `json:"r"`
	B float64 `json:"b"`
}

// NewBoundingBox normalizes the corner order so that L<=R and T<=B.
func NewBoundingBox(l, t, r, b float64) BoundingBox {
	if l > r {
		l, r = r, l
	}
	if t > b {
		t, b = b, t
	}
	return BoundingBox{L: l, T: t, R: r, B: b}
}

// FromImageRect converts an image.Rectangle into a BoundingBox.
func FromImageRect(r image.Rectangle) BoundingBox {
	return BoundingBox{
		L: float64(r.Min.X), T: float64(r.Min.Y),
		R: float64(r.Max.X), B: float64(r.Max.Y),
	}
}

// Width returns the horizontal extent.
func (bb BoundingBox) Width() float64 { return bb.R - bb.L }

// Height returns the vertical extent.
func (bb BoundingBox) Height() float64 { return bb.B - bb.T }

// Area returns the covered area; degenerate boxes have zero area.
func (bb BoundingBox) Area() float64 {
	w, h := bb.Width(), bb.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Scaled returns the box with every coordinate multiplied by s.
func (bb BoundingBox) Scaled(s float64) BoundingBox {
	return BoundingBox{L: bb.L * s, T: bb.T * s, R: bb.R * s, B: bb.B * s}
}

// Translated returns the box shifted by (dx, dy).
func (bb BoundingBox) Translated(dx, dy float64) BoundingBox {
	return BoundingBox{L: bb.L + dx, T: bb.T + dy, R: bb.R + dx, B: bb.B + dy}
}

// Union returns the smallest box containing both boxes.
func (bb BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		L: min(bb.L, other.L), T: min(bb.T, other.T),
		R: max(bb.R, other.R), B: max(bb.B, other.B),
	}
}

// Contains reports whether other lies fully inside the box, allowing a
// tolerance of eps on every edge.
func (bb BoundingBox) Contains(other BoundingBox, eps float64) bool {
	return other.L >= bb.L-eps && other.T >= bb.T-eps &&
		other.R <= bb.R+eps && other.B <= bb.B+eps
}

// ImageRect converts the box into an image.Rectangle, rounding outward.
func (bb BoundingBox) ImageRect() image.Rectangle {
	return image.Rect(int(bb.L), int(bb.T), int(bb.R+0.5), int(bb.B+0.5))
}

// PageSize is the page extent in page units at scale 1.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect returns the full-page bounding box.
func (s PageSize) Rect() BoundingBox {
	return BoundingBox{R: s.Width, B: s.Height}
}
