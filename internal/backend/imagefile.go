package backend

import (
	"bytes"
	"image"
	"log/slog"

	// Register the raster decoders the image backend accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// ImageBackend treats a single raster image as a one-page document.
type ImageBackend struct {
	name  string
	valid bool
	img   image.Image
	size  document.PageSize
}

// NewImage constructs the backend by decoding the source. Undecodable
// content yields an invalid backend, not an error.
func NewImage(src Source) (document.Backend, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	b := &ImageBackend{name: src.Name}
	img, kind, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("image decode failed", "file", src.Name, "error", err)
		return b, nil
	}
	slog.Debug("decoded image source", "file", src.Name, "format", kind)
	bounds := img.Bounds()
	b.valid = true
	b.img = img
	b.size = document.PageSize{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	return b, nil
}

// IsValid reports whether the image decoded.
func (b *ImageBackend) IsValid() bool { return b.valid }

// PageCount is always one for a valid image.
func (b *ImageBackend) PageCount() int {
	if !b.valid {
		return 0
	}
	return 1
}

// LoadPage returns the single page view.
func (b *ImageBackend) LoadPage(pageNo int) (document.PageView, error) {
	if !b.valid || pageNo != 1 {
		return &imagePageView{}, nil
	}
	return &imagePageView{valid: true, img: b.img, size: b.size}, nil
}

// Close releases the decoded image.
func (b *ImageBackend) Close() error {
	b.img = nil
	return nil
}

type imagePageView struct {
	valid bool
	img   image.Image
	size  document.PageSize
}

func (v *imagePageView) IsValid() bool           { return v.valid }
func (v *imagePageView) Size() document.PageSize { return v.size }
func (v *imagePageView) Close()                  { v.img = nil }

func (v *imagePageView) Image(scale float64, crop *document.BoundingBox) (image.Image, error) {
	if !v.valid || v.img == nil {
		return nil, nil
	}
	return renderView(v.img, v.size, scale, crop)
}

// TextCells is empty: raster images carry no programmatic text.
func (v *imagePageView) TextCells() ([]document.TextCell, error) {
	return nil, nil
}
