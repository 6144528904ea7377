package document

import "image"

// Backend is the minimum capability every format backend provides.
// IsValid must be safe to call before any other method; an invalid
// backend returns degraded results instead of failing.
type Backend interface {
	IsValid() bool
	Close() error
}

// PageView is the backend's handle onto a single loaded page.
type PageView interface {
	IsValid() bool

	// Size returns the page extent in page units at scale 1.
	Size() PageSize

	// Image renders the page (or the crop region, in page units) at the
	// given scale factor. Invalid views return a nil image and no error.
	Image(scale float64, crop *BoundingBox) (image.Image, error)

	// TextCells returns the programmatic text cells of the page, if the
	// format carries any. OCR-only formats return an empty slice.
	TextCells() ([]TextCell, error)

	Close()
}

// PaginatedBackend loads and renders individual pages.
type PaginatedBackend interface {
	Backend
	PageCount() int
	LoadPage(pageNo int) (PageView, error)
}

// DeclarativeBackend converts the whole source in one step, used by
// non-paginated formats where no perception stages apply.
type DeclarativeBackend interface {
	Backend
	Convert() (*Document, error)
}
