package document

import (
	"math"

	"github.com/MeKo-Tech/docpipe/internal/format"
)

// PageRange restricts which pages of a paginated document are
// processed. Pages are 1-based and the range is inclusive.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FullPageRange covers every page of any document.
func FullPageRange() PageRange {
	return PageRange{Start: 1, End: math.MaxInt32}
}

// Contains reports whether the 1-based page number falls in the range.
func (r PageRange) Contains(pageNo int) bool {
	return pageNo >= r.Start && pageNo <= r.End
}

// Limits bounds the size of documents accepted for conversion.
type Limits struct {
	MaxPages    int
	MaxFileSize int64
	PageRange   PageRange
}

// DefaultLimits places no practical restriction on the input.
func DefaultLimits() Limits {
	return Limits{
		MaxPages:    math.MaxInt32,
		MaxFileSize: math.MaxInt64,
		PageRange:   FullPageRange(),
	}
}

// InputDocument identifies one resolved source: its name, detected
// format, backend handle and validity. It is created once at dispatch
// time and lives until the conversion result is finalized.
type InputDocument struct {
	File     string
	Format   format.Format
	FileSize int64
	Limits   Limits

	// Valid is false when the backend could not be constructed or a
	// document limit was exceeded.
	Valid     bool
	Backend   Backend
	PageCount int
}

// Paginated returns the backend's paginated capability, or nil when the
// backend does not support page access.
func (in *InputDocument) Paginated() PaginatedBackend {
	if b, ok := in.Backend.(PaginatedBackend); ok {
		return b
	}
	return nil
}

// Declarative returns the backend's declarative capability, or nil.
func (in *InputDocument) Declarative() DeclarativeBackend {
	if b, ok := in.Backend.(DeclarativeBackend); ok {
		return b
	}
	return nil
}

// Close releases the backend.
func (in *InputDocument) Close() {
	if in.Backend != nil {
		_ = in.Backend.Close()
	}
}
