// Package pipeline contains the conversion pipelines that turn an input
// document into a structured Document. Paginated inputs run through a
// fixed sequence of page stages followed by document assembly and
// enrichment; declarative inputs convert in a single step.
package pipeline

import (
	"github.com/MeKo-Tech/docpipe/internal/document"
)

// Options configures a pipeline implementation. Kind names the
// implementation the options belong to; the converter serializes the
// whole value to key its pipeline cache, so every field that changes
// behavior must be exported.
type Options interface {
	Kind() string
}

// Pipeline converts one input document into a conversion result.
// Implementations are reused across documents and must be safe to call
// from the worker that owns the conversion.
type Pipeline interface {
	// Name identifies the implementation, e.g. "paginated" or "simple".
	Name() string

	// Execute runs the full conversion. raiseOnError selects strict
	// semantics: a failed document returns an error instead of a
	// FAILURE-status result.
	Execute(in *document.InputDocument, raiseOnError bool) (*document.ConversionResult, error)

	// SupportsBackend reports whether the pipeline can drive the backend.
	SupportsBackend(b document.Backend) bool

	// Close releases pipeline-owned resources, e.g. recognizer handles.
	Close() error
}

// Stage is one step of the page build pipe. A stage receives the run's
// pages in order, mutates them in place and returns the same pages in
// the same order.
type Stage interface {
	Name() string
	Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error)
}

// EnrichmentStage post-processes the assembled document's items.
// Stages are independent and run in order; a disabled stage is simply
// absent from the pipe.
type EnrichmentStage interface {
	Name() string
	Enrich(doc *document.Document) error
}
