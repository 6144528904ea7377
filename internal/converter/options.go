package converter

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/docpipe/internal/backend"
	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/MeKo-Tech/docpipe/internal/pipeline"
)

// ErrNoDefaultOption marks a format the converter has no built-in
// processing route for.
var ErrNoDefaultOption = errors.New("no default pipeline option for format")

// FormatOption binds one input format to the pipeline and backend that
// process it. The converter caches pipelines by (PipelineName, hashed
// Options); two formats sharing both share one pipeline instance.
type FormatOption struct {
	// PipelineName names the pipeline implementation for cache keying.
	PipelineName string

	// New constructs the pipeline from its options.
	New func(opts pipeline.Options) (pipeline.Pipeline, error)

	// Backend constructs the format's backend from a raw source.
	Backend func(src backend.Source) (document.Backend, error)

	// Options is serialized to derive the cache key; it must be the
	// concrete options type New expects.
	Options pipeline.Options
}

// DefaultBackend returns the built-in backend factory for a format, or
// nil for an unknown format.
func DefaultBackend(f format.Format) func(src backend.Source) (document.Backend, error) {
	switch f {
	case format.PDF:
		return backend.NewPDF
	case format.Image:
		return backend.NewImage
	case format.HTML:
		return backend.NewHTML
	case format.Markdown:
		return backend.NewMarkdown
	case format.CSV:
		return backend.NewCSV
	default:
		return nil
	}
}

// defaultOption returns the built-in processing route for a format.
func defaultOption(f format.Format) (FormatOption, error) {
	switch f {
	case format.PDF:
		return FormatOption{
			PipelineName: "paginated",
			New:          pipeline.NewPaginated,
			Backend:      backend.NewPDF,
			Options:      pipeline.DefaultPaginatedOptions(),
		}, nil
	case format.Image:
		return FormatOption{
			PipelineName: "paginated",
			New:          pipeline.NewPaginated,
			Backend:      backend.NewImage,
			Options:      pipeline.DefaultPaginatedOptions(),
		}, nil
	case format.HTML:
		return FormatOption{
			PipelineName: "simple",
			New:          pipeline.NewSimple,
			Backend:      backend.NewHTML,
			Options:      pipeline.DefaultSimpleOptions(),
		}, nil
	case format.Markdown:
		return FormatOption{
			PipelineName: "simple",
			New:          pipeline.NewSimple,
			Backend:      backend.NewMarkdown,
			Options:      pipeline.DefaultSimpleOptions(),
		}, nil
	case format.CSV:
		return FormatOption{
			PipelineName: "simple",
			New:          pipeline.NewSimple,
			Backend:      backend.NewCSV,
			Options:      pipeline.DefaultSimpleOptions(),
		}, nil
	default:
		return FormatOption{}, fmt.Errorf("%w: %s", ErrNoDefaultOption, f)
	}
}
