package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// SimpleOptions configures the declarative pipeline. Markup formats
// carry their structure already, so only enrichment is configurable.
type SimpleOptions struct {
	DoCodeEnrichment        bool `json:"do_code_enrichment"`
	DoFormulaEnrichment     bool `json:"do_formula_enrichment"`
	DoPictureClassification bool `json:"do_picture_classification"`
	DoPictureDescription    bool `json:"do_picture_description"`
}

// Kind implements Options.
func (SimpleOptions) Kind() string { return "simple" }

// DefaultSimpleOptions leaves all enrichment off.
func DefaultSimpleOptions() SimpleOptions { return SimpleOptions{} }

// SimplePipeline converts declarative backends: the backend builds the
// structured document in one step and only the enrichment pipe runs on
// top.
type SimplePipeline struct {
	opts       SimpleOptions
	enrichPipe []EnrichmentStage
}

// NewSimple builds the declarative pipeline.
func NewSimple(opts Options) (Pipeline, error) {
	so, ok := opts.(SimpleOptions)
	if !ok {
		return nil, fmt.Errorf("simple pipeline: unsupported options kind %q", opts.Kind())
	}
	p := &SimplePipeline{opts: so}
	if so.DoCodeEnrichment {
		p.enrichPipe = append(p.enrichPipe, codeEnrichment{})
	}
	if so.DoFormulaEnrichment {
		p.enrichPipe = append(p.enrichPipe, formulaEnrichment{})
	}
	if so.DoPictureClassification {
		p.enrichPipe = append(p.enrichPipe, pictureClassifier{})
	}
	if so.DoPictureDescription {
		p.enrichPipe = append(p.enrichPipe, pictureDescription{})
	}
	return p, nil
}

// Name implements Pipeline.
func (p *SimplePipeline) Name() string { return "simple" }

// SupportsBackend implements Pipeline.
func (p *SimplePipeline) SupportsBackend(b document.Backend) bool {
	_, ok := b.(document.DeclarativeBackend)
	return ok
}

// Close implements Pipeline; the simple pipeline holds no resources.
func (p *SimplePipeline) Close() error { return nil }

// Execute implements Pipeline.
func (p *SimplePipeline) Execute(in *document.InputDocument, raiseOnError bool) (*document.ConversionResult, error) {
	res := document.NewConversionResult(in)
	stop := res.RecordStage("pipeline_total")
	defer stop()

	backend := in.Declarative()
	switch {
	case !in.Valid:
		res.AddError(document.ComponentBackend, "simple", "input %s failed backend validation", in.File)
	case backend == nil:
		res.AddError(document.ComponentBackend, "simple", "backend for %s is not declarative", in.File)
	default:
		doc, err := backend.Convert()
		if err != nil {
			res.AddError(document.ComponentBackend, "simple", "convert %s: %v", in.File, err)
		} else {
			res.Document = doc
		}
	}

	if res.Document != nil {
		for _, stage := range p.enrichPipe {
			if err := stage.Enrich(res.Document); err != nil {
				slog.Warn("enrichment stage failed",
					"file", in.File, "stage", stage.Name(), "error", err)
				res.AddError(document.ComponentModel, stage.Name(), "%v", err)
			}
		}
	}

	switch {
	case res.Document == nil:
		res.Status = document.StatusFailure
	case len(res.Errors) > 0:
		res.Status = document.StatusPartialSuccess
	default:
		res.Status = document.StatusSuccess
	}

	if raiseOnError && !res.Status.Usable() {
		return res, document.NewConversionError(in.File, "conversion failed with %d error(s)", len(res.Errors))
	}
	return res, nil
}
