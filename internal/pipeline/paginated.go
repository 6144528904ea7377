package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/MeKo-Tech/docpipe/internal/ocr"
)

// PaginatedOptions configures the staged page pipeline.
type PaginatedOptions struct {
	OCR ocr.Config `json:"ocr"`

	DoTableStructure bool `json:"do_table_structure"`

	// GeneratePageImages keeps the rendered page images on the result;
	// GeneratePictureImages crops picture elements into document items.
	GeneratePageImages    bool    `json:"generate_page_images"`
	GeneratePictureImages bool    `json:"generate_picture_images"`
	ImagesScale           float64 `json:"images_scale"`

	DoCodeEnrichment        bool `json:"do_code_enrichment"`
	DoFormulaEnrichment     bool `json:"do_formula_enrichment"`
	DoPictureClassification bool `json:"do_picture_classification"`
	DoPictureDescription    bool `json:"do_picture_description"`
}

// Kind implements Options.
func (PaginatedOptions) Kind() string { return "paginated" }

// DefaultPaginatedOptions enables OCR and table structure and leaves
// every enrichment off.
func DefaultPaginatedOptions() PaginatedOptions {
	return PaginatedOptions{
		OCR:              ocr.DefaultConfig(),
		DoTableStructure: true,
		ImagesScale:      1.0,
	}
}

// PaginatedPipeline drives paginated backends through the fixed build
// pipe (preprocess, OCR, layout, table structure, page assembly),
// assembles the document, scores confidence and runs the enrichment
// pipe. One pipeline instance is shared across documents with the same
// options.
type PaginatedPipeline struct {
	opts       PaginatedOptions
	engine     *ocr.Engine
	buildPipe  []Stage
	enrichPipe []EnrichmentStage
}

// NewPaginated builds the pipeline. OCR engine construction failures
// are fatal here so a broken installation surfaces at dispatch, not per
// document.
func NewPaginated(opts Options) (Pipeline, error) {
	po, ok := opts.(PaginatedOptions)
	if !ok {
		return nil, fmt.Errorf("paginated pipeline: unsupported options kind %q", opts.Kind())
	}
	engine, err := ocr.NewEngine(po.OCR)
	if err != nil {
		return nil, fmt.Errorf("paginated pipeline: %w", err)
	}

	p := &PaginatedPipeline{opts: po, engine: engine}
	p.buildPipe = []Stage{preprocessStage{}, ocrStage{engine: engine}, layoutStage{}}
	if po.DoTableStructure {
		p.buildPipe = append(p.buildPipe, tableStage{})
	}
	p.buildPipe = append(p.buildPipe, assembleStage{})

	if po.DoCodeEnrichment {
		p.enrichPipe = append(p.enrichPipe, codeEnrichment{})
	}
	if po.DoFormulaEnrichment {
		p.enrichPipe = append(p.enrichPipe, formulaEnrichment{})
	}
	if po.DoPictureClassification {
		p.enrichPipe = append(p.enrichPipe, pictureClassifier{})
	}
	if po.DoPictureDescription {
		p.enrichPipe = append(p.enrichPipe, pictureDescription{})
	}
	return p, nil
}

// Name implements Pipeline.
func (p *PaginatedPipeline) Name() string { return "paginated" }

// SupportsBackend implements Pipeline.
func (p *PaginatedPipeline) SupportsBackend(b document.Backend) bool {
	_, ok := b.(document.PaginatedBackend)
	return ok
}

// Close releases the OCR engine and its recognizer pool.
func (p *PaginatedPipeline) Close() error {
	return p.engine.Close()
}

// Execute implements Pipeline.
func (p *PaginatedPipeline) Execute(in *document.InputDocument, raiseOnError bool) (*document.ConversionResult, error) {
	res := document.NewConversionResult(in)
	stop := res.RecordStage("pipeline_total")
	defer stop()

	backend := in.Paginated()
	switch {
	case !in.Valid:
		res.AddError(document.ComponentBackend, "paginated", "input %s failed backend validation", in.File)
	case backend == nil:
		res.AddError(document.ComponentBackend, "paginated", "backend for %s is not paginated", in.File)
	default:
		p.initPages(res, backend)
		p.runBuildPipe(res)
		p.assembleDocument(res)
		res.Confidence.Aggregate()
		p.runEnrichPipe(res)
	}
	p.finalize(res)

	if raiseOnError && !res.Status.Usable() {
		return res, document.NewConversionError(in.File, "conversion failed with %d error(s)", len(res.Errors))
	}
	return res, nil
}

// initPages acquires a page view for every page inside the configured
// page range. A page whose view cannot load still joins the run with a
// nil view so downstream stages see a stable page list.
func (p *PaginatedPipeline) initPages(res *document.ConversionResult, backend document.PaginatedBackend) {
	stop := res.RecordStage("page_init")
	defer stop()

	limits := res.Input.Limits
	count := backend.PageCount()
	for pageNo := 1; pageNo <= count; pageNo++ {
		if !limits.PageRange.Contains(pageNo) {
			continue
		}
		if limits.MaxPages > 0 && len(res.Pages) >= limits.MaxPages {
			break
		}
		page := &document.Page{PageNo: pageNo}
		view, err := backend.LoadPage(pageNo)
		if err != nil {
			res.AddError(document.ComponentBackend, "page_init", "load page %d: %v", pageNo, err)
		} else {
			page.View = view
			if view.IsValid() {
				page.Size = view.Size()
			}
		}
		res.Pages = append(res.Pages, page)
	}
}

// runBuildPipe applies the fixed stage sequence. A stage error is
// recorded and the remaining stages still run; every stage preserves
// page count and order.
func (p *PaginatedPipeline) runBuildPipe(res *document.ConversionResult) {
	for _, stage := range p.buildPipe {
		pages, err := stage.Process(res, res.Pages)
		if err != nil {
			slog.Warn("pipeline stage failed",
				"file", res.Input.File, "stage", stage.Name(), "error", err)
			res.AddError(document.ComponentModel, stage.Name(), "%v", err)
		}
		if len(pages) == len(res.Pages) {
			res.Pages = pages
		}
	}
}

// assembleDocument concatenates the per-page assembled units, resolves
// reading order into a structured document and materializes requested
// images. Page views are released here.
func (p *PaginatedPipeline) assembleDocument(res *document.ConversionResult) {
	stop := res.RecordStage("doc_assemble")
	defer stop()

	for _, page := range res.Pages {
		if page.Assembled == nil {
			continue
		}
		res.Assembled.Elements = append(res.Assembled.Elements, page.Assembled.Elements...)
		res.Assembled.Headers = append(res.Assembled.Headers, page.Assembled.Headers...)
		res.Assembled.Body = append(res.Assembled.Body, page.Assembled.Body...)
	}

	name := filepath.Base(res.Input.File)
	doc := document.NewDocument(name)
	sizes := make(map[int]document.PageSize, len(res.Pages))
	for _, page := range res.Pages {
		sizes[page.PageNo] = page.Size
		doc.Pages[page.PageNo] = &document.DocPage{PageNo: page.PageNo, Size: page.Size}
	}
	for _, el := range resolveReadingOrder(res.Assembled.Body, sizes) {
		doc.AddItem(&document.Item{
			Label:  el.Label,
			Text:   el.Text,
			PageNo: el.PageNo,
			BBox:   el.BBox,
			Table:  el.Table,
		})
	}
	res.Document = doc

	p.materializeImages(res)
	for _, page := range res.Pages {
		page.ReleaseView()
	}
}

// materializeImages renders retained page images and picture crops at
// the configured scale while the backend views are still open.
func (p *PaginatedPipeline) materializeImages(res *document.ConversionResult) {
	scale := p.opts.ImagesScale
	if scale <= 0 {
		scale = 1.0
	}
	views := make(map[int]document.PageView, len(res.Pages))
	for _, page := range res.Pages {
		if !page.HasValidView() {
			continue
		}
		views[page.PageNo] = page.View
		if p.opts.GeneratePageImages {
			img, err := page.View.Image(scale, nil)
			if err != nil {
				res.AddError(document.ComponentBackend, "doc_assemble", "render page %d image: %v", page.PageNo, err)
				continue
			}
			page.Image = img
			page.ImageScale = scale
		}
	}
	if !p.opts.GeneratePictureImages || res.Document == nil {
		return
	}
	for _, item := range res.Document.Items {
		if item.Label != document.LabelPicture {
			continue
		}
		view, ok := views[item.PageNo]
		if !ok {
			continue
		}
		crop := item.BBox
		img, err := view.Image(scale, &crop)
		if err != nil || img == nil {
			continue
		}
		item.Image = &document.ImageRef{Image: img, DPI: int(72 * scale)}
	}
}

func (p *PaginatedPipeline) runEnrichPipe(res *document.ConversionResult) {
	if res.Document == nil {
		return
	}
	for _, stage := range p.enrichPipe {
		stop := res.RecordStage(stage.Name())
		if err := stage.Enrich(res.Document); err != nil {
			slog.Warn("enrichment stage failed",
				"file", res.Input.File, "stage", stage.Name(), "error", err)
			res.AddError(document.ComponentModel, stage.Name(), "%v", err)
		}
		stop()
	}
}

// finalize settles the terminal status: FAILURE only when no structured
// output exists, PARTIAL_SUCCESS when output exists alongside errors.
func (p *PaginatedPipeline) finalize(res *document.ConversionResult) {
	switch {
	case res.Document == nil || len(res.Pages) == 0:
		res.Status = document.StatusFailure
	case len(res.Errors) > 0:
		res.Status = document.StatusPartialSuccess
	default:
		res.Status = document.StatusSuccess
	}
}

// ocrStage adapts the OCR engine to the stage interface.
type ocrStage struct {
	engine *ocr.Engine
}

func (ocrStage) Name() string { return "ocr" }

func (s ocrStage) Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error) {
	for _, page := range pages {
		s.engine.ProcessPage(res, page)
	}
	return pages, nil
}
