package ocr

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/otiai10/gosseract/v2"
)

// DefaultScale is the upscale factor regions are rendered at before
// recognition (3x of the 72 dpi base, i.e. 216 dpi).
const DefaultScale = 3.0

// Enable-time failures name the dependency they correspond to.
const (
	installErrMsg = "tesseract is not available: gosseract could not reach a tesseract installation; " +
		"install the tesseract library and headers"
	missingLangsErrMsg = "tesseract has no language data: ensure TESSDATA_PREFIX points at a tessdata " +
		"directory with at least one recognition profile"
)

// Config controls the OCR resolution engine.
type Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Languages holds tesseract language identifiers. The single entry
	// "auto" selects per-region script resolution instead.
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`

	// DataPath overrides the tessdata directory.
	DataPath string `mapstructure:"data_path" yaml:"data_path" json:"data_path"`

	// FullPage forces whole-page OCR even when the backend supplies
	// programmatic text.
	FullPage bool `mapstructure:"full_page" yaml:"full_page" json:"full_page"`

	// Scale is the region upscale factor; zero means DefaultScale.
	Scale float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// DefaultConfig enables automatic script resolution at the default
// upscale factor.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Languages: []string{"auto"},
		Scale:     DefaultScale,
	}
}

// Engine resolves a recognition profile and orientation per text region
// and produces positioned text cells in page coordinates. One engine is
// owned by one pipeline instance; recognizer profiles are pooled per
// detected script for the engine's lifetime.
type Engine struct {
	cfg  Config
	auto bool

	reader       LineRecognizer
	osd          OSDDetector
	available    map[string]bool
	scriptPrefix string

	mu            sync.Mutex
	scriptReaders map[string]LineRecognizer

	// newRecognizer builds profile-specific recognizers; swapped in tests.
	newRecognizer func(langs []string, dataPath string) (LineRecognizer, error)
}

// NewEngine constructs the engine. When cfg.Enabled is false the engine
// is a no-op. With OCR enabled, a missing tesseract installation or an
// empty language inventory is fatal.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}
	e := &Engine{
		cfg:           cfg,
		scriptReaders: make(map[string]LineRecognizer),
		newRecognizer: func(langs []string, dataPath string) (LineRecognizer, error) {
			return NewTesseractRecognizer(langs, dataPath)
		},
	}
	if !cfg.Enabled {
		return e, nil
	}

	installed, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", installErrMsg, err)
	}
	if len(installed) == 0 {
		return nil, errors.New(missingLangsErrMsg)
	}
	e.available = make(map[string]bool, len(installed))
	for _, l := range installed {
		e.available[l] = true
		if strings.HasPrefix(l, "script/") {
			e.scriptPrefix = "script/"
		}
	}

	langs := make([]string, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		c := CanonicalTesseractLang(l)
		if c == "auto" {
			e.auto = true
			continue
		}
		langs = append(langs, c)
	}

	if e.auto || len(langs) == 0 {
		e.auto = true
		e.reader, err = e.newRecognizer(nil, cfg.DataPath)
	} else {
		e.reader, err = e.newRecognizer(langs, cfg.DataPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", installErrMsg, err)
	}

	osd, err := NewCompositeOSD(cfg.DataPath)
	if err != nil {
		_ = e.reader.Close()
		return nil, fmt.Errorf("%s: %w", installErrMsg, err)
	}
	e.osd = osd
	return e, nil
}

// Enabled reports whether the engine will process pages.
func (e *Engine) Enabled() bool { return e.cfg.Enabled && e.reader != nil }

// Close releases the default recognizer, every pooled script recognizer
// and the OSD detector.
func (e *Engine) Close() error {
	var firstErr error
	e.mu.Lock()
	for script, r := range e.scriptReaders {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(e.scriptReaders, script)
	}
	e.mu.Unlock()
	if e.reader != nil {
		if err := e.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.reader = nil
	}
	if e.osd != nil {
		if err := e.osd.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.osd = nil
	}
	return firstErr
}

// ProcessPage runs region resolution and recognition over one page.
// Failures inside a region are logged and skipped; they never abort the
// document.
func (e *Engine) ProcessPage(res *document.ConversionResult, page *document.Page) {
	if !e.Enabled() || !page.HasValidView() {
		return
	}
	stop := res.RecordStage("ocr")
	defer stop()

	var all []document.TextCell
	for i, rect := range e.regions(page) {
		cells, err := e.processRegion(page, rect)
		if err != nil {
			slog.Warn("ocr region failed",
				"file", res.Input.File, "page", page.PageNo, "region", i, "error", err)
			res.AddError(document.ComponentModel, "ocr",
				"page %d region %d: %v", page.PageNo, i, err)
			continue
		}
		all = append(all, cells...)
	}

	page.Cells = append(page.Cells, all...)
	for i := range page.Cells {
		page.Cells[i].Index = i
	}
	if len(all) > 0 {
		var sum float64
		for _, c := range all {
			sum += c.Confidence
		}
		res.PageConf(page.PageNo).OCRScore = document.Score(sum / float64(len(all)))
	}
}

// regions selects the OCR rectangles for a page: the full page when
// whole-page OCR is configured or the backend supplied no programmatic
// text, nothing otherwise.
func (e *Engine) regions(page *document.Page) []document.BoundingBox {
	if e.cfg.FullPage || len(page.Cells) == 0 {
		return []document.BoundingBox{page.Size.Rect()}
	}
	return nil
}

// processRegion resolves orientation and script for one region and
// returns its recognized cells in page coordinates.
func (e *Engine) processRegion(page *document.Page, rect document.BoundingBox) ([]document.TextCell, error) {
	// Zero-area rectangles are invalid and skipped without error.
	if rect.Area() == 0 {
		return nil, nil
	}
	img, err := page.View.Image(e.cfg.Scale, &rect)
	if err != nil {
		return nil, fmt.Errorf("render region: %w", err)
	}
	if img == nil {
		return nil, nil
	}

	rotation := 0
	osdRes, osdErr := e.osd.Detect(img)
	if osdErr != nil {
		slog.Debug("osd failed for region", "page", page.PageNo, "error", osdErr)
		// In automatic mode no text beats garbage from an unknown
		// orientation; with fixed languages recognition may still work.
		if e.auto {
			return nil, nil
		}
	} else {
		rotation = normalizeRotation(osdRes.Rotation)
		if rotation != 0 {
			img = rotateExpand(img, rotation)
		}
	}

	reader := e.reader
	if e.auto && osdRes != nil {
		reader = e.readerForScript(osdRes.Script)
	}

	lines, err := reader.RecognizeLines(img)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	bounds := img.Bounds()
	cells := make([]document.TextCell, 0, len(lines))
	for idx, line := range lines {
		// Empty lines are kept: geometry and confidence stay accurate and
		// callers decide what to discard.
		cells = append(cells, document.TextCell{
			Index:      idx,
			Text:       line.Text,
			Confidence: line.Confidence,
			FromOCR:    true,
			BBox:       mapBoxToPage(line.Box, bounds.Dx(), bounds.Dy(), rotation, e.cfg.Scale, rect),
		})
	}
	return cells, nil
}

// readerForScript returns the pooled recognizer for a detected script,
// creating it on first use. Scripts with no installed profile fall back
// to the default recognizer with a warning.
func (e *Engine) readerForScript(script string) LineRecognizer {
	script = mapScript(script)
	lang := e.scriptPrefix + script
	if !e.available[lang] {
		slog.Warn("detected script has no installed recognition profile, using default",
			"script", script, "lang", lang)
		return e.reader
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.scriptReaders[script]; ok {
		return r
	}
	r, err := e.newRecognizer([]string{lang}, e.cfg.DataPath)
	if err != nil {
		slog.Warn("recognizer init failed for script, using default",
			"script", script, "error", err)
		return e.reader
	}
	e.scriptReaders[script] = r
	return r
}
