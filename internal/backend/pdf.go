package backend

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/disintegration/imaging"
	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// letter-size fallback in points when the page geometry is unknown.
const (
	defaultPDFWidth  = 612.0
	defaultPDFHeight = 792.0
)

// PDFBackend reads paginated PDF sources. Page raster content comes
// from pdfcpu's image extraction; programmatic text comes from the
// vector text layer when one exists.
type PDFBackend struct {
	name string
	path string
	temp bool

	valid     bool
	pageCount int

	mu        sync.Mutex
	extracted bool
	images    map[int][]image.Image

	reader *pdf.Reader
}

// NewPDF constructs a PDF backend for the source. Construction never
// fails for malformed content; the backend is simply marked invalid.
func NewPDF(src Source) (document.Backend, error) {
	path, temp, err := src.materialize("docpipe-*.pdf")
	if err != nil {
		return nil, err
	}
	b := &PDFBackend{name: src.Name, path: path, temp: temp}

	if err := api.ValidateFile(path, nil); err != nil {
		slog.Warn("pdf validation failed", "file", src.Name, "error", err)
		return b, nil
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		slog.Warn("pdf page count failed", "file", src.Name, "error", err)
		return b, nil
	}
	b.valid = true
	b.pageCount = n

	// The text layer is optional; scanned PDFs have none.
	if r, err := pdf.Open(path); err == nil {
		b.reader = r
	}
	return b, nil
}

// IsValid reports whether the source parsed as a PDF.
func (b *PDFBackend) IsValid() bool { return b.valid }

// PageCount returns the number of pages, zero for invalid sources.
func (b *PDFBackend) PageCount() int { return b.pageCount }

// LoadPage returns the view for the 1-based page number. Out-of-range
// pages and invalid backends yield an invalid view rather than an error.
func (b *PDFBackend) LoadPage(pageNo int) (document.PageView, error) {
	if !b.valid || pageNo < 1 || pageNo > b.pageCount {
		return &pdfPageView{}, nil
	}
	if err := b.extractImages(); err != nil {
		slog.Warn("pdf image extraction failed", "file", b.name, "error", err)
	}

	v := &pdfPageView{valid: true, pageNo: pageNo}
	b.mu.Lock()
	if imgs := b.images[pageNo]; len(imgs) > 0 {
		v.image = imgs[0]
		bounds := v.image.Bounds()
		v.size = document.PageSize{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	} else {
		v.size = document.PageSize{Width: defaultPDFWidth, Height: defaultPDFHeight}
	}
	b.mu.Unlock()

	v.cells = b.textCells(pageNo, v.size)
	return v, nil
}

// extractImages runs pdfcpu extraction once and caches the page images.
func (b *PDFBackend) extractImages() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.extracted {
		return nil
	}
	b.extracted = true
	b.images = make(map[int][]image.Image)

	tempDir, err := os.MkdirTemp("", "docpipe-pdf-extract-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := api.ExtractImagesFile(b.path, tempDir, nil, nil); err != nil {
		return fmt.Errorf("extract images: %w", err)
	}

	return filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		pageNum, err := pageFromExtractName(info.Name())
		if err != nil {
			return nil
		}
		img, err := loadImageFile(path)
		if err != nil {
			return nil
		}
		b.images[pageNum] = append(b.images[pageNum], img)
		return nil
	})
}

// textCells extracts the vector text of a page as cells with
// synthetic row geometry. The text layer carries no reliable positions,
// so rows are stacked full-width in reading order.
func (b *PDFBackend) textCells(pageNo int, size document.PageSize) []document.TextCell {
	if b.reader == nil || pageNo > b.reader.NumPage() {
		return nil
	}
	page := b.reader.Page(pageNo)
	if page.V.IsNull() {
		return nil
	}
	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return nil
	}

	rowHeight := size.Height / float64(len(rows)+1)
	cells := make([]document.TextCell, 0, len(rows))
	for i, row := range rows {
		var sb strings.Builder
		for _, text := range row.Content {
			sb.WriteString(text.S)
		}
		line := strings.TrimSpace(sb.String())
		if line == "" {
			continue
		}
		top := float64(i) * rowHeight
		cells = append(cells, document.TextCell{
			Index:      len(cells),
			Text:       line,
			Confidence: 1.0,
			BBox:       document.NewBoundingBox(0, top, size.Width, top+rowHeight),
		})
	}
	return cells
}

// Close removes the temporary file for in-memory sources.
func (b *PDFBackend) Close() error {
	if b.temp && b.path != "" {
		err := os.Remove(b.path)
		b.path = ""
		return err
	}
	return nil
}

type pdfPageView struct {
	valid  bool
	pageNo int
	size   document.PageSize
	image  image.Image
	cells  []document.TextCell
}

func (v *pdfPageView) IsValid() bool           { return v.valid }
func (v *pdfPageView) Size() document.PageSize { return v.size }
func (v *pdfPageView) Close()                  { v.image = nil }

func (v *pdfPageView) Image(scale float64, crop *document.BoundingBox) (image.Image, error) {
	if !v.valid || v.image == nil {
		return nil, nil
	}
	return renderView(v.image, v.size, scale, crop)
}

func (v *pdfPageView) TextCells() ([]document.TextCell, error) {
	return v.cells, nil
}

// renderView scales a page raster to scale*size and optionally crops
// the region given in page units.
func renderView(img image.Image, size document.PageSize, scale float64, crop *document.BoundingBox) (image.Image, error) {
	if scale <= 0 {
		scale = 1
	}
	w := int(size.Width*scale + 0.5)
	h := int(size.Height*scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	out := imaging.Resize(img, w, h, imaging.Lanczos)
	if crop != nil {
		rect := crop.Scaled(scale).ImageRect().Intersect(out.Bounds())
		if rect.Empty() {
			return nil, fmt.Errorf("crop region outside page bounds")
		}
		out = imaging.Crop(out, rect)
	}
	return out, nil
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: paths come from our own temp extraction dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	return img, err
}

// pageFromExtractName parses the page number out of pdfcpu extract
// names of the form page_<num>_image_<idx>.<ext>.
func pageFromExtractName(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, fmt.Errorf("not a page file: %s", filename)
	}
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("unexpected extract name: %s", filename)
	}
	return strconv.Atoi(parts[1])
}
