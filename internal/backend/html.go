package backend

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// HTMLBackend converts markup sources declaratively: no pages, no
// perception stages, just a structural walk of the sanitized DOM.
type HTMLBackend struct {
	name  string
	valid bool
	doc   *goquery.Document
}

// NewHTML sanitizes and parses the source markup.
func NewHTML(src Source) (document.Backend, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	b := &HTMLBackend{name: src.Name}

	// Strip scripts, styles and event handlers before structural parsing.
	clean := bluemonday.UGCPolicy().SanitizeBytes(data)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		slog.Warn("html parse failed", "file", src.Name, "error", err)
		return b, nil
	}
	b.valid = true
	b.doc = doc
	return b, nil
}

// IsValid reports whether the markup parsed.
func (b *HTMLBackend) IsValid() bool { return b.valid }

// Close releases the parsed DOM.
func (b *HTMLBackend) Close() error {
	b.doc = nil
	return nil
}

// Convert walks the DOM and emits document items in source order.
func (b *HTMLBackend) Convert() (*document.Document, error) {
	if !b.valid || b.doc == nil {
		return nil, fmt.Errorf("html backend for %s is not valid", b.name)
	}
	doc := document.NewDocument(b.name)

	b.doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, table, img, blockquote").
		Each(func(_ int, sel *goquery.Selection) {
			switch goquery.NodeName(sel) {
			case "h1":
				addTextItem(doc, document.LabelTitle, sel.Text())
			case "h2", "h3", "h4", "h5", "h6":
				addTextItem(doc, document.LabelSectionHeader, sel.Text())
			case "li":
				addTextItem(doc, document.LabelListItem, sel.Text())
			case "pre":
				addTextItem(doc, document.LabelCode, sel.Text())
			case "table":
				if t := tableFromSelection(sel); t != nil {
					doc.AddItem(&document.Item{Label: document.LabelTable, Table: t})
				}
			case "img":
				alt, _ := sel.Attr("alt")
				doc.AddItem(&document.Item{Label: document.LabelPicture, Description: alt})
			default:
				// p and blockquote: skip paragraphs living inside list items,
				// those are already covered by the li walk.
				if sel.ParentsFiltered("li").Length() == 0 {
					addTextItem(doc, document.LabelText, sel.Text())
				}
			}
		})
	return doc, nil
}

func addTextItem(doc *document.Document, label document.ElementLabel, text string) {
	text = strings.TrimSpace(collapseWhitespace(text))
	if text == "" {
		return
	}
	doc.AddItem(&document.Item{Label: label, Text: text})
}

func tableFromSelection(sel *goquery.Selection) *document.TableStructure {
	var grid [][]string
	cols := 0
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(collapseWhitespace(cell.Text())))
		})
		if len(row) > 0 {
			grid = append(grid, row)
			if len(row) > cols {
				cols = len(row)
			}
		}
	})
	if len(grid) == 0 {
		return nil
	}
	return &document.TableStructure{NumRows: len(grid), NumCols: cols, Grid: grid, Confidence: 1.0}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
