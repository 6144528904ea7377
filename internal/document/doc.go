package document

import (
	"fmt"
	"image"
	"strings"
)

// ImageRef attaches a rendered image to a document page or item.
type ImageRef struct {
	Image image.Image `json:"-"`
	DPI   int         `json:"dpi"`
}

// Item is one element of the final structured document, in reading
// order.
type Item struct {
	Ref    string          `json:"ref"`
	Label  ElementLabel    `json:"label"`
	Text   string          `json:"text,omitempty"`
	PageNo int             `json:"page_no"`
	BBox   BoundingBox     `json:"bbox"`
	Table  *TableStructure `json:"table,omitempty"`
	Image  *ImageRef       `json:"image,omitempty"`

	// Enrichment annotations.
	Classification string `json:"classification,omitempty"`
	Description    string `json:"description,omitempty"`
	CodeLanguage   string `json:"code_language,omitempty"`
}

// DocPage is the per-page entry of the structured document.
type DocPage struct {
	PageNo int       `json:"page_no"`
	Size   PageSize  `json:"size"`
	Image  *ImageRef `json:"image,omitempty"`
}

// Document is the unified structured representation produced by a
// conversion.
type Document struct {
	Name  string           `json:"name"`
	Items []*Item          `json:"items"`
	Pages map[int]*DocPage `json:"pages,omitempty"`
}

// NewDocument creates an empty structured document.
func NewDocument(name string) *Document {
	return &Document{Name: name, Pages: make(map[int]*DocPage)}
}

// AddItem appends an item and assigns its self reference.
func (d *Document) AddItem(it *Item) *Item {
	it.Ref = fmt.Sprintf("#/items/%d", len(d.Items))
	d.Items = append(d.Items, it)
	return it
}

// ExportToText renders the document as plain text, one item per line.
func (d *Document) ExportToText() string {
	var sb strings.Builder
	for _, it := range d.Items {
		if it.Text == "" && it.Table == nil {
			continue
		}
		if it.Table != nil {
			for _, row := range it.Table.Grid {
				sb.WriteString(strings.Join(row, "\t"))
				sb.WriteByte('\n')
			}
			continue
		}
		sb.WriteString(it.Text)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ExportToMarkdown renders the document as markdown.
func (d *Document) ExportToMarkdown() string {
	var sb strings.Builder
	for _, it := range d.Items {
		switch it.Label {
		case LabelTitle:
			sb.WriteString("# " + it.Text + "\n\n")
		case LabelSectionHeader, LabelPageHeader:
			sb.WriteString("## " + it.Text + "\n\n")
		case LabelListItem:
			sb.WriteString("- " + it.Text + "\n")
		case LabelCode:
			sb.WriteString("```" + it.CodeLanguage + "\n" + it.Text + "\n```\n\n")
		case LabelTable:
			sb.WriteString(tableToMarkdown(it.Table))
		case LabelPicture:
			alt := it.Description
			if alt == "" {
				alt = "image"
			}
			sb.WriteString("![" + alt + "]()\n\n")
		default:
			if it.Text != "" {
				sb.WriteString(it.Text + "\n\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func tableToMarkdown(t *TableStructure) string {
	if t == nil || len(t.Grid) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, row := range t.Grid {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", len(row)) + "\n")
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
