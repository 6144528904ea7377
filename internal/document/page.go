package document

import "image"

// TextCell is a single positioned text fragment on a page, either
// extracted programmatically from the backend or produced by OCR.
type TextCell struct {
	Index      int         `json:"index"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	FromOCR    bool        `json:"from_ocr"`
	BBox       BoundingBox `json:"bbox"`
}

// ElementLabel classifies a layout cluster or document item.
type ElementLabel string

const (
	LabelText          ElementLabel = "text"
	LabelSectionHeader ElementLabel = "section_header"
	LabelTitle         ElementLabel = "title"
	LabelListItem      ElementLabel = "list_item"
	LabelTable         ElementLabel = "table"
	LabelPicture       ElementLabel = "picture"
	LabelCode          ElementLabel = "code"
	LabelFormula       ElementLabel = "formula"
	LabelPageHeader    ElementLabel = "page_header"
	LabelPageFooter    ElementLabel = "page_footer"
)

// Cluster groups text cells into one layout region.
type Cluster struct {
	ID         int          `json:"id"`
	Label      ElementLabel `json:"label"`
	BBox       BoundingBox  `json:"bbox"`
	Cells      []TextCell   `json:"cells"`
	Confidence float64      `json:"confidence"`
}

// Text concatenates the cluster's cell texts in order.
func (c *Cluster) Text() string {
	var out string
	for i, cell := range c.Cells {
		if i > 0 {
			out += " "
		}
		out += cell.Text
	}
	return out
}

// TableStructure is the recovered grid of a table cluster.
type TableStructure struct {
	ClusterID  int        `json:"cluster_id"`
	NumRows    int        `json:"num_rows"`
	NumCols    int        `json:"num_cols"`
	Grid       [][]string `json:"grid"`
	Confidence float64    `json:"confidence"`
}

// Element is one assembled page element, produced by page assembly from
// a layout cluster.
type Element struct {
	Label  ElementLabel    `json:"label"`
	PageNo int             `json:"page_no"`
	BBox   BoundingBox     `json:"bbox"`
	Text   string          `json:"text"`
	Table  *TableStructure `json:"table,omitempty"`
}

// AssembledUnit holds the assembled elements of a page or, after
// document assembly, of the whole document.
type AssembledUnit struct {
	Elements []Element `json:"elements"`
	Headers  []Element `json:"headers"`
	Body     []Element `json:"body"`
}

// Page is the per-page working record flowing through the build
// pipeline. It is owned by a single conversion run and mutated in place
// by each stage.
type Page struct {
	PageNo int      `json:"page_no"`
	Size   PageSize `json:"size"`

	// View is the backend's page-level handle. A nil or invalid view
	// passes through all stages unchanged.
	View PageView `json:"-"`

	// Image is the rendered page image, populated by preprocessing and
	// dropped after assembly unless image retention is requested.
	Image      image.Image `json:"-"`
	ImageScale float64     `json:"image_scale,omitempty"`

	Cells     []TextCell       `json:"cells,omitempty"`
	Clusters  []Cluster        `json:"clusters,omitempty"`
	Tables    []TableStructure `json:"tables,omitempty"`
	Assembled *AssembledUnit   `json:"assembled,omitempty"`
}

// HasValidView reports whether the page carries a usable backend view.
func (p *Page) HasValidView() bool {
	return p.View != nil && p.View.IsValid()
}

// ReleaseView closes and clears the backend page view.
func (p *Page) ReleaseView() {
	if p.View != nil {
		p.View.Close()
		p.View = nil
	}
}
