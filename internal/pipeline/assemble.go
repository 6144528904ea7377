package pipeline

import (
	"github.com/MeKo-Tech/docpipe/internal/document"
)

// assembleStage turns each page's clusters and table structures into an
// ordered AssembledUnit. Furniture (page headers and footers) is kept
// separate from the body so document assembly can skip it.
type assembleStage struct{}

func (assembleStage) Name() string { return "page_assemble" }

func (assembleStage) Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error) {
	for _, page := range pages {
		stop := res.RecordStage("page_assemble")
		if !page.HasValidView() {
			stop()
			continue
		}
		unit := &document.AssembledUnit{}
		tables := make(map[int]*document.TableStructure, len(page.Tables))
		for i := range page.Tables {
			tables[page.Tables[i].ClusterID] = &page.Tables[i]
		}
		for _, cl := range page.Clusters {
			el := document.Element{
				Label:  cl.Label,
				PageNo: page.PageNo,
				BBox:   cl.BBox,
				Text:   cl.Text(),
				Table:  tables[cl.ID],
			}
			unit.Elements = append(unit.Elements, el)
			switch cl.Label {
			case document.LabelPageHeader, document.LabelPageFooter:
				unit.Headers = append(unit.Headers, el)
			default:
				unit.Body = append(unit.Body, el)
			}
		}
		page.Assembled = unit
		stop()
	}
	return pages, nil
}
