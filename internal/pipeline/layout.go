package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// layoutStage groups text cells into labeled layout clusters. Cells are
// sorted into reading order, split into blocks on vertical whitespace
// gaps, and each block is labeled from its geometry and text shape.
type layoutStage struct{}

func (layoutStage) Name() string { return "layout" }

func (layoutStage) Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error) {
	for _, page := range pages {
		stop := res.RecordStage("layout")
		if !page.HasValidView() || len(page.Cells) == 0 {
			stop()
			continue
		}
		page.Clusters = clusterCells(page)
		if len(page.Clusters) > 0 {
			var sum float64
			for _, c := range page.Clusters {
				sum += c.Confidence
			}
			res.PageConf(page.PageNo).LayoutScore = document.Score(sum / float64(len(page.Clusters)))
		}
		stop()
	}
	return pages, nil
}

// clusterCells splits a page's cells into blocks separated by vertical
// gaps larger than 1.4x the median line height.
func clusterCells(page *document.Page) []document.Cluster {
	cells := make([]document.TextCell, len(page.Cells))
	copy(cells, page.Cells)
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].BBox.T != cells[j].BBox.T {
			return cells[i].BBox.T < cells[j].BBox.T
		}
		return cells[i].BBox.L < cells[j].BBox.L
	})

	gap := 1.4 * medianHeight(cells)
	var clusters []document.Cluster
	var block []document.TextCell
	flush := func() {
		if len(block) == 0 {
			return
		}
		clusters = append(clusters, buildCluster(len(clusters), block, page))
		block = nil
	}
	for i, cell := range cells {
		if i > 0 && cell.BBox.T-block[len(block)-1].BBox.B > gap {
			flush()
		}
		block = append(block, cell)
	}
	flush()
	return clusters
}

func medianHeight(cells []document.TextCell) float64 {
	heights := make([]float64, 0, len(cells))
	for _, c := range cells {
		if h := c.BBox.Height(); h > 0 {
			heights = append(heights, h)
		}
	}
	if len(heights) == 0 {
		return 12
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

func buildCluster(id int, cells []document.TextCell, page *document.Page) document.Cluster {
	bbox := cells[0].BBox
	var conf float64
	programmatic := 0
	for _, c := range cells {
		bbox = bbox.Union(c.BBox)
		if c.FromOCR {
			conf += c.Confidence
		} else {
			programmatic++
			conf++
		}
	}
	cl := document.Cluster{
		ID:         id,
		BBox:       bbox,
		Cells:      cells,
		Confidence: conf / float64(len(cells)),
	}
	cl.Label = labelCluster(&cl, page)
	return cl
}

// labelCluster assigns an element label from block geometry and text
// shape. The rules mirror common single-column document conventions.
func labelCluster(cl *document.Cluster, page *document.Page) document.ElementLabel {
	text := strings.TrimSpace(cl.Text())
	pageH := page.Size.Height
	switch {
	case looksTabular(cl.Cells):
		return document.LabelTable
	case pageH > 0 && cl.BBox.B < 0.06*pageH && len(text) < 120:
		return document.LabelPageHeader
	case pageH > 0 && cl.BBox.T > 0.94*pageH && len(text) < 120:
		return document.LabelPageFooter
	case looksLikeListItem(text):
		return document.LabelListItem
	case page.PageNo == 1 && cl.ID == 0 && len(text) < 200 && text != "":
		return document.LabelTitle
	case looksLikeHeading(text):
		return document.LabelSectionHeader
	default:
		return document.LabelText
	}
}

// looksTabular detects blocks whose lines share several aligned column
// starts, the signature of whitespace-formatted tables.
func looksTabular(cells []document.TextCell) bool {
	if len(cells) < 3 {
		return false
	}
	rows := groupRows(cells)
	if len(rows) < 2 {
		return false
	}
	multi := 0
	for _, row := range rows {
		if len(row) >= 2 {
			multi++
		}
	}
	return multi*2 >= len(rows)
}

func looksLikeListItem(text string) bool {
	for _, prefix := range []string{"- ", "* ", "• ", "– "} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	if len(text) > 2 && unicode.IsDigit(rune(text[0])) &&
		(text[1] == '.' || text[1] == ')') && text[2] == ' ' {
		return true
	}
	return false
}

func looksLikeHeading(text string) bool {
	if text == "" || len(text) > 100 || strings.Contains(text, "\n") {
		return false
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		return false
	}
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > 12 {
		return false
	}
	// Numbered headings ("3.2 Results") or short all-caps runs.
	if unicode.IsDigit(rune(words[0][0])) && len(words) > 1 {
		return true
	}
	upper := 0
	for _, w := range words {
		r := rune(w[0])
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			upper++
		}
	}
	return upper == len(words)
}

// groupRows buckets cells into horizontal rows by vertical overlap of
// their midpoints.
func groupRows(cells []document.TextCell) [][]document.TextCell {
	sorted := make([]document.TextCell, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BBox.T < sorted[j].BBox.T })

	var rows [][]document.TextCell
	for _, c := range sorted {
		placed := false
		for i := range rows {
			last := rows[i][len(rows[i])-1]
			mid := (c.BBox.T + c.BBox.B) / 2
			if mid >= last.BBox.T && mid <= last.BBox.B {
				rows[i] = append(rows[i], c)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []document.TextCell{c})
		}
	}
	for i := range rows {
		sort.SliceStable(rows[i], func(a, b int) bool { return rows[i][a].BBox.L < rows[i][b].BBox.L })
	}
	return rows
}
