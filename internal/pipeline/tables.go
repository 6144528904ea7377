package pipeline

import (
	"sort"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// tableStage recovers a row/column grid for every cluster the layout
// stage labeled as a table. Columns are found by clustering cell left
// edges across rows; a cell lands in the column whose edge is nearest.
type tableStage struct{}

func (tableStage) Name() string { return "table_structure" }

func (tableStage) Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error) {
	for _, page := range pages {
		stop := res.RecordStage("table_structure")
		if !page.HasValidView() {
			stop()
			continue
		}
		page.Tables = page.Tables[:0]
		for _, cl := range page.Clusters {
			if cl.Label != document.LabelTable || len(cl.Cells) == 0 {
				continue
			}
			page.Tables = append(page.Tables, buildTable(&cl))
		}
		if len(page.Tables) > 0 {
			var sum float64
			for _, t := range page.Tables {
				sum += t.Confidence
			}
			res.PageConf(page.PageNo).TableScore = document.Score(sum / float64(len(page.Tables)))
		}
		stop()
	}
	return pages, nil
}

func buildTable(cl *document.Cluster) document.TableStructure {
	rows := groupRows(cl.Cells)
	edges := columnEdges(rows)

	grid := make([][]string, len(rows))
	filled := 0
	for r, row := range rows {
		grid[r] = make([]string, len(edges))
		for _, cell := range row {
			col := nearestColumn(edges, cell.BBox.L)
			if grid[r][col] != "" {
				grid[r][col] += " "
			}
			grid[r][col] += cell.Text
		}
		for _, v := range grid[r] {
			if v != "" {
				filled++
			}
		}
	}

	conf := 0.0
	if len(rows) > 0 && len(edges) > 0 {
		conf = float64(filled) / float64(len(rows)*len(edges))
	}
	return document.TableStructure{
		ClusterID:  cl.ID,
		NumRows:    len(rows),
		NumCols:    len(edges),
		Grid:       grid,
		Confidence: conf,
	}
}

// columnEdges merges the left edges of all cells into column positions,
// collapsing edges closer than half the median cell height.
func columnEdges(rows [][]document.TextCell) []float64 {
	var all []document.TextCell
	for _, r := range rows {
		all = append(all, r...)
	}
	if len(all) == 0 {
		return nil
	}
	tol := medianHeight(all) / 2

	lefts := make([]float64, 0, len(all))
	for _, c := range all {
		lefts = append(lefts, c.BBox.L)
	}
	sort.Float64s(lefts)

	edges := []float64{lefts[0]}
	for _, l := range lefts[1:] {
		if l-edges[len(edges)-1] > tol {
			edges = append(edges, l)
		}
	}
	return edges
}

func nearestColumn(edges []float64, left float64) int {
	best, bestDist := 0, -1.0
	for i, e := range edges {
		d := left - e
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
