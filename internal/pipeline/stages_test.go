package pipeline

import (
	"errors"
	"image"
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubView is an in-memory PageView serving canned cells.
type stubView struct {
	size     document.PageSize
	cells    []document.TextCell
	cellsErr error
	closed   bool
}

func (v *stubView) IsValid() bool           { return true }
func (v *stubView) Size() document.PageSize { return v.size }
func (v *stubView) Close()                  { v.closed = true }

func (v *stubView) Image(scale float64, crop *document.BoundingBox) (image.Image, error) {
	region := v.size.Rect()
	if crop != nil {
		region = *crop
	}
	return image.NewRGBA(image.Rect(0, 0, int(region.Width()*scale), int(region.Height()*scale))), nil
}

func (v *stubView) TextCells() ([]document.TextCell, error) {
	return v.cells, v.cellsErr
}

func cell(text string, l, t, r, b float64) document.TextCell {
	return document.TextCell{Text: text, BBox: document.BoundingBox{L: l, T: t, R: r, B: b}}
}

func newResult(file string) *document.ConversionResult {
	return document.NewConversionResult(&document.InputDocument{File: file, Valid: true})
}

func TestParseQuality(t *testing.T) {
	score, ok := parseQuality([]document.TextCell{cell("clean text 123.", 0, 0, 50, 10)})
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)

	// Replacement characters from broken extraction drag the score down.
	score, ok = parseQuality([]document.TextCell{cell("���ab", 0, 0, 50, 10)})
	require.True(t, ok)
	assert.InDelta(t, 0.4, score, 1e-9)

	// Empty cells damp an otherwise clean score.
	score, ok = parseQuality([]document.TextCell{
		cell("abcd", 0, 0, 40, 10),
		cell("", 0, 20, 40, 30),
	})
	require.True(t, ok)
	assert.InDelta(t, 0.75, score, 1e-9)

	_, ok = parseQuality(nil)
	assert.False(t, ok)
	_, ok = parseQuality([]document.TextCell{cell("", 0, 0, 10, 10)})
	assert.False(t, ok)
}

func TestPreprocessStageExtractsCells(t *testing.T) {
	view := &stubView{
		size:  document.PageSize{Width: 100, Height: 200},
		cells: []document.TextCell{cell("hello world", 10, 10, 90, 20)},
	}
	page := &document.Page{PageNo: 1, View: view}
	res := newResult("a.pdf")

	out, err := preprocessStage{}.Process(res, []*document.Page{page})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, document.PageSize{Width: 100, Height: 200}, page.Size)
	require.Len(t, page.Cells, 1)
	assert.InDelta(t, 1.0, float64(res.PageConf(1).ParseScore), 1e-9)
}

func TestPreprocessStageSkipsInvalidView(t *testing.T) {
	page := &document.Page{PageNo: 3}
	res := newResult("a.pdf")

	out, err := preprocessStage{}.Process(res, []*document.Page{page})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, page.Cells)
}

func TestPreprocessStagePropagatesCellError(t *testing.T) {
	view := &stubView{size: document.PageSize{Width: 10, Height: 10}, cellsErr: errors.New("broken cmap")}
	page := &document.Page{PageNo: 2, View: view}

	_, err := preprocessStage{}.Process(newResult("a.pdf"), []*document.Page{page})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestClusterCellsSplitsOnVerticalGaps(t *testing.T) {
	page := &document.Page{
		PageNo: 1,
		Size:   document.PageSize{Width: 100, Height: 200},
		Cells: []document.TextCell{
			// line heights 10 each, so the split gap is 14
			cell("Overview", 10, 30, 60, 40),
			cell("Some body text here.", 10, 60, 90, 70),
			cell("and a second line.", 10, 74, 85, 84),
			cell("Page 1", 40, 190, 60, 196),
		},
	}
	clusters := clusterCells(page)
	require.Len(t, clusters, 3)
	assert.Equal(t, "Overview", clusters[0].Text())
	assert.Equal(t, "Some body text here. and a second line.", clusters[1].Text())
	assert.Equal(t, "Page 1", clusters[2].Text())

	assert.Equal(t, document.LabelTitle, clusters[0].Label)
	assert.Equal(t, document.LabelText, clusters[1].Label)
	assert.Equal(t, document.LabelPageFooter, clusters[2].Label)

	// Programmatic cells carry full confidence.
	assert.InDelta(t, 1.0, clusters[1].Confidence, 1e-9)
}

func TestLabelClusterListAndHeading(t *testing.T) {
	page := &document.Page{PageNo: 2, Size: document.PageSize{Width: 100, Height: 200}}

	list := document.Cluster{ID: 1, Cells: []document.TextCell{cell("- first point", 10, 100, 80, 110)}}
	assert.Equal(t, document.LabelListItem, labelCluster(&list, page))

	numbered := document.Cluster{ID: 1, Cells: []document.TextCell{cell("2) second point", 10, 100, 80, 110)}}
	assert.Equal(t, document.LabelListItem, labelCluster(&numbered, page))

	heading := document.Cluster{ID: 1, Cells: []document.TextCell{cell("3.2 Results", 10, 100, 80, 110)}}
	assert.Equal(t, document.LabelSectionHeader, labelCluster(&heading, page))

	body := document.Cluster{ID: 1, Cells: []document.TextCell{cell("plain sentence ends here.", 10, 100, 80, 110)}}
	assert.Equal(t, document.LabelText, labelCluster(&body, page))
}

func TestGroupRows(t *testing.T) {
	cells := []document.TextCell{
		cell("b", 50, 0, 70, 10),
		cell("a", 0, 1, 20, 11),
		cell("c", 0, 20, 20, 30),
	}
	rows := groupRows(cells)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "a", rows[0][0].Text)
	assert.Equal(t, "b", rows[0][1].Text)
	assert.Equal(t, "c", rows[1][0].Text)
}

func TestBuildTableRecoversGrid(t *testing.T) {
	cl := document.Cluster{
		ID:    4,
		Label: document.LabelTable,
		Cells: []document.TextCell{
			cell("Name", 0, 0, 40, 10),
			cell("Age", 100, 0, 140, 10),
			cell("Bob", 0, 20, 40, 30),
			cell("42", 100, 20, 140, 30),
		},
	}
	table := buildTable(&cl)
	assert.Equal(t, 4, table.ClusterID)
	assert.Equal(t, 2, table.NumRows)
	assert.Equal(t, 2, table.NumCols)
	require.Len(t, table.Grid, 2)
	assert.Equal(t, []string{"Name", "Age"}, table.Grid[0])
	assert.Equal(t, []string{"Bob", "42"}, table.Grid[1])
	assert.InDelta(t, 1.0, table.Confidence, 1e-9)
}

func TestBuildTableSparseGridConfidence(t *testing.T) {
	cl := document.Cluster{
		ID: 0,
		Cells: []document.TextCell{
			cell("Name", 0, 0, 40, 10),
			cell("Age", 100, 0, 140, 10),
			cell("Bob", 0, 20, 40, 30),
		},
	}
	table := buildTable(&cl)
	assert.Equal(t, 2, table.NumRows)
	assert.Equal(t, 2, table.NumCols)
	assert.Equal(t, "", table.Grid[1][1])
	assert.InDelta(t, 0.75, table.Confidence, 1e-9)
}

func TestTableStageScoresPages(t *testing.T) {
	view := &stubView{size: document.PageSize{Width: 200, Height: 200}}
	page := &document.Page{
		PageNo: 1,
		View:   view,
		Clusters: []document.Cluster{
			{
				ID:    0,
				Label: document.LabelTable,
				Cells: []document.TextCell{
					cell("x", 0, 0, 10, 10),
					cell("y", 100, 0, 110, 10),
					cell("z", 0, 20, 10, 30),
					cell("w", 100, 20, 110, 30),
				},
			},
			{ID: 1, Label: document.LabelText, Cells: []document.TextCell{cell("prose", 0, 50, 60, 60)}},
		},
	}
	res := newResult("a.pdf")

	_, err := tableStage{}.Process(res, []*document.Page{page})
	require.NoError(t, err)
	require.Len(t, page.Tables, 1)
	assert.Equal(t, 0, page.Tables[0].ClusterID)
	assert.InDelta(t, 1.0, float64(res.PageConf(1).TableScore), 1e-9)
}

func TestAssembleStageSplitsFurniture(t *testing.T) {
	view := &stubView{size: document.PageSize{Width: 100, Height: 200}}
	page := &document.Page{
		PageNo: 1,
		View:   view,
		Clusters: []document.Cluster{
			{ID: 0, Label: document.LabelPageHeader, Cells: []document.TextCell{cell("Acme Corp", 10, 2, 50, 8)}},
			{ID: 1, Label: document.LabelText, Cells: []document.TextCell{cell("body", 10, 50, 90, 60)}},
			{ID: 2, Label: document.LabelTable, Cells: []document.TextCell{cell("k", 10, 80, 20, 90)}},
		},
		Tables: []document.TableStructure{{ClusterID: 2, NumRows: 1, NumCols: 1, Grid: [][]string{{"k"}}}},
	}
	res := newResult("a.pdf")

	_, err := assembleStage{}.Process(res, []*document.Page{page})
	require.NoError(t, err)
	unit := page.Assembled
	require.NotNil(t, unit)
	assert.Len(t, unit.Elements, 3)
	require.Len(t, unit.Headers, 1)
	assert.Equal(t, document.LabelPageHeader, unit.Headers[0].Label)
	require.Len(t, unit.Body, 2)
	require.NotNil(t, unit.Body[1].Table)
	assert.Equal(t, 2, unit.Body[1].Table.ClusterID)
	assert.Nil(t, unit.Body[0].Table)
}

func el(text string, pageNo int, l, t, r, b float64) document.Element {
	return document.Element{
		Label:  document.LabelText,
		PageNo: pageNo,
		Text:   text,
		BBox:   document.BoundingBox{L: l, T: t, R: r, B: b},
	}
}

func elementTexts(els []document.Element) []string {
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Text
	}
	return out
}

func TestReadingOrderSingleColumn(t *testing.T) {
	body := []document.Element{
		el("second", 1, 10, 50, 90, 60),
		el("first", 1, 10, 20, 90, 30),
	}
	sizes := map[int]document.PageSize{1: {Width: 100, Height: 200}}
	ordered := resolveReadingOrder(body, sizes)
	assert.Equal(t, []string{"first", "second"}, elementTexts(ordered))
}

func TestReadingOrderTwoColumns(t *testing.T) {
	body := []document.Element{
		el("R1", 1, 55, 20, 95, 30),
		el("L2", 1, 5, 40, 45, 50),
		el("title", 1, 10, 0, 90, 10),
		el("L1", 1, 5, 20, 45, 30),
		el("R2", 1, 55, 40, 95, 50),
	}
	sizes := map[int]document.PageSize{1: {Width: 100, Height: 200}}
	ordered := resolveReadingOrder(body, sizes)
	assert.Equal(t, []string{"title", "L1", "L2", "R1", "R2"}, elementTexts(ordered))
}

func TestReadingOrderIgnoresSparseColumns(t *testing.T) {
	// One element per side is not a column layout.
	body := []document.Element{
		el("right", 1, 55, 20, 95, 30),
		el("left", 1, 5, 40, 45, 50),
	}
	sizes := map[int]document.PageSize{1: {Width: 100, Height: 200}}
	ordered := resolveReadingOrder(body, sizes)
	assert.Equal(t, []string{"right", "left"}, elementTexts(ordered))
}

func TestReadingOrderAcrossPages(t *testing.T) {
	body := []document.Element{
		el("p2", 2, 10, 10, 90, 20),
		el("p1", 1, 10, 10, 90, 20),
	}
	ordered := resolveReadingOrder(body, map[int]document.PageSize{})
	assert.Equal(t, []string{"p1", "p2"}, elementTexts(ordered))
}
