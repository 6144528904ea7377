package pipeline

import (
	"fmt"
	"unicode"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// preprocessStage pulls programmatic text cells out of the backend page
// view and scores how well the page parsed. Pages without a valid view
// pass through untouched.
type preprocessStage struct{}

func (preprocessStage) Name() string { return "preprocess" }

func (preprocessStage) Process(res *document.ConversionResult, pages []*document.Page) ([]*document.Page, error) {
	for _, page := range pages {
		stop := res.RecordStage("preprocess")
		if !page.HasValidView() {
			stop()
			continue
		}
		page.Size = page.View.Size()
		cells, err := page.View.TextCells()
		if err != nil {
			stop()
			return pages, fmt.Errorf("page %d: extract text cells: %w", page.PageNo, err)
		}
		page.Cells = cells
		if q, ok := parseQuality(cells); ok {
			res.PageConf(page.PageNo).ParseScore = document.Score(q)
		}
		stop()
	}
	return pages, nil
}

// parseQuality scores extracted cells on a 0..1 scale: the share of
// characters that are letters, digits or common punctuation, damped by
// the share of empty cells. Garbled extraction (encoding damage, broken
// CMaps) drops the score well below clean text. Pages with no text to
// judge report ok=false and keep their score unset.
func parseQuality(cells []document.TextCell) (score float64, ok bool) {
	if len(cells) == 0 {
		return 0, false
	}
	var clean, total float64
	empty := 0
	for _, c := range cells {
		if c.Text == "" {
			empty++
			continue
		}
		for _, r := range c.Text {
			total++
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
				unicode.IsPunct(r) || (unicode.IsSymbol(r) && r < 0x2200) {
				clean++
			}
		}
	}
	if total == 0 {
		return 0, false
	}
	score = clean / total
	return score * (1 - float64(empty)/float64(len(cells))/2), true
}
