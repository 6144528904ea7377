package pipeline

import (
	"sort"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// resolveReadingOrder orders body elements into natural reading order.
// Single-column pages sort top to bottom; pages recognized as
// two-column emit the left column before the right, with full-width
// elements slotted in by vertical position.
func resolveReadingOrder(body []document.Element, sizes map[int]document.PageSize) []document.Element {
	byPage := make(map[int][]document.Element)
	var pageNos []int
	for _, el := range body {
		if _, seen := byPage[el.PageNo]; !seen {
			pageNos = append(pageNos, el.PageNo)
		}
		byPage[el.PageNo] = append(byPage[el.PageNo], el)
	}
	sort.Ints(pageNos)

	var out []document.Element
	for _, pageNo := range pageNos {
		out = append(out, orderPage(byPage[pageNo], sizes[pageNo])...)
	}
	return out
}

func orderPage(els []document.Element, size document.PageSize) []document.Element {
	byTop := func(a, b document.Element) bool {
		if a.BBox.T != b.BBox.T {
			return a.BBox.T < b.BBox.T
		}
		return a.BBox.L < b.BBox.L
	}
	sorted := make([]document.Element, len(els))
	copy(sorted, els)
	sort.SliceStable(sorted, func(i, j int) bool { return byTop(sorted[i], sorted[j]) })

	if size.Width <= 0 {
		return sorted
	}
	mid := size.Width / 2
	var full, left, right []document.Element
	for _, el := range sorted {
		switch {
		case el.BBox.L < mid && el.BBox.R > mid:
			full = append(full, el)
		case el.BBox.R <= mid:
			left = append(left, el)
		default:
			right = append(right, el)
		}
	}
	// Column layout only counts when both sides carry real content.
	if len(left) < 2 || len(right) < 2 {
		return sorted
	}

	out := make([]document.Element, 0, len(sorted))
	out = append(out, columnMerge(full, left)...)
	out = append(out, right...)
	return out
}

// columnMerge interleaves full-width elements with the left column by
// vertical position; full-width content above the columns (titles,
// abstracts) stays first.
func columnMerge(full, left []document.Element) []document.Element {
	out := make([]document.Element, 0, len(full)+len(left))
	i, j := 0, 0
	for i < len(full) && j < len(left) {
		if full[i].BBox.T <= left[j].BBox.T {
			out = append(out, full[i])
			i++
		} else {
			out = append(out, left[j])
			j++
		}
	}
	out = append(out, full[i:]...)
	out = append(out, left[j:]...)
	return out
}
