package document

import (
	"math"
	"sort"
	"strconv"
)

// Score is a quality value in [0,1]. NaN means "not scored"; NaN scores
// marshal as null and are ignored during aggregation.
type Score float64

// MarshalJSON emits null for unscored values so results stay valid JSON.
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON accepts null as NaN.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Score(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// PageConfidence holds the per-page quality scores produced by the
// perception stages.
type PageConfidence struct {
	ParseScore  Score `json:"parse_score"`
	LayoutScore Score `json:"layout_score"`
	TableScore  Score `json:"table_score"`
	OCRScore    Score `json:"ocr_score"`
}

// NewPageConfidence returns a record with every score unset.
func NewPageConfidence() *PageConfidence {
	nan := Score(math.NaN())
	return &PageConfidence{ParseScore: nan, LayoutScore: nan, TableScore: nan, OCRScore: nan}
}

// ConfidenceReport combines per-page scores with document-level
// aggregates.
type ConfidenceReport struct {
	Pages map[int]*PageConfidence `json:"pages"`

	ParseScore  Score `json:"parse_score"`
	LayoutScore Score `json:"layout_score"`
	TableScore  Score `json:"table_score"`
	OCRScore    Score `json:"ocr_score"`
}

// NewConfidenceReport returns an empty report with unset aggregates.
func NewConfidenceReport() ConfidenceReport {
	nan := Score(math.NaN())
	return ConfidenceReport{
		Pages:       make(map[int]*PageConfidence),
		ParseScore:  nan,
		LayoutScore: nan,
		TableScore:  nan,
		OCRScore:    nan,
	}
}

// Aggregate computes the document-level scores from the per-page
// values. Layout, table and OCR aggregate as the mean over scored
// pages. The parse score is the 10th percentile, so a single badly
// parsed page drags the whole document down. Missing and NaN page
// scores are ignored; aggregating zero pages leaves every score unset.
func (c *ConfidenceReport) Aggregate() {
	var parse, layout, table, ocr []float64
	for _, pc := range c.Pages {
		parse = append(parse, float64(pc.ParseScore))
		layout = append(layout, float64(pc.LayoutScore))
		table = append(table, float64(pc.TableScore))
		ocr = append(ocr, float64(pc.OCRScore))
	}
	c.LayoutScore = Score(nanMean(layout))
	c.TableScore = Score(nanMean(table))
	c.OCRScore = Score(nanMean(ocr))
	c.ParseScore = Score(nanQuantile(parse, 0.1))
}

// nanMean averages the non-NaN values; all-NaN or empty input yields NaN.
func nanMean(vals []float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanQuantile computes the q-quantile of the non-NaN values using
// linear interpolation between order statistics.
func nanQuantile(vals []float64, q float64) float64 {
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	if len(clean) == 1 {
		return clean[0]
	}
	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(clean) {
		return clean[len(clean)-1]
	}
	frac := pos - float64(lo)
	return clean[lo]*(1-frac) + clean[hi]*frac
}
