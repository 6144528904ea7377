package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCodeLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"go", "package main\n\nfunc run() {\n\tch := make(chan int)\n\tfmt.Println(<-ch)\n}", "go"},
		{"python", "import os\n\ndef walk(root):\n    for name in os.listdir(root):\n        print(name)", "python"},
		{"javascript", "const add = (a, b) => a + b;\nconsole.log(add(1, 2));", "javascript"},
		{"sql", "SELECT id, name FROM users WHERE active = 1", "sql"},
		{"shell", "#!/bin/sh\necho hello\ngrep -r foo .", "shell"},
		{"prose", "This is just a sentence about nothing in particular.", "unknown"},
		{"empty", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCodeLanguage(tt.code))
		})
	}
}

func TestCodeEnrichmentTagsItems(t *testing.T) {
	doc := document.NewDocument("d")
	doc.AddItem(&document.Item{Label: document.LabelCode, Text: "def f():\n    import sys\n    print(sys.argv)"})
	doc.AddItem(&document.Item{Label: document.LabelText, Text: "def f(): import x print()"})
	doc.AddItem(&document.Item{Label: document.LabelCode, Text: "x", CodeLanguage: "haskell"})

	require.NoError(t, codeEnrichment{}.Enrich(doc))
	assert.Equal(t, "python", doc.Items[0].CodeLanguage)
	// Only code items are touched.
	assert.Empty(t, doc.Items[1].CodeLanguage)
	// Pre-set languages are kept.
	assert.Equal(t, "haskell", doc.Items[2].CodeLanguage)
}

func TestLooksLikeFormula(t *testing.T) {
	assert.True(t, looksLikeFormula("x² = √(a+b) − c"))
	assert.True(t, looksLikeFormula("∑ xᵢ = n·μ"))
	assert.True(t, looksLikeFormula("α + β = γ"))
	assert.False(t, looksLikeFormula("The sum equals the mean."))
	assert.False(t, looksLikeFormula(""))
	// Long prose with a stray equals sign is not a formula.
	assert.False(t, looksLikeFormula("the total = everything we measured over many trials and many words beyond that limit here"))
}

func TestFormulaEnrichmentRelabels(t *testing.T) {
	doc := document.NewDocument("d")
	doc.AddItem(&document.Item{Label: document.LabelText, Text: "α + β = γ"})
	doc.AddItem(&document.Item{Label: document.LabelText, Text: "Ordinary paragraph text."})

	require.NoError(t, formulaEnrichment{}.Enrich(doc))
	assert.Equal(t, document.LabelFormula, doc.Items[0].Label)
	assert.Equal(t, document.LabelText, doc.Items[1].Label)
}

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: uint8((x * y) % 251), A: 255})
		}
	}
	return img
}

func pictureItem(img image.Image) *document.Item {
	return &document.Item{
		Label: document.LabelPicture,
		Image: &document.ImageRef{Image: img, DPI: 72},
	}
}

func TestClassifyPicture(t *testing.T) {
	tiny := pictureItem(uniformImage(20, 20, color.White))
	assert.Equal(t, "logo_or_icon", classifyPicture(tiny))

	flat := pictureItem(uniformImage(128, 128, color.RGBA{R: 200, G: 30, B: 30, A: 255}))
	assert.Equal(t, "chart_or_diagram", classifyPicture(flat))

	photo := pictureItem(gradientImage(128, 128))
	assert.Equal(t, "photograph", classifyPicture(photo))
}

func TestPictureClassifierSkipsImagelessItems(t *testing.T) {
	doc := document.NewDocument("d")
	doc.AddItem(&document.Item{Label: document.LabelPicture})
	doc.AddItem(pictureItem(uniformImage(128, 128, color.Black)))

	require.NoError(t, pictureClassifier{}.Enrich(doc))
	assert.Empty(t, doc.Items[0].Classification)
	assert.Equal(t, "chart_or_diagram", doc.Items[1].Classification)
}

func TestDescribePicture(t *testing.T) {
	item := pictureItem(uniformImage(100, 50, color.White))
	item.Classification = "chart_or_diagram"
	item.PageNo = 3
	assert.Equal(t, "chart or diagram, 100x50 px, page 3", describePicture(item))

	bare := &document.Item{Label: document.LabelPicture, PageNo: 2}
	assert.Equal(t, "picture on page 2", describePicture(bare))
}

func TestPictureDescriptionFillsMissingOnly(t *testing.T) {
	doc := document.NewDocument("d")
	doc.AddItem(&document.Item{Label: document.LabelPicture, PageNo: 1, Description: "hand written"})
	doc.AddItem(&document.Item{Label: document.LabelPicture, PageNo: 4})

	require.NoError(t, pictureDescription{}.Enrich(doc))
	assert.Equal(t, "hand written", doc.Items[0].Description)
	assert.Equal(t, "picture on page 4", doc.Items[1].Description)
}
