package pipeline

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/disintegration/imaging"
)

// codeEnrichment tags code items with the programming language they
// most plausibly contain.
type codeEnrichment struct{}

func (codeEnrichment) Name() string { return "code_enrichment" }

func (codeEnrichment) Enrich(doc *document.Document) error {
	for _, item := range doc.Items {
		if item.Label != document.LabelCode || item.CodeLanguage != "" {
			continue
		}
		item.CodeLanguage = detectCodeLanguage(item.Text)
	}
	return nil
}

// languageMarkers maps a language name to token fragments that are
// strong hints for it. First language whose markers score at least two
// hits wins.
var languageMarkers = []struct {
	name    string
	markers []string
}{
	{"go", []string{"func ", ":=", "package ", "chan ", "go func", "fmt."}},
	{"python", []string{"def ", "import ", "self.", "elif ", "lambda ", "print("}},
	{"javascript", []string{"const ", "=> ", "function ", "console.", "let ", "async "}},
	{"java", []string{"public class", "private ", "void ", "System.out", "extends "}},
	{"rust", []string{"fn ", "let mut", "impl ", "-> ", "match ", "::<"}},
	{"c", []string{"#include", "printf(", "int main", "->", "sizeof("}},
	{"sql", []string{"SELECT ", "FROM ", "WHERE ", "INSERT INTO", "CREATE TABLE"}},
	{"shell", []string{"#!/bin/", "echo ", "$(", "fi\n", "grep "}},
	{"html", []string{"<div", "<html", "</", "<span", "href="}},
}

func detectCodeLanguage(text string) string {
	bestName, bestScore := "unknown", 1
	for _, lang := range languageMarkers {
		score := 0
		for _, m := range lang.markers {
			if strings.Contains(text, m) {
				score++
			}
		}
		if score > bestScore {
			bestName, bestScore = lang.name, score
		}
	}
	return bestName
}

// formulaEnrichment relabels text items that read as mathematics.
type formulaEnrichment struct{}

func (formulaEnrichment) Name() string { return "formula_enrichment" }

func (formulaEnrichment) Enrich(doc *document.Document) error {
	for _, item := range doc.Items {
		if item.Label != document.LabelText {
			continue
		}
		if looksLikeFormula(item.Text) {
			item.Label = document.LabelFormula
		}
	}
	return nil
}

func looksLikeFormula(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 300 || strings.Count(text, " ") > 20 {
		return false
	}
	mathRunes := 0
	for _, r := range text {
		switch {
		case r >= 0x2200 && r <= 0x22FF: // mathematical operators
			mathRunes += 2
		case r >= 0x0391 && r <= 0x03C9: // greek
			mathRunes++
		case strings.ContainsRune("=+−±×÷√∑∫^_{}", r):
			mathRunes++
		}
	}
	return mathRunes >= 3 && strings.ContainsAny(text, "=≈≤≥∝")
}

// pictureClassifier buckets picture items by simple image statistics:
// low color variance reads as a chart or diagram, tiny images as icons,
// everything else as a photograph.
type pictureClassifier struct{}

func (pictureClassifier) Name() string { return "picture_classification" }

func (pictureClassifier) Enrich(doc *document.Document) error {
	for _, item := range doc.Items {
		if item.Label != document.LabelPicture || item.Image == nil || item.Image.Image == nil {
			continue
		}
		item.Classification = classifyPicture(item)
	}
	return nil
}

func classifyPicture(item *document.Item) string {
	img := item.Image.Image
	b := img.Bounds()
	if b.Dx() < 64 && b.Dy() < 64 {
		return "logo_or_icon"
	}
	thumb := imaging.Resize(img, 32, 32, imaging.Box)
	colors := make(map[uint32]struct{})
	for y := range 32 {
		for x := range 32 {
			r, g, bb, _ := thumb.At(x, y).RGBA()
			// quantize to 4 bits per channel
			key := (r >> 12 << 8) | (g >> 12 << 4) | (bb >> 12)
			colors[key] = struct{}{}
		}
	}
	if len(colors) < 48 {
		return "chart_or_diagram"
	}
	return "photograph"
}

// pictureDescription attaches a short textual description to classified
// picture items.
type pictureDescription struct{}

func (pictureDescription) Name() string { return "picture_description" }

func (pictureDescription) Enrich(doc *document.Document) error {
	for _, item := range doc.Items {
		if item.Label != document.LabelPicture || item.Description != "" {
			continue
		}
		item.Description = describePicture(item)
	}
	return nil
}

func describePicture(item *document.Item) string {
	kind := item.Classification
	if kind == "" {
		kind = "picture"
	}
	kind = strings.ReplaceAll(kind, "_", " ")
	if item.Image != nil && item.Image.Image != nil {
		b := item.Image.Image.Bounds()
		return fmt.Sprintf("%s, %dx%d px, page %d", kind, b.Dx(), b.Dy(), item.PageNo)
	}
	return fmt.Sprintf("%s on page %d", kind, item.PageNo)
}
