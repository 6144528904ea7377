package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalTesseractLang(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"en", "eng"},
		{"eng", "eng"},
		{"en-US", "eng"},
		{"de", "deu"},
		{"de-DE", "deu"},
		{"fr", "fra"},
		{"ja", "jpn"},
		{"auto", "auto"},
		{"AUTO", "auto"},
		{" en ", "eng"},
		{"", "auto"},
		{"not-a-language!", "not-a-language!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalTesseractLang(tt.in), "code=%q", tt.in)
	}
}

func TestMapScript(t *testing.T) {
	assert.Equal(t, "Japanese", mapScript("Katakana"))
	assert.Equal(t, "Japanese", mapScript("Hiragana"))
	assert.Equal(t, "HanS", mapScript("Han"))
	assert.Equal(t, "Hangul", mapScript("Korean"))
	assert.Equal(t, "Latin", mapScript("Latin"))
	assert.Equal(t, "Cyrillic", mapScript("Cyrillic"))
}
