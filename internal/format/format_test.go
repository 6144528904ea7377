package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectByExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"report.pdf", PDF},
		{"scan.PNG", Image},
		{"photo.jpeg", Image},
		{"page.html", HTML},
		{"page.xhtml", HTML},
		{"notes.md", Markdown},
		{"data.csv", CSV},
		{"archive.zip", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.filename, nil), tt.filename)
	}
}

func TestDetectBySniffing(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"pdf magic", []byte("%PDF-1.7\n"), PDF},
		{"png magic", []byte("\x89PNG\r\n\x1a\nrest"), Image},
		{"jpeg magic", []byte{0xff, 0xd8, 0xff, 0xe0}, Image},
		{"webp riff", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), Image},
		{"html doctype", []byte("  <!DOCTYPE html><html>"), HTML},
		{"html tag", []byte("<html lang=\"en\">"), HTML},
		{"plain text", []byte("hello world"), Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect("noextension", tt.head))
		})
	}
}

func TestParse(t *testing.T) {
	f, err := Parse("PDF")
	require.NoError(t, err)
	assert.Equal(t, PDF, f)

	f, err = Parse("markdown")
	require.NoError(t, err)
	assert.Equal(t, Markdown, f)

	_, err = Parse("docx")
	assert.Error(t, err)
}

func TestPaginated(t *testing.T) {
	assert.True(t, PDF.Paginated())
	assert.True(t, Image.Paginated())
	assert.False(t, HTML.Paginated())
	assert.False(t, Markdown.Paginated())
	assert.False(t, CSV.Paginated())
}

func TestString(t *testing.T) {
	assert.Equal(t, "pdf", PDF.String())
	assert.Equal(t, "unknown", Unknown.String())
}
