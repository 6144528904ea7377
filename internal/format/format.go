// Package format enumerates the input formats docpipe can convert and
// detects the format of a source from its name and leading bytes.
package format

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an input document format.
type Format string

const (
	PDF      Format = "pdf"
	Image    Format = "image"
	HTML     Format = "html"
	Markdown Format = "md"
	CSV      Format = "csv"

	// Unknown marks a source whose format could not be determined.
	Unknown Format = ""
)

// All returns every format known to the system, in a stable order.
func All() []Format {
	return []Format{PDF, Image, HTML, Markdown, CSV}
}

// Paginated reports whether the format is processed page-by-page.
func (f Format) Paginated() bool {
	return f == PDF || f == Image
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if f == Unknown {
		return "unknown"
	}
	return string(f)
}

// Parse converts a user-supplied format name into a Format.
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return PDF, nil
	case "image", "img", "png", "jpg", "jpeg", "tiff", "bmp", "webp":
		return Image, nil
	case "html", "htm":
		return HTML, nil
	case "md", "markdown":
		return Markdown, nil
	case "csv":
		return CSV, nil
	default:
		return Unknown, fmt.Errorf("unknown format %q", s)
	}
}

var extensions = map[string]Format{
	".pdf":      PDF,
	".png":      Image,
	".jpg":      Image,
	".jpeg":     Image,
	".gif":      Image,
	".bmp":      Image,
	".tif":      Image,
	".tiff":     Image,
	".webp":     Image,
	".html":     HTML,
	".htm":      HTML,
	".xhtml":    HTML,
	".md":       Markdown,
	".markdown": Markdown,
	".csv":      CSV,
}

// Detect determines the format of a source from its filename extension,
// falling back to content sniffing of the leading bytes. Unknown is
// returned (without error) when neither method recognizes the source.
func Detect(filename string, head []byte) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	return sniff(head)
}

func sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return PDF
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")),
		bytes.HasPrefix(head, []byte("\xff\xd8\xff")),
		bytes.HasPrefix(head, []byte("GIF8")),
		bytes.HasPrefix(head, []byte("BM")),
		bytes.HasPrefix(head, []byte("II*\x00")),
		bytes.HasPrefix(head, []byte("MM\x00*")),
		isWebP(head):
		return Image
	case looksLikeHTML(head):
		return HTML
	default:
		return Unknown
	}
}

func isWebP(head []byte) bool {
	return len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP"))
}

func looksLikeHTML(head []byte) bool {
	trimmed := bytes.ToLower(bytes.TrimLeft(head, " \t\r\n"))
	return bytes.HasPrefix(trimmed, []byte("<!doctype html")) ||
		bytes.HasPrefix(trimmed, []byte("<html"))
}
