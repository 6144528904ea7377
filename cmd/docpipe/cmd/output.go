package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// renderResult serializes one conversion result in the requested output
// format. Text and markdown need a structured document; JSON works for
// any terminal status.
func renderResult(res *document.ConversionResult, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(data) + "\n", nil
	case "text":
		if res.Document == nil {
			return "", fmt.Errorf("no document produced (status %s)", res.Status)
		}
		return res.Document.ExportToText() + "\n", nil
	case "markdown", "":
		if res.Document == nil {
			return "", fmt.Errorf("no document produced (status %s)", res.Status)
		}
		return res.Document.ExportToMarkdown(), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// outputExtension maps an output format to its file extension.
func outputExtension(format string) string {
	switch format {
	case "json":
		return ".json"
	case "text":
		return ".txt"
	default:
		return ".md"
	}
}

// writeResultFile writes a rendered result next to the input's base
// name inside dir.
func writeResultFile(dir, inputFile, rendered, format string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	outPath := filepath.Join(dir, base+outputExtension(format))
	if err := os.WriteFile(outPath, []byte(rendered), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	return outPath, nil
}
