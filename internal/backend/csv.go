package backend

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/docpipe/internal/document"
)

// CSVBackend converts delimiter-separated sources into a single table
// item.
type CSVBackend struct {
	name string
	grid [][]string
}

// NewCSV parses the source records eagerly. Ragged rows are accepted.
func NewCSV(src Source) (document.Backend, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		slog.Warn("csv parse failed", "file", src.Name, "error", err)
		return &CSVBackend{name: src.Name}, nil
	}
	return &CSVBackend{name: src.Name, grid: records}, nil
}

// IsValid reports whether any records parsed.
func (b *CSVBackend) IsValid() bool { return len(b.grid) > 0 }

// Close releases the parsed records.
func (b *CSVBackend) Close() error {
	b.grid = nil
	return nil
}

// Convert wraps the records in a one-table document.
func (b *CSVBackend) Convert() (*document.Document, error) {
	if !b.IsValid() {
		return nil, fmt.Errorf("csv backend for %s is not valid", b.name)
	}
	cols := 0
	for _, row := range b.grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	doc := document.NewDocument(b.name)
	doc.AddItem(&document.Item{
		Label: document.LabelTable,
		Table: &document.TableStructure{
			NumRows:    len(b.grid),
			NumCols:    cols,
			Grid:       b.grid,
			Confidence: 1.0,
		},
	})
	return doc, nil
}
