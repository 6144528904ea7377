// Package backend provides the per-format document backends: each one
// validates a source, and either exposes pages for the paginated
// pipeline or converts the source declaratively in one step.
package backend

import (
	"fmt"
	"os"
)

// Source identifies the raw input handed to a backend factory. Either
// Path or Data is set; Name is always the display name of the source.
type Source struct {
	Name string
	Path string
	Data []byte
}

// Bytes returns the source content, reading the file when the source is
// path-backed.
func (s Source) Bytes() ([]byte, error) {
	if s.Data != nil {
		return s.Data, nil
	}
	b, err := os.ReadFile(s.Path) //nolint:gosec // G304: converting user-provided files is the point
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", s.Name, err)
	}
	return b, nil
}

// materialize returns a path to the source content on disk, writing a
// temporary file for in-memory sources. The second return value reports
// whether the caller owns (and must remove) the file.
func (s Source) materialize(pattern string) (string, bool, error) {
	if s.Path != "" {
		return s.Path, false, nil
	}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", false, fmt.Errorf("temp file for %s: %w", s.Name, err)
	}
	if _, err := f.Write(s.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", false, fmt.Errorf("write temp file for %s: %w", s.Name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", false, err
	}
	return f.Name(), true, nil
}
