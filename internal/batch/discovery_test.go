package batch

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func setupTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "report.pdf"))
	writeFile(t, filepath.Join(dir, "notes.md"))
	writeFile(t, filepath.Join(dir, "binary.exe"))
	writeFile(t, filepath.Join(dir, "sub", "scan.png"))
	writeFile(t, filepath.Join(dir, "sub", "deep", "page.html"))
	return dir
}

func TestDiscoverDirectoryNonRecursive(t *testing.T) {
	dir := setupTree(t)
	files, err := Discover([]string{dir}, Options{})
	require.NoError(t, err)

	names := baseNames(files)
	assert.ElementsMatch(t, []string{"report.pdf", "notes.md"}, names)
}

func TestDiscoverDirectoryRecursive(t *testing.T) {
	dir := setupTree(t)
	files, err := Discover([]string{dir}, Options{Recursive: true})
	require.NoError(t, err)

	names := baseNames(files)
	assert.ElementsMatch(t, []string{"report.pdf", "notes.md", "scan.png", "page.html"}, names)
}

func TestDiscoverExplicitFile(t *testing.T) {
	dir := setupTree(t)
	pdf := filepath.Join(dir, "report.pdf")
	files, err := Discover([]string{pdf}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{pdf}, files)

	// Unrecognized formats are dropped even when named directly.
	files, err = Discover([]string{filepath.Join(dir, "binary.exe")}, Options{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFormatAllowList(t *testing.T) {
	dir := setupTree(t)
	opts := Options{
		Recursive: true,
		Formats:   []format.Format{format.PDF, format.Image},
	}
	files, err := Discover([]string{dir}, opts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.pdf", "scan.png"}, baseNames(files))

	// A directly named file of a disallowed format is dropped too.
	files, err = Discover([]string{filepath.Join(dir, "notes.md")}, opts)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverIncludePatterns(t *testing.T) {
	dir := setupTree(t)
	files, err := Discover([]string{dir}, Options{
		Recursive: true,
		Include:   []string{"*.pdf", "*.png"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.pdf", "scan.png"}, baseNames(files))
}

func TestDiscoverExcludePatterns(t *testing.T) {
	dir := setupTree(t)
	files, err := Discover([]string{dir}, Options{
		Recursive: true,
		Exclude:   []string{"notes.*", "*.html"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.pdf", "scan.png"}, baseNames(files))
}

func TestDiscoverSortedAndDeduplicated(t *testing.T) {
	dir := setupTree(t)
	pdf := filepath.Join(dir, "report.pdf")

	// The directory scan finds report.pdf again; it appears once.
	files, err := Discover([]string{pdf, dir, pdf}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.md"), pdf}, files)
	assert.True(t, sort.StringsAreSorted(files))
}

func TestDiscoverMissingPath(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
