package pipeline

import (
	"errors"
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeclarative struct {
	doc *document.Document
	err error
}

func (b *fakeDeclarative) IsValid() bool { return true }
func (b *fakeDeclarative) Close() error  { return nil }

func (b *fakeDeclarative) Convert() (*document.Document, error) {
	return b.doc, b.err
}

func declarativeInput(b document.Backend) *document.InputDocument {
	return &document.InputDocument{
		File:    "notes.md",
		Format:  format.Markdown,
		Limits:  document.DefaultLimits(),
		Valid:   true,
		Backend: b,
	}
}

func TestSimplePipelineConverts(t *testing.T) {
	doc := document.NewDocument("notes.md")
	doc.AddItem(&document.Item{Label: document.LabelTitle, Text: "Notes"})

	pipe, err := NewSimple(DefaultSimpleOptions())
	require.NoError(t, err)

	res, err := pipe.Execute(declarativeInput(&fakeDeclarative{doc: doc}), true)
	require.NoError(t, err)
	assert.Equal(t, document.StatusSuccess, res.Status)
	require.NotNil(t, res.Document)
	assert.Equal(t, "Notes", res.Document.Items[0].Text)
	assert.Contains(t, res.Timings, "pipeline_total")
}

func TestSimplePipelineConvertError(t *testing.T) {
	pipe, err := NewSimple(DefaultSimpleOptions())
	require.NoError(t, err)

	in := declarativeInput(&fakeDeclarative{err: errors.New("malformed markup")})
	res, execErr := pipe.Execute(in, true)
	require.Error(t, execErr)
	var convErr *document.ConversionError
	assert.ErrorAs(t, execErr, &convErr)
	assert.Equal(t, document.StatusFailure, res.Status)

	res, execErr = pipe.Execute(in, false)
	require.NoError(t, execErr)
	assert.Equal(t, document.StatusFailure, res.Status)
	assert.Nil(t, res.Document)
}

func TestSimplePipelineRunsEnrichment(t *testing.T) {
	doc := document.NewDocument("snippet.md")
	doc.AddItem(&document.Item{
		Label: document.LabelCode,
		Text:  "package main\n\nfunc main() {\n\tx := 1\n\tfmt.Println(x)\n}",
	})

	opts := DefaultSimpleOptions()
	opts.DoCodeEnrichment = true
	pipe, err := NewSimple(opts)
	require.NoError(t, err)

	res, err := pipe.Execute(declarativeInput(&fakeDeclarative{doc: doc}), true)
	require.NoError(t, err)
	assert.Equal(t, "go", res.Document.Items[0].CodeLanguage)
}

func TestSimplePipelineRejectsPaginatedBackend(t *testing.T) {
	pipe, err := NewSimple(DefaultSimpleOptions())
	require.NoError(t, err)

	in := declarativeInput(&fakePaginated{})
	res, execErr := pipe.Execute(in, false)
	require.NoError(t, execErr)
	assert.Equal(t, document.StatusFailure, res.Status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, document.ComponentBackend, res.Errors[0].Component)

	assert.False(t, pipe.SupportsBackend(&fakePaginated{}))
	assert.True(t, pipe.SupportsBackend(&fakeDeclarative{}))
}

func TestSimplePipelineRejectsForeignOptions(t *testing.T) {
	_, err := NewSimple(DefaultPaginatedOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paginated")
}
