package backend

import (
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convertHTML(t *testing.T, markup string) *document.Document {
	t.Helper()
	bk, err := NewHTML(Source{Name: "page.html", Data: []byte(markup)})
	require.NoError(t, err)
	require.True(t, bk.IsValid())
	doc, err := bk.(document.DeclarativeBackend).Convert()
	require.NoError(t, err)
	return doc
}

func TestHTMLBackendStructure(t *testing.T) {
	doc := convertHTML(t, `<html><body>
		<h1>Page Title</h1>
		<h2>Section</h2>
		<p>A   paragraph with
		collapsed whitespace.</p>
		<ul><li>alpha</li><li>beta</li></ul>
	</body></html>`)

	require.Len(t, doc.Items, 5)
	assert.Equal(t, document.LabelTitle, doc.Items[0].Label)
	assert.Equal(t, "Page Title", doc.Items[0].Text)
	assert.Equal(t, document.LabelSectionHeader, doc.Items[1].Label)
	assert.Equal(t, "A paragraph with collapsed whitespace.", doc.Items[2].Text)
	assert.Equal(t, document.LabelListItem, doc.Items[3].Label)
	assert.Equal(t, "alpha", doc.Items[3].Text)
}

func TestHTMLBackendTable(t *testing.T) {
	doc := convertHTML(t, `<table>
		<tr><th>Name</th><th>Age</th></tr>
		<tr><td>alice</td><td>30</td></tr>
	</table>`)

	require.Len(t, doc.Items, 1)
	table := doc.Items[0].Table
	require.NotNil(t, table)
	assert.Equal(t, 2, table.NumRows)
	assert.Equal(t, 2, table.NumCols)
	assert.Equal(t, []string{"Name", "Age"}, table.Grid[0])
	assert.Equal(t, []string{"alice", "30"}, table.Grid[1])
}

func TestHTMLBackendImageAlt(t *testing.T) {
	doc := convertHTML(t, `<p>before</p><img src="x.png" alt="bar chart">`)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, document.LabelPicture, doc.Items[1].Label)
	assert.Equal(t, "bar chart", doc.Items[1].Description)
}

func TestHTMLBackendStripsScripts(t *testing.T) {
	doc := convertHTML(t, `<p>visible</p><script>alert("nope")</script>`)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "visible", doc.Items[0].Text)
}

func TestHTMLBackendListParagraphNotDuplicated(t *testing.T) {
	doc := convertHTML(t, `<ul><li><p>only once</p></li></ul>`)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, document.LabelListItem, doc.Items[0].Label)
	assert.Equal(t, "only once", doc.Items[0].Text)
}
