package backend

import (
	"testing"

	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVBackendConvert(t *testing.T) {
	src := Source{Name: "data.csv", Data: []byte("name,age\nalice,30\nbob,25\n")}
	bk, err := NewCSV(src)
	require.NoError(t, err)
	require.True(t, bk.IsValid())
	defer bk.Close()

	doc, err := bk.(document.DeclarativeBackend).Convert()
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)

	table := doc.Items[0].Table
	require.NotNil(t, table)
	assert.Equal(t, document.LabelTable, doc.Items[0].Label)
	assert.Equal(t, 3, table.NumRows)
	assert.Equal(t, 2, table.NumCols)
	assert.Equal(t, []string{"name", "age"}, table.Grid[0])
	assert.Equal(t, []string{"bob", "25"}, table.Grid[2])
}

func TestCSVBackendRaggedRows(t *testing.T) {
	src := Source{Name: "ragged.csv", Data: []byte("a,b,c\nd\ne,f\n")}
	bk, err := NewCSV(src)
	require.NoError(t, err)
	require.True(t, bk.IsValid())

	doc, err := bk.(document.DeclarativeBackend).Convert()
	require.NoError(t, err)
	table := doc.Items[0].Table
	assert.Equal(t, 3, table.NumRows)
	assert.Equal(t, 3, table.NumCols)
	assert.Equal(t, []string{"d"}, table.Grid[1])
}

func TestCSVBackendEmptyInvalid(t *testing.T) {
	bk, err := NewCSV(Source{Name: "empty.csv", Data: []byte("")})
	require.NoError(t, err)
	assert.False(t, bk.IsValid())

	_, err = bk.(document.DeclarativeBackend).Convert()
	assert.Error(t, err)
}
