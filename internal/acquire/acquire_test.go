package acquire

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile_Dispatch(t *testing.T) {
	for _, path := range []string{"bulletin.pdf", "notes.XLSX", "notes.csv", "dump.txt"} {
		src, err := ForFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, path, src.Name())
	}

	_, err := ForFile("photo.png")
	require.Error(t, err)
}

func TestGridFragments(t *testing.T) {
	rows := [][]string{
		{"Élève", "MATHS", ""},
		{"Dupont", "", "14,5"},
	}

	fragments := gridFragments(rows)
	require.Len(t, fragments, 3)

	assert.Equal(t, "Élève", fragments[0].Text)
	assert.Equal(t, 0.0, fragments[0].X)
	assert.Equal(t, 0.0, fragments[0].Y)

	assert.Equal(t, "14,5", fragments[2].Text)
	assert.Equal(t, 2*cellWidth, fragments[2].X)
	assert.Equal(t, rowHeight, fragments[2].Y)
}

func TestDocument_RowMaps(t *testing.T) {
	doc := &Document{TabularRows: [][]string{
		{"Élève", "Note"},
		{"Dupont", "14,5"},
		{"Durand"},
	}}

	maps := doc.RowMaps()
	require.Len(t, maps, 2)
	assert.Equal(t, "14,5", maps[0]["Note"])
	assert.Equal(t, "Durand", maps[1]["Élève"])
	_, hasNote := maps[1]["Note"]
	assert.False(t, hasNote, "short rows must not invent cells")

	assert.Nil(t, (&Document{}).RowMaps())
}

func TestDocument_FullTextFromFragments(t *testing.T) {
	doc := FromText("ligne un\nligne deux\n")
	doc.Text = "" // force reconstruction from fragments

	assert.Equal(t, "ligne un\nligne deux", doc.FullText())
}

func TestTextSource_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulletin.txt")
	require.NoError(t, os.WriteFile(path, []byte("Élève : Dupont\nMATHS : 14,5\n"), 0o600))

	src := NewTextSource(path)
	doc, err := src.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "text", doc.Kind)
	assert.Contains(t, doc.Text, "Dupont")
	require.Len(t, doc.Pages, 1)
	assert.Len(t, doc.Pages[0].Fragments, 2)
}

func TestTextReader_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTextReader("mem", "x").Extract(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVSource_SniffsSemicolon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.csv")
	content := "Élève;Matière;Note\nDupont Jean;MATHS;14,5\nDurand Léa;MATHS;16,0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	doc, err := NewCSVSource(path).Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "csv", doc.Kind)
	require.Len(t, doc.TabularRows, 3)
	assert.Equal(t, []string{"Élève", "Matière", "Note"}, doc.TabularRows[0])
	assert.Equal(t, "14,5", doc.TabularRows[1][2])
}

func TestCSVSource_CommaDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(path, []byte("Student,Grade\nDupont,14.5\n"), 0o600))

	doc, err := NewCSVSource(path).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.TabularRows, 2)
	assert.Equal(t, "14.5", doc.TabularRows[1][1])
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Extract(context.Background())
	require.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("a;b;c\n1;2;3"))
	assert.Equal(t, ',', sniffDelimiter("a,b,c"))
	assert.Equal(t, ',', sniffDelimiter(""))
}

func TestPDFSource_MissingFile(t *testing.T) {
	src := NewPDFSource(filepath.Join(t.TempDir(), "missing.pdf"))
	_, err := src.Extract(context.Background())
	require.Error(t, err)
}
