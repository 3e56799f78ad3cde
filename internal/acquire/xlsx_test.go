package acquire

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, cells [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for r, row := range cells {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "notes.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_Extract(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Élève", "Matière", "Note"},
		{"Dupont Jean", "MATHS", "14,5"},
		{"Durand Léa", "MATHS", "16"},
	})

	doc, err := NewXLSXSource(path).Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "xlsx", doc.Kind)
	require.Len(t, doc.TabularRows, 3)
	assert.Equal(t, "Dupont Jean", doc.TabularRows[1][0])

	maps := doc.RowMaps()
	require.Len(t, maps, 2)
	assert.Equal(t, "16", maps[1]["Note"])

	require.Len(t, doc.Pages, 1)
	assert.Len(t, doc.Pages[0].Fragments, 9)
}

func TestXLSXSource_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"a"}})

	_, err := NewXLSXSource(path).WithSheet("Feuille inconnue").Extract(context.Background())
	require.Error(t, err)
}

func TestXLSXSource_MissingFile(t *testing.T) {
	_, err := NewXLSXSource(filepath.Join(t.TempDir(), "missing.xlsx")).Extract(context.Background())
	require.Error(t, err)
}

func TestXLSXSource_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewXLSXSource("whatever.xlsx").Extract(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
