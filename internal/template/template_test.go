package template

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRoundTrip(t *testing.T) {
	tpl := New("pronote-3b")
	tpl.Prose.BlockDelimiter = `(?i)bulletin du \d+er trimestre`
	tpl.Prose.StudentName = `(?i)élève\s*:\s*([\p{L}' -]+)`
	tpl.Prose.Custom = map[string]string{"absences": `\d+ demi-journées`}
	tpl.Tabular.NameColumn = 0
	tpl.Tabular.GradeColumn = 2

	data, err := tpl.Marshal()
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, tpl, decoded)
}

func TestUnmarshal_AbsentColumnsStayUnused(t *testing.T) {
	decoded, err := Unmarshal([]byte("name: partial\ntabular:\n  name_column: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, decoded.Tabular.NameColumn)
	assert.Equal(t, UnusedColumn, decoded.Tabular.SubjectColumn)
	assert.Equal(t, UnusedColumn, decoded.Tabular.GradeColumn)
}

func TestValidateTabular(t *testing.T) {
	tpl := New("incomplete")
	require.ErrorIs(t, tpl.ValidateTabular(), ErrMissingColumnMapping)

	tpl.Tabular.NameColumn = 0
	tpl.Tabular.SubjectColumn = 1
	require.ErrorIs(t, tpl.ValidateTabular(), ErrMissingColumnMapping)

	tpl.Tabular.GradeColumn = 2
	require.NoError(t, tpl.ValidateTabular())
}

func TestHasRules(t *testing.T) {
	tpl := New("empty")
	assert.False(t, tpl.HasProseRules())
	assert.False(t, tpl.HasTabularRules())

	tpl.Prose.Subject = `(?m)^([A-Z]+)`
	assert.True(t, tpl.HasProseRules())

	tpl.Tabular.NameColumn = 0
	tpl.Tabular.SubjectColumn = 1
	tpl.Tabular.GradeColumn = 2
	assert.True(t, tpl.HasTabularRules())
}

func TestLoadSaveFile(t *testing.T) {
	tpl := New("disk")
	tpl.Tabular.NameColumn = 0
	tpl.Tabular.SubjectColumn = 1
	tpl.Tabular.GradeColumn = 3

	path := filepath.Join(t.TempDir(), "disk.yaml")
	require.NoError(t, tpl.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tpl, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
