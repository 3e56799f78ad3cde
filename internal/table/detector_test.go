package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polmat77/classreviewmaster/internal/layout"
)

func headerRow(y float64, labels ...string) layout.Row {
	row := layout.Row{Page: 1, Y: y}
	for i, label := range labels {
		row.Fragments = append(row.Fragments, layout.TextFragment{
			Text: label,
			X:    float64(i) * 100,
			Y:    y,
			Page: 1,
		})
	}
	return row
}

func TestDetectHeader_KeywordMatch(t *testing.T) {
	rows := []layout.Row{
		headerRow(10, "Collège Jean Moulin"),
		headerRow(40, "Élève", "MATHS", "FRANC", "Moyenne"),
		headerRow(60, "Dupont Jean", "14,5", "Abs", "14,5"),
	}

	model, err := DetectHeader(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, model.HeaderIndex)
	require.Len(t, model.Anchors, 4)

	assert.Equal(t, RoleName, model.Anchors[0].Role)
	assert.Equal(t, RoleSubject, model.Anchors[1].Role)
	assert.Equal(t, RoleSubject, model.Anchors[2].Role)
	assert.Equal(t, RoleAverage, model.Anchors[3].Role)
}

func TestDetectHeader_AnchorsNonOverlapping(t *testing.T) {
	rows := []layout.Row{headerRow(10, "Nom", "MATHS", "ANGLAIS", "Moyenne")}

	model, err := DetectHeader(rows)
	require.NoError(t, err)

	for i := 0; i < len(model.Anchors)-1; i++ {
		assert.LessOrEqual(t, model.Anchors[i].X, model.Anchors[i+1].X)
		assert.InDelta(t, model.Anchors[i+1].X-model.Anchors[i].X, model.Anchors[i].Width, 1e-9)
	}
	assert.InDelta(t, lastColumnWidth, model.Anchors[len(model.Anchors)-1].Width, 1e-9)
}

func TestDetectHeader_SubjectKeywordOnly(t *testing.T) {
	// Long-format header naming the subject column without any name or
	// average keyword.
	rows := []layout.Row{
		headerRow(10, "Matière", "Note", "Appréciation"),
		headerRow(30, "MATHÉMATIQUES", "13,5", "Bon trimestre"),
	}

	model, err := DetectHeader(rows)
	require.NoError(t, err)
	assert.Equal(t, 0, model.HeaderIndex)
	require.Len(t, model.Anchors, 3)
	assert.Equal(t, RoleSubject, model.Anchors[0].Role)
}

func TestDetectHeader_AverageMarkerFallback(t *testing.T) {
	// Header that repeats a generic sub-header instead of naming
	// subjects and carries no name keyword.
	rows := []layout.Row{
		headerRow(10, "3ème B"),
		headerRow(40, "Moy.", "Moy.", "Moy.", "Moy."),
	}

	model, err := DetectHeader(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, model.HeaderIndex)
}

func TestDetectHeader_TooFewFragments(t *testing.T) {
	rows := []layout.Row{headerRow(10, "Élève", "Moyenne")}

	_, err := DetectHeader(rows)
	require.ErrorIs(t, err, ErrNoHeaderDetected)
}

func TestDetectHeader_NoHeader(t *testing.T) {
	rows := []layout.Row{
		headerRow(10, "Quelque", "chose", "d'autre"),
		headerRow(30, "encore", "du", "texte"),
	}

	_, err := DetectHeader(rows)
	require.ErrorIs(t, err, ErrNoHeaderDetected)
}

func TestClassifyHeaderLabel(t *testing.T) {
	tests := []struct {
		label string
		role  ColumnRole
	}{
		{"Élève", RoleName},
		{"Nom de l'élève", RoleName},
		{"Student", RoleName},
		{"Moyenne", RoleAverage},
		{"Moyenne générale", RoleAverage},
		// A qualified average is per-subject, not the overall average.
		{"Moyenne par matière", RoleSubject},
		{"Rang", RoleOther},
		{"Total", RoleOther},
		{"Absences", RoleOther},
		{"MATHS", RoleSubject},
		{"Histoire-Géo", RoleSubject},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.role, classifyHeaderLabel(tt.label), tt.label)
	}
}

func TestNearestAnchor(t *testing.T) {
	model := &ColumnModel{Anchors: []ColumnAnchor{
		{X: 0}, {X: 100}, {X: 200},
	}}

	assert.Equal(t, 0, model.NearestAnchor(10))
	assert.Equal(t, 1, model.NearestAnchor(120))
	assert.Equal(t, 2, model.NearestAnchor(500))
}
