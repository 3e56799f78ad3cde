package report

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade_DecimalSeparators(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"14.5", 14.5},
		{"14,5", 14.5},
		{"0", 0},
		{"0,0", 0},
		{"20", 20},
		{" 12,25 ", 12.25},
		{"15/20", 15},
		{"15,5/20", 15.5},
	}

	for _, tt := range tests {
		g := ParseGrade(tt.input)
		v, ok := g.Value()
		require.True(t, ok, "ParseGrade(%q) should be present", tt.input)
		assert.InDelta(t, tt.expected, v, 1e-9, "ParseGrade(%q)", tt.input)
	}
}

func TestParseGrade_AbsenceMarkers(t *testing.T) {
	for _, input := range []string{"", "-", "--", "Abs", "ABS.", "Absent", "Disp.", "N.Not", "NN", "n/a", "Non noté"} {
		g := ParseGrade(input)
		assert.False(t, g.Present(), "ParseGrade(%q) should be absent", input)
	}
}

func TestParseGrade_InvalidNeverZero(t *testing.T) {
	for _, input := range []string{"??", "quatorze", "12,5,3", "-3"} {
		g := ParseGrade(input)
		v, ok := g.Value()
		assert.False(t, ok, "ParseGrade(%q) should be absent, got %v", input, v)
	}
}

func TestParseGrade_ZeroIsValid(t *testing.T) {
	g := ParseGrade("0")
	v, ok := g.Value()
	require.True(t, ok)
	assert.Zero(t, v)
}

// TestParseGrade_SeparatorRoundTrip checks that "," and "." spellings
// of the same number parse identically across the whole grade scale.
func TestParseGrade_SeparatorRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("comma and dot parse equally", prop.ForAll(
		func(whole int, frac int) bool {
			dotted := ParseGrade(intPairToString(whole, frac, "."))
			comma := ParseGrade(intPairToString(whole, frac, ","))
			dv, dok := dotted.Value()
			cv, cok := comma.Value()
			return dok && cok && dv == cv
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}

func intPairToString(whole, frac int, sep string) string {
	return fmtInt(whole) + sep + fmtInt(frac)
}

func fmtInt(v int) string {
	return string(rune('0'+v/10)) + string(rune('0'+v%10))
}

func TestMeanGrades(t *testing.T) {
	mean, ok := MeanGrades([]Grade{NewGrade(12), AbsentGrade(), NewGrade(16)})
	require.True(t, ok)
	assert.InDelta(t, 14.0, mean, 1e-9)

	_, ok = MeanGrades([]Grade{AbsentGrade(), AbsentGrade()})
	assert.False(t, ok)

	_, ok = MeanGrades(nil)
	assert.False(t, ok)
}

func TestGradeJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(NewGrade(14.5))
	require.NoError(t, err)
	assert.Equal(t, "14.5", string(data))

	data, err = json.Marshal(AbsentGrade())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var g Grade
	require.NoError(t, json.Unmarshal([]byte("null"), &g))
	assert.False(t, g.Present())

	require.NoError(t, json.Unmarshal([]byte("9.75"), &g))
	v, ok := g.Value()
	require.True(t, ok)
	assert.InDelta(t, 9.75, v, 1e-9)
}
