package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeAverage_DerivedSkipsAbsent(t *testing.T) {
	r := NewStudentRecord("Dupont Jean")
	r.Grades["A"] = NewGrade(12)
	r.Grades["B"] = AbsentGrade()
	r.Grades["C"] = NewGrade(16)

	r.FinalizeAverage()

	v, ok := r.Average.Value()
	require.True(t, ok)
	assert.InDelta(t, 14.0, v, 1e-9, "absent grades must not count as zero")
	assert.Equal(t, AverageDerived, r.AverageSource)
}

func TestFinalizeAverage_DeclaredWins(t *testing.T) {
	r := NewStudentRecord("Dupont Jean")
	r.Grades["A"] = NewGrade(10)
	r.Average = NewGrade(14.5)
	r.AverageSource = AverageDeclared

	r.FinalizeAverage()

	v, ok := r.Average.Value()
	require.True(t, ok)
	assert.InDelta(t, 14.5, v, 1e-9)
	assert.Equal(t, AverageDeclared, r.AverageSource)
}

func TestFinalizeAverage_NoGradesUndefined(t *testing.T) {
	r := NewStudentRecord("Martin")
	r.Grades["A"] = AbsentGrade()

	r.FinalizeAverage()

	assert.False(t, r.Average.Present(), "average of zero present grades is undefined, not zero")
	assert.Equal(t, AverageNone, r.AverageSource)
}

func TestAttachFeedback(t *testing.T) {
	r := NewStudentRecord("Martin")
	r.AttachFeedback(SubjectFeedback{
		Subject: "Mathématiques",
		Teacher: "M. Bernard",
		Average: NewGrade(13.5),
		Remark:  "Bon trimestre.",
	})

	assert.Equal(t, "Bon trimestre.", r.Comments["Mathématiques"])
	assert.Equal(t, "M. Bernard", r.TeacherNames["Mathématiques"])
	v, ok := r.Grades["Mathématiques"].Value()
	require.True(t, ok)
	assert.InDelta(t, 13.5, v, 1e-9)
}

func TestAverageSourceString(t *testing.T) {
	assert.Equal(t, "none", AverageNone.String())
	assert.Equal(t, "declared", AverageDeclared.String())
	assert.Equal(t, "derived", AverageDerived.String())
}
