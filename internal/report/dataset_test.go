package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func student(name string, avg float64, grades map[string]float64) StudentRecord {
	r := NewStudentRecord(name)
	for subj, v := range grades {
		r.Grades[subj] = NewGrade(v)
	}
	r.Average = NewGrade(avg)
	r.AverageSource = AverageDeclared
	return *r
}

func TestBuildDataset_SubjectUnionSorted(t *testing.T) {
	students := []StudentRecord{
		student("A", 12, map[string]float64{"Maths": 12, "Anglais": 14}),
		student("B", 10, map[string]float64{"Maths": 8, "Histoire": 11}),
	}

	ds := BuildDataset(students, Meta{Term: "Trimestre 1"})

	assert.Equal(t, []string{"Anglais", "Histoire", "Maths"}, ds.Subjects)
	assert.Equal(t, "Trimestre 1", ds.Meta.Term)
	for _, s := range ds.Students {
		for subj := range s.Grades {
			assert.Contains(t, ds.Subjects, subj)
		}
	}
}

func TestBuildDataset_Averages(t *testing.T) {
	students := []StudentRecord{
		student("A", 12, map[string]float64{"Maths": 12}),
		student("B", 16, map[string]float64{"Maths": 10}),
	}

	ds := BuildDataset(students, Meta{})

	v, ok := ds.ClassAverage.Value()
	require.True(t, ok)
	assert.InDelta(t, 14.0, v, 1e-9)

	mv, ok := ds.SubjectAverages["Maths"].Value()
	require.True(t, ok)
	assert.InDelta(t, 11.0, mv, 1e-9)
}

func TestBuildDataset_EmptyStudents(t *testing.T) {
	ds := BuildDataset(nil, Meta{})
	assert.Empty(t, ds.Subjects)
	assert.False(t, ds.ClassAverage.Present())
}

func TestBucketBoundaries(t *testing.T) {
	buckets := DefaultBuckets()

	tests := []struct {
		value float64
		label string
	}{
		{0, "0-5"},
		{4.99, "0-5"},
		{5, "5-10"},
		{9.99, "5-10"},
		{10.0, "10-13"}, // boundary value belongs to the upper bucket
		{12.99, "10-13"},
		{13, "13-15"},
		{15, "15-20"},
		{20, "15-20"}, // last bucket is upper-inclusive
	}

	for _, tt := range tests {
		i := bucketIndex(buckets, tt.value)
		require.GreaterOrEqual(t, i, 0, "value %v", tt.value)
		assert.Equal(t, tt.label, buckets[i].Label, "value %v", tt.value)
	}

	assert.Equal(t, -1, bucketIndex(buckets, 20.5))
	assert.Equal(t, -1, bucketIndex(buckets, -0.5))
}

func TestBuildDataset_Distribution(t *testing.T) {
	students := []StudentRecord{
		student("A", 10.0, nil),
		student("B", 4.0, nil),
		student("C", 18.0, nil),
	}
	noAvg := *NewStudentRecord("D")
	students = append(students, noAvg)

	ds := BuildDataset(students, Meta{})

	counts := map[string]int{}
	for _, b := range ds.Distribution {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, 1, counts["0-5"])
	assert.Equal(t, 0, counts["5-10"], "average exactly 10 must not land in [5,10)")
	assert.Equal(t, 1, counts["10-13"])
	assert.Equal(t, 1, counts["15-20"])
}

func TestMergeSingleStudentSets(t *testing.T) {
	a := []StudentRecord{student("A", 12, nil)}
	b := []StudentRecord{student("B", 14, nil)}

	merged, err := MergeSingleStudentSets([][]StudentRecord{a, nil, b})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "A", merged[0].Name)
	assert.Equal(t, "B", merged[1].Name)

	_, err = MergeSingleStudentSets([][]StudentRecord{{student("A", 12, nil), student("B", 14, nil)}})
	require.Error(t, err)
}

func TestSampleDataset(t *testing.T) {
	ds := SampleDataset()
	require.NotNil(t, ds)
	assert.NotEmpty(t, ds.Students)
	assert.NotEmpty(t, ds.Subjects)
	for _, s := range ds.Students {
		assert.True(t, s.Average.Present())
	}
}
