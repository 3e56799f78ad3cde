package report

import (
	"fmt"
	"sort"
)

// Bucket is one range of the class average distribution. Min is
// inclusive; Max is exclusive except on the last bucket, which is
// inclusive so the top grade of the scale is counted.
type Bucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// DefaultBuckets returns the distribution ranges used for class
// datasets: [0,5) [5,10) [10,13) [13,15) [15,20].
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Label: "0-5", Min: 0, Max: 5},
		{Label: "5-10", Min: 5, Max: 10},
		{Label: "10-13", Min: 10, Max: 13},
		{Label: "13-15", Min: 13, Max: 15},
		{Label: "15-20", Min: 15, Max: 20},
	}
}

// Meta carries the term/class/school context a dataset is scoped to.
type Meta struct {
	Term       string `json:"term,omitempty"`
	ClassName  string `json:"class_name,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
}

// ClassDataset is the aggregate of one analysis run. It is built fresh
// per run and never mutated incrementally.
type ClassDataset struct {
	Meta            Meta             `json:"meta"`
	Students        []StudentRecord  `json:"students"`
	Subjects        []string         `json:"subjects"`
	ClassAverage    Grade            `json:"class_average"`
	SubjectAverages map[string]Grade `json:"subject_averages"`
	Distribution    []Bucket         `json:"distribution"`
}

// BuildDataset derives a class dataset from student records: the
// deduplicated sorted subject union, per-subject and class averages
// over present grades only, and the bucketed average distribution.
func BuildDataset(students []StudentRecord, meta Meta) *ClassDataset {
	subjectSet := make(map[string]struct{})
	for _, s := range students {
		for subj := range s.Grades {
			subjectSet[subj] = struct{}{}
		}
	}
	subjects := make([]string, 0, len(subjectSet))
	for subj := range subjectSet {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)

	subjectAverages := make(map[string]Grade, len(subjects))
	for _, subj := range subjects {
		var grades []Grade
		for _, s := range students {
			if g, ok := s.Grades[subj]; ok {
				grades = append(grades, g)
			}
		}
		if mean, ok := MeanGrades(grades); ok {
			subjectAverages[subj] = NewGrade(mean)
		} else {
			subjectAverages[subj] = AbsentGrade()
		}
	}

	var averages []Grade
	for _, s := range students {
		averages = append(averages, s.Average)
	}
	classAverage := AbsentGrade()
	if mean, ok := MeanGrades(averages); ok {
		classAverage = NewGrade(mean)
	}

	buckets := DefaultBuckets()
	for _, s := range students {
		if v, ok := s.Average.Value(); ok {
			if i := bucketIndex(buckets, v); i >= 0 {
				buckets[i].Count++
			}
		}
	}

	return &ClassDataset{
		Meta:            meta,
		Students:        students,
		Subjects:        subjects,
		ClassAverage:    classAverage,
		SubjectAverages: subjectAverages,
		Distribution:    buckets,
	}
}

// bucketIndex places v using the lower-inclusive, upper-exclusive
// convention; the last bucket includes its upper bound.
func bucketIndex(buckets []Bucket, v float64) int {
	for i, b := range buckets {
		last := i == len(buckets)-1
		if v >= b.Min && (v < b.Max || (last && v <= b.Max)) {
			return i
		}
	}
	return -1
}

// MergeSingleStudentSets combines per-document record sets into one
// student list for aggregation. It is intended for the one-bulletin-
// per-file upload flow and fails when a document resolved to more than
// one student.
func MergeSingleStudentSets(perDocument [][]StudentRecord) ([]StudentRecord, error) {
	var merged []StudentRecord
	for i, records := range perDocument {
		switch len(records) {
		case 0:
			// Empty documents were already reported upstream.
		case 1:
			merged = append(merged, records[0])
		default:
			return nil, fmt.Errorf("document %d resolved to %d students, expected one per file", i+1, len(records))
		}
	}
	return merged, nil
}

// SampleDataset returns the placeholder dataset handed back when a
// document defeats every extraction strategy. Callers tag the result
// as degraded so the placeholder is never mistaken for real data.
func SampleDataset() *ClassDataset {
	names := []string{"Élève A", "Élève B", "Élève C"}
	grades := []float64{11.5, 13, 8.5}
	students := make([]StudentRecord, 0, len(names))
	for i, name := range names {
		r := NewStudentRecord(name)
		r.Grades["Matière 1"] = NewGrade(grades[i])
		r.Grades["Matière 2"] = NewGrade(grades[(i+1)%len(grades)])
		r.FinalizeAverage()
		students = append(students, *r)
	}
	return BuildDataset(students, Meta{})
}
