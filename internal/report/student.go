package report

// AverageSource tells whether a student's overall average was read
// from the document or computed from individual grades. Declared and
// derived averages are not numerically interchangeable for auditing.
type AverageSource int

const (
	// AverageNone means no average is available at all.
	AverageNone AverageSource = iota
	// AverageDeclared means the document carried an explicit average.
	AverageDeclared
	// AverageDerived means the average was computed as the mean of the
	// student's present grades.
	AverageDerived
)

func (s AverageSource) String() string {
	switch s {
	case AverageDeclared:
		return "declared"
	case AverageDerived:
		return "derived"
	default:
		return "none"
	}
}

// StudentRecord is the normalized record for one student in one term.
type StudentRecord struct {
	Name          string           `json:"name"`
	Grades        map[string]Grade `json:"grades"`
	Average       Grade            `json:"average"`
	AverageSource AverageSource    `json:"average_source"`
	Comments      map[string]string `json:"comments,omitempty"`
	TeacherNames  map[string]string `json:"teacher_names,omitempty"`
	ClassAverages map[string]Grade  `json:"class_averages,omitempty"`

	// NameGuessed flags records whose name came from a positional
	// fallback (first column) rather than a detected name field.
	NameGuessed bool `json:"name_guessed,omitempty"`
}

// NewStudentRecord creates an empty record for the given student.
func NewStudentRecord(name string) *StudentRecord {
	return &StudentRecord{
		Name:          name,
		Grades:        make(map[string]Grade),
		Comments:      make(map[string]string),
		TeacherNames:  make(map[string]string),
		ClassAverages: make(map[string]Grade),
	}
}

// SubjectFeedback is one (subject, teacher, average, remark) tuple
// extracted from a student's bulletin.
type SubjectFeedback struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher,omitempty"`
	Average Grade  `json:"average"`
	Remark  string `json:"remark"`
}

// AttachFeedback folds a feedback tuple into the record.
func (r *StudentRecord) AttachFeedback(fb SubjectFeedback) {
	r.Grades[fb.Subject] = fb.Average
	if fb.Remark != "" {
		r.Comments[fb.Subject] = fb.Remark
	}
	if fb.Teacher != "" {
		r.TeacherNames[fb.Subject] = fb.Teacher
	}
}

// FinalizeAverage fills in the derived average when no declared one is
// available. A record with zero present grades keeps an absent average:
// "undefined" must stay distinguishable from zero.
func (r *StudentRecord) FinalizeAverage() {
	if r.AverageSource == AverageDeclared && r.Average.Present() {
		return
	}
	grades := make([]Grade, 0, len(r.Grades))
	for _, g := range r.Grades {
		grades = append(grades, g)
	}
	if mean, ok := MeanGrades(grades); ok {
		r.Average = NewGrade(mean)
		r.AverageSource = AverageDerived
		return
	}
	r.Average = AbsentGrade()
	r.AverageSource = AverageNone
}

// SubjectNames returns the record's subject names in unspecified order.
func (r *StudentRecord) SubjectNames() []string {
	names := make([]string, 0, len(r.Grades))
	for s := range r.Grades {
		names = append(names, s)
	}
	return names
}
