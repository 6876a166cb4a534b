package dto

import "github.com/noah-isme/school-dashboard-api/internal/models"

// RelatedData holds the option lists a form needs. Only the lists relevant to
// the requested entity are populated; Degraded names lists that failed to load
// and were served empty.
type RelatedData struct {
	Teachers    []models.TeacherOption    `json:"teachers,omitempty"`
	Students    []models.StudentOption    `json:"students,omitempty"`
	Parents     []models.ParentOption     `json:"parents,omitempty"`
	Grades      []models.GradeOption      `json:"grades,omitempty"`
	Classes     []models.ClassOption      `json:"classes,omitempty"`
	Subjects    []models.SubjectOption    `json:"subjects,omitempty"`
	Lessons     []models.LessonOption     `json:"lessons,omitempty"`
	Exams       []models.ExamOption       `json:"exams,omitempty"`
	Assignments []models.AssignmentOption `json:"assignments,omitempty"`
	Degraded    []string                  `json:"degraded,omitempty"`
}

// IsDegraded reports whether any list fell back to empty.
func (r *RelatedData) IsDegraded() bool {
	return r != nil && len(r.Degraded) > 0
}
