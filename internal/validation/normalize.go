package validation

import (
	"strings"
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
)

var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Student validates a student form and returns the normalized record.
func (v *Validator) Student(form dto.StudentForm, mode models.FormMode) (*models.StudentRecord, error) {
	if err := v.check(form, passwordRequired(mode, form.Password, "Password must be at least 8 characters long!")); err != nil {
		return nil, err
	}

	birthday, _ := parseDate(form.Birthday)
	return &models.StudentRecord{
		Student: models.Student{
			Username:  strings.TrimSpace(form.Username),
			Name:      strings.TrimSpace(form.Name),
			Surname:   strings.TrimSpace(form.Surname),
			Email:     optionalString(form.Email),
			Phone:     optionalString(form.Phone),
			Address:   strings.TrimSpace(form.Address),
			Img:       optionalString(form.Img),
			BloodType: strings.TrimSpace(form.BloodType),
			Sex:       models.Sex(form.Sex),
			Birthday:  birthday,
			GradeID:   form.GradeID,
			ClassID:   form.ClassID,
			ParentID:  strings.TrimSpace(form.ParentID),
		},
		Password: form.Password,
	}, nil
}

// Teacher validates a teacher form and returns the normalized record.
func (v *Validator) Teacher(form dto.TeacherForm, mode models.FormMode) (*models.TeacherRecord, error) {
	if err := v.check(form, passwordRequired(mode, form.Password, "Password must be at least 8 characters long!")); err != nil {
		return nil, err
	}

	birthday, _ := parseDate(form.Birthday)
	return &models.TeacherRecord{
		Teacher: models.Teacher{
			Username:   strings.TrimSpace(form.Username),
			Name:       strings.TrimSpace(form.Name),
			Surname:    strings.TrimSpace(form.Surname),
			Email:      optionalString(form.Email),
			Phone:      optionalString(form.Phone),
			Address:    strings.TrimSpace(form.Address),
			Img:        optionalString(form.Img),
			BloodType:  strings.TrimSpace(form.BloodType),
			Sex:        models.Sex(form.Sex),
			Birthday:   birthday,
			SubjectIDs: uniqueInt64s(form.Subjects),
		},
		Password: form.Password,
	}, nil
}

// Parent validates a parent create form.
func (v *Validator) Parent(form dto.ParentForm, mode models.FormMode) (*models.ParentRecord, error) {
	if err := v.check(form, passwordRequired(mode, form.Password, "Password must be at least 6 characters long!")); err != nil {
		return nil, err
	}

	return &models.ParentRecord{
		Parent: models.Parent{
			Username:   strings.TrimSpace(form.Username),
			Name:       strings.TrimSpace(form.Name),
			Surname:    strings.TrimSpace(form.Surname),
			Email:      optionalString(form.Email),
			Phone:      optionalString(form.Phone),
			Address:    strings.TrimSpace(form.Address),
			StudentIDs: uniqueStrings(form.StudentIDs),
		},
		Password: form.Password,
	}, nil
}

// ParentPatch validates a partial parent update. Only present fields are kept;
// an empty password means keep the current one.
func (v *Validator) ParentPatch(form dto.ParentPatchForm) (*models.ParentPatch, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	patch := &models.ParentPatch{
		Username: trimmedPtr(form.Username),
		Name:     trimmedPtr(form.Name),
		Surname:  trimmedPtr(form.Surname),
		Email:    trimmedPtr(form.Email),
		Phone:    trimmedPtr(form.Phone),
		Address:  trimmedPtr(form.Address),
	}
	if form.Password != nil && *form.Password != "" {
		password := *form.Password
		patch.Password = &password
	}
	return patch, nil
}

// Class validates a class form.
func (v *Validator) Class(form dto.ClassForm) (*models.Class, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}
	return &models.Class{
		Name:         strings.TrimSpace(form.Name),
		Capacity:     form.Capacity,
		GradeID:      form.GradeID,
		SupervisorID: optionalString(form.SupervisorID),
	}, nil
}

// Subject validates a subject form.
func (v *Validator) Subject(form dto.SubjectForm) (*models.Subject, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}
	return &models.Subject{
		Name:       strings.TrimSpace(form.Name),
		TeacherIDs: uniqueStrings(form.Teachers),
	}, nil
}

// Lesson validates a lesson form and pins the HH:mm times to 1970-01-01 UTC.
func (v *Validator) Lesson(form dto.LessonForm) (*models.Lesson, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	start, _ := parseClock(form.StartTime, epoch)
	end, _ := parseClock(form.EndTime, epoch)
	return &models.Lesson{
		Name:      strings.TrimSpace(form.Name),
		Day:       models.Weekday(form.Day),
		StartTime: start,
		EndTime:   end,
		SubjectID: form.SubjectID,
		ClassID:   form.ClassID,
		TeacherID: strings.TrimSpace(form.TeacherID),
	}, nil
}

// Exam validates an exam form.
func (v *Validator) Exam(form dto.ExamForm) (*models.Exam, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	start, _ := parseDate(form.StartTime)
	end, _ := parseDate(form.EndTime)
	return &models.Exam{
		Title:     strings.TrimSpace(form.Title),
		StartTime: start,
		EndTime:   end,
		LessonID:  form.LessonID,
	}, nil
}

// Assignment validates an assignment form, including the due date ordering.
func (v *Validator) Assignment(form dto.AssignmentForm) (*models.Assignment, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	start, _ := parseDate(form.StartDate)
	due, _ := parseDate(form.DueDate)
	return &models.Assignment{
		Title:     strings.TrimSpace(form.Title),
		StartDate: start,
		DueDate:   due,
		SubjectID: optionalID(form.SubjectID),
		LessonID:  optionalID(form.LessonID),
		ClassID:   optionalID(form.ClassID),
		TeacherID: optionalString(form.TeacherID),
	}, nil
}

// Result validates a result form. A missing date defaults to now.
func (v *Validator) Result(form dto.ResultForm) (*models.Result, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	date := v.now().UTC()
	if strings.TrimSpace(form.Date) != "" {
		date, _ = parseDate(form.Date)
	}
	return &models.Result{
		Score:        *form.Score,
		Date:         date,
		ExamID:       optionalID(form.ExamID),
		AssignmentID: optionalID(form.AssignmentID),
		StudentID:    strings.TrimSpace(form.StudentID),
		TeacherID:    optionalString(form.TeacherID),
		ClassID:      form.ClassID,
	}, nil
}

// Event validates an event form. Start and end default to now when omitted;
// given HH:mm values are placed on the event date.
func (v *Validator) Event(form dto.EventForm) (*models.Event, error) {
	if err := v.check(form, nil); err != nil {
		return nil, err
	}

	date, _ := parseDate(form.Date)
	now := v.now().UTC()
	start, end := now, now
	if strings.TrimSpace(form.StartTime) != "" {
		start, _ = parseClock(form.StartTime, date)
	}
	if strings.TrimSpace(form.EndTime) != "" {
		end, _ = parseClock(form.EndTime, date)
	}
	return &models.Event{
		Title:       strings.TrimSpace(form.Title),
		Date:        date,
		Description: strings.TrimSpace(form.Description),
		StartTime:   start,
		EndTime:     end,
		ClassID:     optionalID(form.ClassID),
	}, nil
}

func passwordRequired(mode models.FormMode, password, message string) map[string]string {
	if mode == models.ModeCreate && password == "" {
		return map[string]string{"password": message}
	}
	return nil
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimmedPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	return &trimmed
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// uniqueStrings keeps nil for an absent list so callers can tell it from an
// explicit empty one.
func uniqueStrings(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func uniqueInt64s(values []int64) []int64 {
	if values == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(values))
	out := make([]int64, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
