package dto

// Form payloads are decoded from the dashboard's JSON submissions. Every form
// exposes Messages, keyed "field.tag", which overrides the default translation
// for that rule.

// StudentForm is the create/update payload for a student.
type StudentForm struct {
	Username  string `json:"username" validate:"min=3,max=20"`
	Password  string `json:"password" validate:"omitempty,min=8"`
	Name      string `json:"name" validate:"notblank"`
	Surname   string `json:"surname" validate:"notblank"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"notblank"`
	Img       string `json:"img" validate:"omitempty,url"`
	BloodType string `json:"bloodType" validate:"notblank"`
	Birthday  string `json:"birthday" validate:"required,date"`
	Sex       string `json:"sex" validate:"required,oneof=MALE FEMALE"`
	GradeID   int64  `json:"gradeId" validate:"min=1"`
	ClassID   int64  `json:"classId" validate:"min=1"`
	ParentID  string `json:"parentId" validate:"notblank"`
}

func (StudentForm) Messages() map[string]string {
	return personMessages(map[string]string{
		"gradeId.min":       "Grade is required!",
		"classId.min":       "Class is required!",
		"parentId.notblank": "Parent Id is required!",
	})
}

// TeacherForm is the create/update payload for a teacher.
type TeacherForm struct {
	Username  string  `json:"username" validate:"min=3,max=20"`
	Password  string  `json:"password" validate:"omitempty,min=8"`
	Name      string  `json:"name" validate:"notblank"`
	Surname   string  `json:"surname" validate:"notblank"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone" validate:"omitempty,phone"`
	Address   string  `json:"address" validate:"notblank"`
	Img       string  `json:"img" validate:"omitempty,url"`
	BloodType string  `json:"bloodType" validate:"notblank"`
	Birthday  string  `json:"birthday" validate:"required,date"`
	Sex       string  `json:"sex" validate:"required,oneof=MALE FEMALE"`
	Subjects  []int64 `json:"subjects" validate:"omitempty,dive,min=1"`
}

func (TeacherForm) Messages() map[string]string {
	return personMessages(nil)
}

func personMessages(extra map[string]string) map[string]string {
	m := map[string]string{
		"username.min":       "Username must be at least 3 characters long!",
		"username.max":       "Username must be at most 20 characters long!",
		"password.min":       "Password must be at least 8 characters long!",
		"name.notblank":      "First name is required!",
		"surname.notblank":   "Last name is required!",
		"email.email":        "Invalid email address!",
		"address.notblank":   "Address is required!",
		"bloodType.notblank": "Blood Type is required!",
		"birthday.required":  "Birthday is required!",
		"birthday.date":      "Birthday must be a valid date!",
		"sex.required":       "Sex is required!",
		"sex.oneof":          "Sex is required!",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// ParentForm is the create payload for a parent.
type ParentForm struct {
	Username   string   `json:"username" validate:"min=3,max=20"`
	Password   string   `json:"password" validate:"omitempty,min=6"`
	Name       string   `json:"name" validate:"notblank"`
	Surname    string   `json:"surname" validate:"notblank"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"omitempty,phone"`
	Address    string   `json:"address" validate:"notblank"`
	StudentIDs []string `json:"studentId" validate:"omitempty,dive,notblank"`
}

func (ParentForm) Messages() map[string]string {
	return parentMessages()
}

// ParentPatchForm is the partial update payload for a parent. Nil fields are
// left unchanged.
type ParentPatchForm struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=20"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Name     *string `json:"name" validate:"omitnil,notblank"`
	Surname  *string `json:"surname" validate:"omitnil,notblank"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Address  *string `json:"address" validate:"omitnil,notblank"`
}

func (ParentPatchForm) Messages() map[string]string {
	return parentMessages()
}

func parentMessages() map[string]string {
	return map[string]string{
		"username.min":     "Username must be at least 3 characters long!",
		"username.max":     "Username must be at most 20 characters long!",
		"password.min":     "Password must be at least 6 characters long!",
		"name.notblank":    "First name is required!",
		"surname.notblank": "Last name is required!",
		"email.email":      "Invalid email address!",
		"phone.phone":      "Invalid phone number!",
		"address.notblank": "Address is required!",
	}
}

// ClassForm is the create/update payload for a class.
type ClassForm struct {
	Name         string `json:"name" validate:"notblank"`
	Capacity     int    `json:"capacity" validate:"min=1"`
	GradeID      int64  `json:"gradeId" validate:"min=1"`
	SupervisorID string `json:"supervisorId"`
}

func (ClassForm) Messages() map[string]string {
	return map[string]string{
		"name.notblank": "Class name is required!",
		"capacity.min":  "Capacity is required!",
		"gradeId.min":   "Grade is required!",
	}
}

// SubjectForm is the create/update payload for a subject.
type SubjectForm struct {
	Name     string   `json:"name" validate:"notblank"`
	Teachers []string `json:"teachers" validate:"omitempty,dive,notblank"`
}

func (SubjectForm) Messages() map[string]string {
	return map[string]string{
		"name.notblank": "Subject name is required!",
	}
}

// LessonForm is the create/update payload for a lesson; times are HH:mm.
type LessonForm struct {
	Name      string `json:"name" validate:"notblank"`
	Day       string `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"required,clock"`
	SubjectID int64  `json:"subjectId" validate:"min=1"`
	ClassID   int64  `json:"classId" validate:"min=1"`
	TeacherID string `json:"teacherId" validate:"notblank"`
}

func (LessonForm) Messages() map[string]string {
	return map[string]string{
		"name.notblank":      "Lesson name is required!",
		"day.required":       "Day is required!",
		"day.oneof":          "Day must be a weekday!",
		"startTime.required": "Start time is required!",
		"startTime.clock":    "Start time must be in HH:mm format!",
		"endTime.required":   "End time is required!",
		"endTime.clock":      "End time must be in HH:mm format!",
		"subjectId.min":      "Subject is required!",
		"classId.min":        "Class is required!",
		"teacherId.notblank": "Teacher is required!",
	}
}

// ExamForm is the create/update payload for an exam.
type ExamForm struct {
	Title     string `json:"title" validate:"notblank"`
	StartTime string `json:"startTime" validate:"required,date"`
	EndTime   string `json:"endTime" validate:"required,date"`
	LessonID  int64  `json:"lessonId" validate:"min=1"`
}

func (ExamForm) Messages() map[string]string {
	return map[string]string{
		"title.notblank":     "Title name is required!",
		"startTime.required": "Start time is required!",
		"startTime.date":     "Start time must be a valid date!",
		"endTime.required":   "End time is required!",
		"endTime.date":       "End time must be a valid date!",
		"lessonId.min":       "Lesson is required!",
	}
}

// AssignmentForm is the create/update payload for an assignment.
type AssignmentForm struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate" validate:"required,date"`
	DueDate   string `json:"dueDate" validate:"required,date"`
	SubjectID int64  `json:"subjectId" validate:"omitempty,min=1"`
	LessonID  int64  `json:"lessonId" validate:"omitempty,min=1"`
	ClassID   int64  `json:"classId" validate:"min=1"`
	TeacherID string `json:"teacherId" validate:"notblank"`
}

func (AssignmentForm) Messages() map[string]string {
	return map[string]string{
		"startDate.required":  "Start date is required!",
		"startDate.date":      "Start date must be a valid date!",
		"dueDate.required":    "Due date is required!",
		"dueDate.date":        "Due date must be a valid date!",
		"dueDate.after_start": "Due date must be after start date",
		"classId.min":         "Class is required!",
		"teacherId.notblank":  "Teacher is required!",
	}
}

// ResultForm is the create/update payload for a result. Score is a pointer so
// zero stays distinguishable from missing.
type ResultForm struct {
	Score        *float64 `json:"score" validate:"required,min=0,max=100"`
	Date         string   `json:"date" validate:"omitempty,date"`
	ExamID       int64    `json:"examId" validate:"omitempty,min=1"`
	AssignmentID int64    `json:"assignmentId" validate:"omitempty,min=1"`
	StudentID    string   `json:"studentId" validate:"notblank"`
	TeacherID    string   `json:"teacherId"`
	ClassID      int64    `json:"classId" validate:"min=1"`
}

func (ResultForm) Messages() map[string]string {
	return map[string]string{
		"score.required":     "Score is required!",
		"score.min":          "Score must be a positive number",
		"score.max":          "Score must be less than or equal to 100",
		"date.date":          "Date must be a valid date!",
		"studentId.notblank": "Student is required!",
		"classId.min":        "Class is required!",
	}
}

// EventForm is the create/update payload for an event; times are HH:mm.
type EventForm struct {
	Title       string `json:"title" validate:"notblank"`
	Date        string `json:"date" validate:"required,date"`
	Description string `json:"description" validate:"max=500"`
	StartTime   string `json:"startTime" validate:"omitempty,clock"`
	EndTime     string `json:"endTime" validate:"omitempty,clock"`
	ClassID     int64  `json:"classId" validate:"min=1"`
}

func (EventForm) Messages() map[string]string {
	return map[string]string{
		"title.notblank":  "Title is required!",
		"date.required":   "Date is required!",
		"date.date":       "Date must be a valid date!",
		"description.max": "Description is too long!",
		"startTime.clock": "Start time must be in HH:mm format!",
		"endTime.clock":   "End time must be in HH:mm format!",
		"classId.min":     "Class is required!",
	}
}
