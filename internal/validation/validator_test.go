package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok, "expected *errors.Error, got %T", err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	return appErr.Fields
}

func float(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func validStudentForm() dto.StudentForm {
	return dto.StudentForm{
		Username:  "jdoe",
		Password:  "supersecret",
		Name:      "John",
		Surname:   "Doe",
		Address:   "1 Main St",
		BloodType: "A+",
		Birthday:  "2010-05-04",
		Sex:       "MALE",
		GradeID:   1,
		ClassID:   2,
		ParentID:  "parent-1",
	}
}

func TestAssignmentDueDateBeforeStartReportsDueDate(t *testing.T) {
	v := New()

	_, err := v.Assignment(dto.AssignmentForm{
		StartDate: "2024-01-10",
		DueDate:   "2024-01-05",
		ClassID:   1,
		TeacherID: "teacher-1",
	})

	fields := fieldErrors(t, err)
	assert.Equal(t, map[string]string{"dueDate": "Due date must be after start date"}, fields)
}

func TestAssignmentDateOrdering(t *testing.T) {
	v := New()
	cases := []struct {
		name  string
		start string
		due   string
		ok    bool
	}{
		{name: "due after start", start: "2024-01-05", due: "2024-01-10", ok: true},
		{name: "same day", start: "2024-01-05", due: "2024-01-05", ok: false},
		{name: "one minute later", start: "2024-01-05T10:00", due: "2024-01-05T10:01", ok: true},
		{name: "due before start", start: "2024-01-10T00:00:00Z", due: "2024-01-09T23:59:59Z", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assignment, err := v.Assignment(dto.AssignmentForm{StartDate: tc.start, DueDate: tc.due, ClassID: 1, TeacherID: "teacher-1"})
			if tc.ok {
				require.NoError(t, err)
				assert.True(t, assignment.DueDate.After(assignment.StartDate))
				return
			}
			fields := fieldErrors(t, err)
			assert.Contains(t, fields, "dueDate")
		})
	}
}

func TestAssignmentInvalidDateSkipsOrderingRule(t *testing.T) {
	v := New()

	_, err := v.Assignment(dto.AssignmentForm{StartDate: "not-a-date", DueDate: "2024-01-05", ClassID: 1, TeacherID: "t"})

	fields := fieldErrors(t, err)
	assert.Equal(t, "Start date must be a valid date!", fields["startDate"])
	assert.NotContains(t, fields, "dueDate")
}

func TestResultScoreRange(t *testing.T) {
	v := New()
	base := dto.ResultForm{StudentID: "student-1", ClassID: 1, ExamID: 3}

	cases := []struct {
		name    string
		score   *float64
		message string
	}{
		{name: "negative", score: float(-1), message: "Score must be a positive number"},
		{name: "above hundred", score: float(100.5), message: "Score must be less than or equal to 100"},
		{name: "missing", score: nil, message: "Score is required!"},
		{name: "zero", score: float(0)},
		{name: "hundred", score: float(100)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := base
			form.Score = tc.score
			result, err := v.Result(form)
			if tc.message == "" {
				require.NoError(t, err)
				assert.Equal(t, *tc.score, result.Score)
				return
			}
			assert.Equal(t, tc.message, fieldErrors(t, err)["score"])
		})
	}
}

func TestResultDateDefaultsToNow(t *testing.T) {
	v := New()
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	result, err := v.Result(dto.ResultForm{Score: float(75), StudentID: "s", ClassID: 1})
	require.NoError(t, err)
	assert.Equal(t, fixed, result.Date)
	assert.Nil(t, result.ExamID)
	assert.Nil(t, result.TeacherID)

	result, err = v.Result(dto.ResultForm{Score: float(75), StudentID: "s", ClassID: 1, Date: "2024-02-02"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), result.Date)
}

func TestStudentReportsEveryInvalidField(t *testing.T) {
	v := New()

	_, err := v.Student(dto.StudentForm{}, models.ModeCreate)

	fields := fieldErrors(t, err)
	for _, field := range []string{"username", "password", "name", "surname", "address", "bloodType", "birthday", "sex", "gradeId", "classId", "parentId"} {
		assert.Contains(t, fields, field)
	}
	assert.Equal(t, "Username must be at least 3 characters long!", fields["username"])
	assert.Equal(t, "Password must be at least 8 characters long!", fields["password"])
	assert.Equal(t, "Grade is required!", fields["gradeId"])
	assert.NotContains(t, fields, "email")
}

func TestStudentPasswordOptionalOnUpdate(t *testing.T) {
	v := New()
	form := validStudentForm()
	form.Password = ""

	_, err := v.Student(form, models.ModeCreate)
	assert.Contains(t, fieldErrors(t, err), "password")

	record, err := v.Student(form, models.ModeUpdate)
	require.NoError(t, err)
	assert.Empty(t, record.Password)
}

func TestStudentNormalizesOptionalFields(t *testing.T) {
	v := New()
	form := validStudentForm()
	form.Name = "  John "
	form.Email = " "
	form.Phone = "+15551234567"

	record, err := v.Student(form, models.ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, "John", record.Name)
	assert.Nil(t, record.Email)
	require.NotNil(t, record.Phone)
	assert.Equal(t, "+15551234567", *record.Phone)
	assert.Equal(t, time.Date(2010, 5, 4, 0, 0, 0, 0, time.UTC), record.Birthday)
	assert.Equal(t, models.SexMale, record.Sex)
}

func TestTeacherRejectsUnknownSexAndDedupesSubjects(t *testing.T) {
	v := New()
	form := dto.TeacherForm{
		Username:  "teach",
		Password:  "supersecret",
		Name:      "Ada",
		Surname:   "Lovelace",
		Address:   "London",
		BloodType: "O",
		Birthday:  "1985-12-10",
		Sex:       "OTHER",
		Subjects:  []int64{3, 1, 3},
	}

	_, err := v.Teacher(form, models.ModeCreate)
	assert.Equal(t, "Sex is required!", fieldErrors(t, err)["sex"])

	form.Sex = "FEMALE"
	record, err := v.Teacher(form, models.ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, record.SubjectIDs)
}

func TestTeacherOmittedSubjectsStayNil(t *testing.T) {
	v := New()
	base := `{"username":"teach","name":"Ada","surname":"Lovelace","address":"London","bloodType":"O","birthday":"1985-12-10","sex":"FEMALE"`

	var omitted dto.TeacherForm
	require.NoError(t, json.Unmarshal([]byte(base+`}`), &omitted))
	record, err := v.Teacher(omitted, models.ModeUpdate)
	require.NoError(t, err)
	assert.Nil(t, record.SubjectIDs)

	var cleared dto.TeacherForm
	require.NoError(t, json.Unmarshal([]byte(base+`,"subjects":[]}`), &cleared))
	record, err = v.Teacher(cleared, models.ModeUpdate)
	require.NoError(t, err)
	require.NotNil(t, record.SubjectIDs)
	assert.Empty(t, record.SubjectIDs)
}

func TestParentWithoutPhoneStoresNoPhone(t *testing.T) {
	v := New()
	form := dto.ParentForm{
		Username: "dad",
		Password: "secret1",
		Name:     "John",
		Surname:  "Doe",
		Phone:    "  ",
		Address:  "Home",
	}

	record, err := v.Parent(form, models.ModeCreate)
	require.NoError(t, err)
	assert.Nil(t, record.Phone)
	assert.Nil(t, record.Email)
	assert.Nil(t, record.StudentIDs)
}

func TestLessonClockNormalization(t *testing.T) {
	v := New()
	form := dto.LessonForm{
		Name:      "Math 1",
		Day:       "MONDAY",
		StartTime: "08:30",
		EndTime:   "09:15",
		SubjectID: 1,
		ClassID:   2,
		TeacherID: "teacher-1",
	}

	lesson, err := v.Lesson(form)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 1, 8, 30, 0, 0, time.UTC), lesson.StartTime)
	assert.Equal(t, time.Date(1970, 1, 1, 9, 15, 0, 0, time.UTC), lesson.EndTime)
	assert.Equal(t, models.Monday, lesson.Day)

	form.StartTime = "24:00"
	form.Day = "SATURDAY"
	_, err = v.Lesson(form)
	fields := fieldErrors(t, err)
	assert.Equal(t, "Start time must be in HH:mm format!", fields["startTime"])
	assert.Equal(t, "Day must be a weekday!", fields["day"])
}

func TestParentPatchKeepsOnlyPresentFields(t *testing.T) {
	v := New()

	patch, err := v.ParentPatch(dto.ParentPatchForm{Phone: str("+15551234567")})
	require.NoError(t, err)
	require.NotNil(t, patch.Phone)
	assert.Equal(t, "+15551234567", *patch.Phone)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.Email)
	assert.Nil(t, patch.Password)

	existing := models.Parent{ID: "p1", Username: "mom", Name: "Jane", Surname: "Doe", Phone: str("+111"), Address: "Home", Email: str("jane@example.com")}
	updated := patch.Apply(existing)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+15551234567", *updated.Phone)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, "Doe", updated.Surname)
	assert.Equal(t, "Home", updated.Address)
	assert.Equal(t, "jane@example.com", *updated.Email)
}

func TestParentPatchRejectsPresentButInvalidFields(t *testing.T) {
	v := New()

	_, err := v.ParentPatch(dto.ParentPatchForm{Name: str(""), Phone: str("12-34"), Username: str("ab")})

	fields := fieldErrors(t, err)
	assert.Equal(t, "First name is required!", fields["name"])
	assert.Equal(t, "Invalid phone number!", fields["phone"])
	assert.Equal(t, "Username must be at least 3 characters long!", fields["username"])
}

func TestParentPatchEmptyPasswordKeepsCurrent(t *testing.T) {
	v := New()

	patch, err := v.ParentPatch(dto.ParentPatchForm{Password: str("")})
	require.NoError(t, err)
	assert.Nil(t, patch.Password)
	assert.True(t, patch.Empty())
}

func TestEventDescriptionLimitAndTimeDefaults(t *testing.T) {
	v := New()
	fixed := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return fixed }

	_, err := v.Event(dto.EventForm{Title: "Trip", Date: "2024-05-01", Description: strings.Repeat("x", 501), ClassID: 1})
	assert.Equal(t, "Description is too long!", fieldErrors(t, err)["description"])

	event, err := v.Event(dto.EventForm{Title: "Trip", Date: "2024-05-01", StartTime: "10:00", ClassID: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), event.StartTime)
	assert.Equal(t, fixed, event.EndTime)
}

func TestClassCapacityAndSubjectTeachers(t *testing.T) {
	v := New()

	_, err := v.Class(dto.ClassForm{Name: "1A", Capacity: 0, GradeID: 1})
	assert.Equal(t, "Capacity is required!", fieldErrors(t, err)["capacity"])

	class, err := v.Class(dto.ClassForm{Name: "1A", Capacity: 20, GradeID: 1})
	require.NoError(t, err)
	assert.Nil(t, class.SupervisorID)

	subject, err := v.Subject(dto.SubjectForm{Name: "Math", Teachers: []string{"t1", "t2", "t1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, subject.TeacherIDs)
}

func TestCheckFallsBackToTranslatedMessage(t *testing.T) {
	v := New()

	err := v.Check(models.LoginRequest{})

	fields := fieldErrors(t, err)
	assert.Equal(t, "username is a required field", fields["username"])
	assert.Equal(t, "password is a required field", fields["password"])
}
