package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/validation"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type fakeRecordOrchestrator[T any] struct {
	created []*T
	updated map[int64]*T
	deleted []int64
	nextID  func(*T)
	err     error
}

func (f *fakeRecordOrchestrator[T]) Create(ctx context.Context, actor models.Actor, record *T) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.nextID != nil {
		f.nextID(record)
	}
	f.created = append(f.created, record)
	return record, nil
}

func (f *fakeRecordOrchestrator[T]) Update(ctx context.Context, actor models.Actor, id int64, record *T) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.updated == nil {
		f.updated = map[int64]*T{}
	}
	f.updated[id] = record
	return record, nil
}

func (f *fakeRecordOrchestrator[T]) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func validStudentPayload(t *testing.T, classID int64) json.RawMessage {
	return payload(t, map[string]interface{}{
		"username":  "jdoe",
		"password":  "supersecret",
		"name":      "John",
		"surname":   "Doe",
		"address":   "1 Main St",
		"bloodType": "A+",
		"birthday":  "2010-05-04",
		"sex":       "MALE",
		"gradeId":   1,
		"classId":   classID,
		"parentId":  "parent_1",
	})
}

func TestFormServiceHandlesEveryEntityKind(t *testing.T) {
	svc := NewFormService(validation.New(), FormOrchestrators{}, nil, nil, nil, zap.NewNop())
	for _, kind := range models.AllEntityKinds {
		module, ok := svc.modules[kind]
		if assert.True(t, ok, "no form module for %s", kind) {
			assert.True(t, module.allows(models.RoleAdmin), kind)
			assert.False(t, module.allows(models.RoleStudent), kind)
		}
	}
}

func TestFormServiceReportsFieldErrorsWithoutCallingOrchestrator(t *testing.T) {
	assignments := &fakeRecordOrchestrator[models.Assignment]{}
	svc := NewFormService(validation.New(), FormOrchestrators{Assignments: assignments}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:  models.KindAssignment,
		Mode:  models.ModeCreate,
		Actor: adminActor,
		Payload: payload(t, map[string]interface{}{
			"title":     "Essay",
			"startDate": "2024-01-10",
			"dueDate":   "2024-01-05",
			"classId":   1,
			"teacherId": "teacher_a",
		}),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.False(t, state.Success)
	assert.Equal(t, "Due date must be after start date", state.Fields["dueDate"])
	assert.Empty(t, assignments.created)
}

func TestFormServiceReportsFullClass(t *testing.T) {
	school := newFakeSchool(models.Class{ID: 3, Name: "3B", Capacity: 1})
	school.students["existing"] = models.Student{ID: "existing", ClassID: 3}
	provider := &fakeIdentityProvider{}
	students := NewStudentService(&fakeStudentRepo{fakeSchool: school}, &fakeClassRepo{fakeSchool: school}, provider, nil, zap.NewNop(), 10)
	svc := NewFormService(validation.New(), FormOrchestrators{Students: students}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindStudent,
		Mode:    models.ModeCreate,
		Actor:   adminActor,
		Payload: validStudentPayload(t, 3),
	})
	require.Error(t, err)
	assert.Equal(t, "Class is full", state.Error)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, state.Code)
	assert.Empty(t, provider.created)
}

func TestFormServiceSuccessInvalidatesAndAudits(t *testing.T) {
	classes := &fakeRecordOrchestrator[models.Class]{nextID: func(c *models.Class) { c.ID = 7 }}
	related := &countingInvalidator{}
	auditRepo := &fakeAuditRepo{}
	svc := NewFormService(validation.New(), FormOrchestrators{Classes: classes}, related, NewAuditService(auditRepo, nil, nil), nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindClass,
		Mode:    models.ModeCreate,
		Actor:   adminActor,
		Payload: payload(t, map[string]interface{}{"name": " 4C ", "capacity": 25, "gradeId": 4}),
		IP:      "10.0.0.1",
	})
	require.NoError(t, err)
	assert.True(t, state.Success)
	require.Len(t, classes.created, 1)
	assert.Equal(t, "4C", classes.created[0].Name)
	assert.Equal(t, 1, related.calls)

	require.Len(t, auditRepo.logs, 1)
	entry := auditRepo.logs[0]
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, "class", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "7", *entry.ResourceID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
}

func TestFormServiceDeleteParsesNumericID(t *testing.T) {
	events := &fakeRecordOrchestrator[models.Event]{}
	svc := NewFormService(validation.New(), FormOrchestrators{Events: events}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{Kind: models.KindEvent, Mode: models.ModeDelete, ID: "12", Actor: adminActor})
	require.NoError(t, err)
	assert.True(t, state.Success)
	assert.Equal(t, []int64{12}, events.deleted)

	_, err = svc.Submit(context.Background(), dto.FormSubmission{Kind: models.KindEvent, Mode: models.ModeDelete, ID: "abc", Actor: adminActor})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Submit(context.Background(), dto.FormSubmission{Kind: models.KindEvent, Mode: models.ModeUpdate, Actor: adminActor})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestFormServiceRejectsDisallowedRoleAndPartial(t *testing.T) {
	classes := &fakeRecordOrchestrator[models.Class]{}
	svc := NewFormService(validation.New(), FormOrchestrators{Classes: classes}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindClass,
		Mode:    models.ModeCreate,
		Actor:   models.Actor{UserID: "teacher_a", Role: models.RoleTeacher},
		Payload: payload(t, map[string]interface{}{"name": "4C", "capacity": 25, "gradeId": 4}),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	assert.Equal(t, genericFormError, state.Error)

	_, err = svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindClass,
		Mode:    models.ModeUpdate,
		ID:      "1",
		Partial: true,
		Actor:   adminActor,
		Payload: payload(t, map[string]interface{}{"name": "4C"}),
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Empty(t, classes.created)
	assert.Empty(t, classes.updated)
}

func TestFormServiceHidesUnexpectedFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lessons := &fakeRecordOrchestrator[models.Lesson]{err: storeError(errors.New("connection refused"), "lesson", "update")}
	svc := NewFormService(validation.New(), FormOrchestrators{Lessons: lessons}, nil, nil, nil, zap.New(core))

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:  models.KindLesson,
		Mode:  models.ModeUpdate,
		ID:    "4",
		Actor: adminActor,
		Payload: payload(t, map[string]interface{}{
			"name":      "Math",
			"day":       "MONDAY",
			"startTime": "08:00",
			"endTime":   "09:00",
			"subjectId": 1,
			"classId":   1,
			"teacherId": "teacher_a",
		}),
	})
	require.Error(t, err)
	assert.Equal(t, genericFormError, state.Error)
	assert.NotContains(t, state.Error, "connection refused")
	assert.Equal(t, 1, logs.FilterMessage("form submission failed").Len())
}

func TestFormServiceExplainsBlockedDelete(t *testing.T) {
	parent := seededParent()
	parent.StudentIDs = []string{"user_1"}
	provider := &fakeIdentityProvider{}
	svc := NewFormService(validation.New(), FormOrchestrators{
		Parents: NewParentService(&fakeParentRepo{items: map[string]models.Parent{"user_5": parent}}, provider, nil, zap.NewNop(), 10),
	}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:  models.KindParent,
		Mode:  models.ModeDelete,
		ID:    "user_5",
		Actor: adminActor,
	})
	require.Error(t, err)
	assert.False(t, state.Success)
	assert.Equal(t, appErrors.ErrHasDependents.Code, state.Code)
	assert.Equal(t, "Cannot delete parent with existing students", state.Error)
	assert.Empty(t, provider.deleted)
}

func TestFormServiceParentUpdateIsPartial(t *testing.T) {
	parents := &fakeParentRepo{items: map[string]models.Parent{"user_5": seededParent()}}
	provider := &fakeIdentityProvider{}
	svc := NewFormService(validation.New(), FormOrchestrators{
		Parents: NewParentService(parents, provider, nil, zap.NewNop(), 10),
	}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindParent,
		Mode:    models.ModeUpdate,
		ID:      "user_5",
		Partial: true,
		Actor:   adminActor,
		Payload: payload(t, map[string]interface{}{"phone": "+15551234567"}),
	})
	require.NoError(t, err)
	assert.True(t, state.Success)
	require.NotNil(t, parents.items["user_5"].Phone)
	assert.Equal(t, "+15551234567", *parents.items["user_5"].Phone)
	assert.Equal(t, "Jane", parents.items["user_5"].Name)
	assert.Empty(t, provider.updates)
}

func TestFormServiceRejectsMalformedPayload(t *testing.T) {
	svc := NewFormService(validation.New(), FormOrchestrators{Subjects: &fakeRecordOrchestrator[models.Subject]{}}, nil, nil, nil, zap.NewNop())

	state, err := svc.Submit(context.Background(), dto.FormSubmission{
		Kind:    models.KindSubject,
		Mode:    models.ModeCreate,
		Actor:   adminActor,
		Payload: json.RawMessage(`{"name":`),
	})
	require.Error(t, err)
	assert.Equal(t, "invalid form payload", state.Error)
}
