package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

var adminActor = models.Actor{UserID: "admin_1", Role: models.RoleAdmin}

func studentRecord(username string, classID int64) *models.StudentRecord {
	return &models.StudentRecord{
		Student: models.Student{
			Username:  username,
			Name:      "Ada",
			Surname:   "Lovelace",
			Address:   "1 Main Street",
			BloodType: "A+",
			Sex:       models.SexFemale,
			Birthday:  time.Date(2012, time.March, 4, 0, 0, 0, 0, time.UTC),
			GradeID:   1,
			ClassID:   classID,
			ParentID:  "parent_1",
		},
		Password: "password123",
	}
}

func newStudentFixture(logger *zap.Logger, classes ...models.Class) (*StudentService, *fakeStudentRepo, *fakeIdentityProvider) {
	school := newFakeSchool(classes...)
	repo := &fakeStudentRepo{fakeSchool: school}
	provider := &fakeIdentityProvider{}
	svc := NewStudentService(repo, &fakeClassRepo{fakeSchool: school}, provider, nil, logger, 10)
	return svc, repo, provider
}

func TestStudentCreateRespectsClassCapacity(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Name: "1A", Capacity: 1})

	first, err := svc.Create(context.Background(), adminActor, studentRecord("student_a", 1))
	require.NoError(t, err)
	assert.Equal(t, "user_1", first.ID)

	_, err = svc.Create(context.Background(), adminActor, studentRecord("student_b", 1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded.Code))
	assert.Equal(t, 409, appErrors.FromError(err).Status)

	assert.Len(t, repo.students, 1)
	assert.Len(t, provider.created, 1, "a full class must be rejected before provisioning")
}

func TestStudentCreateMissingClass(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop())

	_, err := svc.Create(context.Background(), adminActor, studentRecord("student_a", 42))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "class not found", appErr.Message)
	assert.Empty(t, provider.created)
	assert.Empty(t, repo.students)
}

func TestStudentCreateIdentityFailureWritesNothing(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})
	provider.createErr = errors.New("provider unavailable")

	_, err := svc.Create(context.Background(), adminActor, studentRecord("student_a", 1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIdentityProvider.Code))
	assert.Empty(t, repo.students)
}

func TestStudentCreateLogsOrphanedIdentityWhenInsertLosesRace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	class := models.Class{ID: 1, Capacity: 1}

	// The pre-check sees an empty class while the locked insert sees it full.
	checked := newFakeSchool(class)
	locked := newFakeSchool(class)
	locked.students["other"] = models.Student{ID: "other", ClassID: 1}
	provider := &fakeIdentityProvider{}
	svc := NewStudentService(&fakeStudentRepo{fakeSchool: locked}, &fakeClassRepo{fakeSchool: checked}, provider, nil, zap.New(core), 10)

	_, err := svc.Create(context.Background(), adminActor, studentRecord("student_b", 1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCapacityExceeded.Code))

	orphans := logs.FilterMessage("identity orphaned after store failure").All()
	require.Len(t, orphans, 1)
	assert.Equal(t, zapcore.ErrorLevel, orphans[0].Level)
	assert.Equal(t, "user_1", orphans[0].ContextMap()["identity_id"])
}

func TestStudentUpdateKeepsPasswordWhenBlank(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})
	repo.students["user_9"] = models.Student{ID: "user_9", Username: "old_name", ClassID: 1}

	rec := studentRecord("new_name", 1)
	rec.Password = ""
	updated, err := svc.Update(context.Background(), adminActor, "user_9", rec)
	require.NoError(t, err)
	assert.Equal(t, "new_name", updated.Username)
	assert.Equal(t, "new_name", repo.students["user_9"].Username)

	require.Len(t, provider.updates["user_9"], 1)
	update := provider.updates["user_9"][0]
	assert.Nil(t, update.Password)
	require.NotNil(t, update.Username)
	assert.Equal(t, "new_name", *update.Username)
}

func TestStudentUpdateUnknownIDSkipsIdentity(t *testing.T) {
	svc, _, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})

	_, err := svc.Update(context.Background(), adminActor, "missing", studentRecord("someone", 1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
	assert.Empty(t, provider.updates)
}

func TestStudentDeleteRemovesIdentityThenRecord(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})
	repo.students["user_3"] = models.Student{ID: "user_3", ClassID: 1}

	require.NoError(t, svc.Delete(context.Background(), adminActor, "user_3"))
	assert.Equal(t, []string{"user_3"}, provider.deleted)
	assert.Empty(t, repo.students)
}

func TestStudentDeleteWithResultsKeepsIdentity(t *testing.T) {
	svc, repo, provider := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})
	repo.students["user_3"] = models.Student{ID: "user_3", ClassID: 1}
	repo.dependents = true

	err := svc.Delete(context.Background(), adminActor, "user_3")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrHasDependents.Code))
	assert.Empty(t, provider.deleted)
	assert.Contains(t, repo.students, "user_3")
}

func TestStudentListAppliesDefaultPage(t *testing.T) {
	svc, repo, _ := newStudentFixture(zap.NewNop(), models.Class{ID: 1, Capacity: 30})
	repo.students["a"] = models.Student{ID: "a", ClassID: 1}

	students, page, err := svc.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1}, page)
}
