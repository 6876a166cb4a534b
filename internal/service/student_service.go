package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	HasDependents(ctx context.Context, id string) (bool, error)
}

type classReader interface {
	FindByID(ctx context.Context, id int64) (*models.ClassDetail, error)
}

// StudentService orchestrates student enrolment with its identity account.
type StudentService struct {
	repo      studentRepository
	classes   classReader
	lifecycle identityLifecycle
	logger    *zap.Logger
	pageSize  int
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, classes classReader, provider identity.Provider, audit reconciler, logger *zap.Logger, pageSize int) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &StudentService{
		repo:      repo,
		classes:   classes,
		lifecycle: identityLifecycle{kind: models.KindStudent, provider: provider, reconciler: audit, logger: logger},
		logger:    logger,
		pageSize:  pageSize,
	}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.ListFilter) ([]models.StudentDetail, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, pageOf(filter, total), nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "student", "load")
	}
	return student, nil
}

// Create checks the class has room, provisions the identity and stores the student under its id.
func (s *StudentService) Create(ctx context.Context, actor models.Actor, rec *models.StudentRecord) (*models.Student, error) {
	if err := s.ensureCapacity(ctx, rec.ClassID); err != nil {
		return nil, err
	}

	created, err := s.lifecycle.provision(ctx, identity.NewIdentity{
		Username:  rec.Username,
		Password:  rec.Password,
		FirstName: rec.Name,
		LastName:  rec.Surname,
		Email:     rec.Email,
		Role:      models.RoleStudent,
	})
	if err != nil {
		return nil, err
	}

	student := rec.Student
	student.ID = created.ID
	if err := s.repo.Create(ctx, &student); err != nil {
		s.lifecycle.orphaned(created.ID, err)
		switch {
		case errors.Is(err, repository.ErrClassFull):
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
		case errors.Is(err, repository.ErrClassNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		default:
			return nil, storeError(err, "student", "create")
		}
	}

	s.logger.Info("student created", zap.String("student_id", student.ID), zap.Int64("class_id", student.ClassID), zap.String("actor", actor.UserID))
	return &student, nil
}

// Update syncs the identity first, then overwrites the stored student.
func (s *StudentService) Update(ctx context.Context, actor models.Actor, id string, rec *models.StudentRecord) (*models.Student, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, storeError(err, "student", "load")
	}

	if err := s.lifecycle.update(ctx, id, identityUpdate(rec.Username, rec.Password, rec.Name, rec.Surname)); err != nil {
		return nil, err
	}

	student := rec.Student
	student.ID = id
	if err := s.repo.Update(ctx, &student); err != nil {
		s.logger.Warn("student identity updated but record update failed", zap.String("student_id", id), zap.Error(err))
		return nil, storeError(err, "student", "update")
	}
	return &student, nil
}

// Delete removes the identity, then the student row.
func (s *StudentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return storeError(err, "student", "load")
	}
	if err := ensureNoDependents(ctx, s.repo, id, "student", "results"); err != nil {
		return err
	}
	return s.lifecycle.remove(ctx, actor, id, func() error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *StudentService) ensureCapacity(ctx context.Context, classID int64) error {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.Full() {
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}
	return nil
}
