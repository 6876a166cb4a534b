package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
	HasDependents(ctx context.Context, id string) (bool, error)
}

// TeacherService orchestrates teacher records, their subjects and identity accounts.
type TeacherService struct {
	repo      teacherRepository
	lifecycle identityLifecycle
	logger    *zap.Logger
	pageSize  int
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, provider identity.Provider, audit reconciler, logger *zap.Logger, pageSize int) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &TeacherService{
		repo:      repo,
		lifecycle: identityLifecycle{kind: models.KindTeacher, provider: provider, reconciler: audit, logger: logger},
		logger:    logger,
		pageSize:  pageSize,
	}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, pageOf(filter, total), nil
}

// Get returns a teacher by id with its subject ids.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher", "load")
	}
	return teacher, nil
}

// Create provisions the identity, then stores the teacher and connects its subjects.
func (s *TeacherService) Create(ctx context.Context, actor models.Actor, rec *models.TeacherRecord) (*models.Teacher, error) {
	created, err := s.lifecycle.provision(ctx, identity.NewIdentity{
		Username:  rec.Username,
		Password:  rec.Password,
		FirstName: rec.Name,
		LastName:  rec.Surname,
		Email:     rec.Email,
		Role:      models.RoleTeacher,
	})
	if err != nil {
		return nil, err
	}

	teacher := rec.Teacher
	teacher.ID = created.ID
	if err := s.repo.Create(ctx, &teacher); err != nil {
		s.lifecycle.orphaned(created.ID, err)
		return nil, storeError(err, "teacher", "create")
	}

	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.Int("subjects", len(teacher.SubjectIDs)), zap.String("actor", actor.UserID))
	return &teacher, nil
}

// Update syncs the identity, then overwrites the teacher and sets its subjects to exactly the submitted ids.
func (s *TeacherService) Update(ctx context.Context, actor models.Actor, id string, rec *models.TeacherRecord) (*models.Teacher, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "teacher", "load")
	}

	if err := s.lifecycle.update(ctx, id, identityUpdate(rec.Username, rec.Password, rec.Name, rec.Surname)); err != nil {
		return nil, err
	}

	teacher := rec.Teacher
	teacher.ID = id
	if err := s.repo.Update(ctx, &teacher); err != nil {
		s.logger.Warn("teacher identity updated but record update failed", zap.String("teacher_id", id), zap.Error(err))
		return nil, storeError(err, "teacher", "update")
	}
	if teacher.SubjectIDs == nil {
		teacher.SubjectIDs = current.SubjectIDs
	}
	return &teacher, nil
}

// Delete removes the identity, then the teacher row and its subject edges.
func (s *TeacherService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return storeError(err, "teacher", "load")
	}
	if err := ensureNoDependents(ctx, s.repo, id, "teacher", "lessons, assignments or results"); err != nil {
		return err
	}
	return s.lifecycle.remove(ctx, actor, id, func() error {
		return s.repo.Delete(ctx, id)
	})
}
