package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.LessonDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.LessonDetail, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id int64) error
}

// LessonService manages the weekly lesson schedule.
type LessonService struct {
	repo     lessonRepository
	logger   *zap.Logger
	pageSize int
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonRepository, logger *zap.Logger, pageSize int) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &LessonService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns lessons filtered by class or teacher.
func (s *LessonService) List(ctx context.Context, filter models.ListFilter) ([]models.LessonDetail, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, pageOf(filter, total), nil
}

// Get returns a lesson by id.
func (s *LessonService) Get(ctx context.Context, id int64) (*models.LessonDetail, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "lesson", "load")
	}
	return lesson, nil
}

// Create stores a new lesson.
func (s *LessonService) Create(ctx context.Context, actor models.Actor, lesson *models.Lesson) (*models.Lesson, error) {
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson", "create")
	}
	return lesson, nil
}

// Update overwrites a lesson.
func (s *LessonService) Update(ctx context.Context, actor models.Actor, id int64, lesson *models.Lesson) (*models.Lesson, error) {
	lesson.ID = id
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, storeError(err, "lesson", "update")
	}
	return lesson, nil
}

// Delete removes a lesson.
func (s *LessonService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "lesson", "delete")
	}
	return nil
}
