package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// ClassService manages classes. Capacity is only enforced when students are enrolled.
type ClassService struct {
	repo     classRepository
	logger   *zap.Logger
	pageSize int
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, logger *zap.Logger, pageSize int) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ClassService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns classes with live student counts.
func (s *ClassService) List(ctx context.Context, filter models.ListFilter) ([]models.ClassDetail, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, pageOf(filter, total), nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "class", "load")
	}
	return class, nil
}

// Create stores a new class.
func (s *ClassService) Create(ctx context.Context, actor models.Actor, class *models.Class) (*models.Class, error) {
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, storeError(err, "class", "create")
	}
	return class, nil
}

// Update overwrites a class.
func (s *ClassService) Update(ctx context.Context, actor models.Actor, id int64, class *models.Class) (*models.Class, error) {
	class.ID = id
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, storeError(err, "class", "update")
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "class", "delete")
	}
	return nil
}
