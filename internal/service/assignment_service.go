package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
}

// AssignmentService manages assignments. Optional links are overwritten on update.
type AssignmentService struct {
	repo     assignmentRepository
	logger   *zap.Logger
	pageSize int
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, logger *zap.Logger, pageSize int) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &AssignmentService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns assignments plus pagination data.
func (s *AssignmentService) List(ctx context.Context, filter models.ListFilter) ([]models.Assignment, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, pageOf(filter, total), nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "assignment", "load")
	}
	return assignment, nil
}

// Create stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, actor models.Actor, assignment *models.Assignment) (*models.Assignment, error) {
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, storeError(err, "assignment", "create")
	}
	return assignment, nil
}

// Update overwrites an assignment.
func (s *AssignmentService) Update(ctx context.Context, actor models.Actor, id int64, assignment *models.Assignment) (*models.Assignment, error) {
	assignment.ID = id
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, storeError(err, "assignment", "update")
	}
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "assignment", "delete")
	}
	return nil
}
