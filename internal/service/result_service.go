package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type resultRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.ResultDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.ResultDetail, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id int64) error
}

// ResultService manages exam and assignment scores.
type ResultService struct {
	repo     resultRepository
	logger   *zap.Logger
	pageSize int
}

// NewResultService constructs a ResultService.
func NewResultService(repo resultRepository, logger *zap.Logger, pageSize int) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ResultService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns results plus pagination data.
func (s *ResultService) List(ctx context.Context, filter models.ListFilter) ([]models.ResultDetail, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, pageOf(filter, total), nil
}

// Get returns a result by id.
func (s *ResultService) Get(ctx context.Context, id int64) (*models.ResultDetail, error) {
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "result", "load")
	}
	return result, nil
}

// Create stores a new result.
func (s *ResultService) Create(ctx context.Context, actor models.Actor, result *models.Result) (*models.Result, error) {
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, storeError(err, "result", "create")
	}
	return result, nil
}

// Update overwrites a result.
func (s *ResultService) Update(ctx context.Context, actor models.Actor, id int64, result *models.Result) (*models.Result, error) {
	result.ID = id
	if err := s.repo.Update(ctx, result); err != nil {
		return nil, storeError(err, "result", "update")
	}
	return result, nil
}

// Delete removes a result.
func (s *ResultService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "result", "delete")
	}
	return nil
}
