package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// SubjectService manages subjects and the teachers assigned to them.
type SubjectService struct {
	repo     subjectRepository
	logger   *zap.Logger
	pageSize int
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, logger *zap.Logger, pageSize int) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SubjectService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns subjects plus pagination data.
func (s *SubjectService) List(ctx context.Context, filter models.ListFilter) ([]models.Subject, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, pageOf(filter, total), nil
}

// Get returns a subject with its teacher ids.
func (s *SubjectService) Get(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "subject", "load")
	}
	return subject, nil
}

// Create stores the subject and connects the submitted teachers.
func (s *SubjectService) Create(ctx context.Context, actor models.Actor, subject *models.Subject) (*models.Subject, error) {
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, storeError(err, "subject", "create")
	}
	return subject, nil
}

// Update overwrites the subject and sets its teachers to exactly the submitted ids.
func (s *SubjectService) Update(ctx context.Context, actor models.Actor, id int64, subject *models.Subject) (*models.Subject, error) {
	subject.ID = id
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, storeError(err, "subject", "update")
	}
	return subject, nil
}

// Delete removes a subject with its teacher edges.
func (s *SubjectService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "subject", "delete")
	}
	return nil
}
