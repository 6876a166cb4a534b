package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type parentRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Parent, int, error)
	FindByID(ctx context.Context, id string) (*models.Parent, error)
	Create(ctx context.Context, parent *models.Parent) error
	Patch(ctx context.Context, id string, patch models.ParentPatch) error
	Delete(ctx context.Context, id string) error
	HasDependents(ctx context.Context, id string) (bool, error)
}

// ParentService orchestrates parents, the students they are connected to and their identity accounts.
type ParentService struct {
	repo      parentRepository
	lifecycle identityLifecycle
	logger    *zap.Logger
	pageSize  int
}

// NewParentService constructs a ParentService.
func NewParentService(repo parentRepository, provider identity.Provider, audit reconciler, logger *zap.Logger, pageSize int) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ParentService{
		repo:      repo,
		lifecycle: identityLifecycle{kind: models.KindParent, provider: provider, reconciler: audit, logger: logger},
		logger:    logger,
		pageSize:  pageSize,
	}
}

// List returns parents plus pagination data.
func (s *ParentService) List(ctx context.Context, filter models.ListFilter) ([]models.Parent, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	parents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parents")
	}
	return parents, pageOf(filter, total), nil
}

// Get returns a parent by id with its student ids.
func (s *ParentService) Get(ctx context.Context, id string) (*models.Parent, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "parent", "load")
	}
	return parent, nil
}

// Create provisions the identity, then stores the parent and connects the listed students.
func (s *ParentService) Create(ctx context.Context, actor models.Actor, rec *models.ParentRecord) (*models.Parent, error) {
	created, err := s.lifecycle.provision(ctx, identity.NewIdentity{
		Username:  rec.Username,
		Password:  rec.Password,
		FirstName: rec.Name,
		LastName:  rec.Surname,
		Email:     rec.Email,
		Role:      models.RoleParent,
	})
	if err != nil {
		return nil, err
	}

	parent := rec.Parent
	parent.ID = created.ID
	if err := s.repo.Create(ctx, &parent); err != nil {
		s.lifecycle.orphaned(created.ID, err)
		return nil, storeError(err, "parent", "create")
	}

	s.logger.Info("parent created", zap.String("parent_id", parent.ID), zap.Int("students", len(parent.StudentIDs)), zap.String("actor", actor.UserID))
	return &parent, nil
}

// Update applies a partial update. The identity receives only the supplied
// identity fields and the store only the supplied columns.
func (s *ParentService) Update(ctx context.Context, actor models.Actor, id string, patch *models.ParentPatch) (*models.Parent, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "parent", "load")
	}
	if patch == nil || patch.Empty() {
		return current, nil
	}

	update := identity.IdentityUpdate{
		Username:  patch.Username,
		Password:  patch.Password,
		FirstName: patch.Name,
		LastName:  patch.Surname,
	}
	if update.Username != nil || update.Password != nil || update.FirstName != nil || update.LastName != nil {
		if err := s.lifecycle.update(ctx, id, update); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Patch(ctx, id, *patch); err != nil {
		s.logger.Warn("parent patch failed", zap.String("parent_id", id), zap.Error(err))
		return nil, storeError(err, "parent", "update")
	}

	updated := patch.Apply(*current)
	return &updated, nil
}

// Delete removes the identity, then the parent row.
func (s *ParentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return storeError(err, "parent", "load")
	}
	if err := ensureNoDependents(ctx, s.repo, id, "parent", "students"); err != nil {
		return err
	}
	return s.lifecycle.remove(ctx, actor, id, func() error {
		return s.repo.Delete(ctx, id)
	})
}
