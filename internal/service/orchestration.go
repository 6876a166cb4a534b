package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const defaultPageSize = 10

// reconciler records deletes that left the store and the identity provider out of step.
type reconciler interface {
	RecordReconcile(ctx context.Context, actor models.Actor, kind models.EntityKind, id string, cause error)
}

type dependentsChecker interface {
	HasDependents(ctx context.Context, id string) (bool, error)
}

// ensureNoDependents rejects deleting a record other rows still point at.
// It runs before the identity is touched.
func ensureNoDependents(ctx context.Context, repo dependentsChecker, id, resource, dependents string) error {
	found, err := repo.HasDependents(ctx, id)
	if err != nil {
		return storeError(err, resource, "check")
	}
	if found {
		return appErrors.Clone(appErrors.ErrHasDependents, "Cannot delete "+resource+" with existing "+dependents)
	}
	return nil
}

// storeError translates a repository failure into the API error taxonomy.
func storeError(err error, resource, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	case repository.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, resource+" already exists")
	case repository.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, resource+" references missing or dependent records")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+action+" "+resource)
	}
}

// parseID converts a path id into a numeric key.
func parseID(raw, resource string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+resource+" id")
	}
	return id, nil
}

// listDefaults fills the page and page size the repositories expect.
func listDefaults(filter *models.ListFilter, pageSize int) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = pageSize
	}
}

func pageOf(filter models.ListFilter, total int) *models.Pagination {
	return &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
}

// identityLifecycle sequences identity provider calls around store writes for
// students, teachers and parents. The two systems are never updated atomically.
type identityLifecycle struct {
	kind       models.EntityKind
	provider   identity.Provider
	reconciler reconciler
	logger     *zap.Logger
}

func (l identityLifecycle) provision(ctx context.Context, in identity.NewIdentity) (identity.Identity, error) {
	created, err := l.provider.CreateIdentity(ctx, in)
	if err != nil {
		l.logger.Warn("identity provisioning failed", zap.String("entity", string(l.kind)), zap.String("username", in.Username), zap.Error(err))
		return identity.Identity{}, identityError(err)
	}
	return created, nil
}

func (l identityLifecycle) update(ctx context.Context, id string, in identity.IdentityUpdate) error {
	if err := l.provider.UpdateIdentity(ctx, id, in); err != nil {
		l.logger.Warn("identity update failed", zap.String("entity", string(l.kind)), zap.String("identity_id", id), zap.Error(err))
		return identityError(err)
	}
	return nil
}

// orphaned logs an identity whose store record was never written.
func (l identityLifecycle) orphaned(identityID string, cause error) {
	l.logger.Error("identity orphaned after store failure",
		zap.String("entity", string(l.kind)),
		zap.String("identity_id", identityID),
		zap.Error(cause),
	)
}

// remove deletes the identity, then the record through deleteRecord.
func (l identityLifecycle) remove(ctx context.Context, actor models.Actor, id string, deleteRecord func() error) error {
	if err := l.provider.DeleteIdentity(ctx, id); err != nil {
		if !errors.Is(err, identity.ErrNotFound) {
			l.logger.Warn("identity delete failed", zap.String("entity", string(l.kind)), zap.String("identity_id", id), zap.Error(err))
			return identityError(err)
		}
		l.logger.Warn("identity already absent, removing record", zap.String("entity", string(l.kind)), zap.String("identity_id", id))
	}

	if err := deleteRecord(); err != nil {
		l.logger.Error("record delete failed after identity removal",
			zap.String("entity", string(l.kind)),
			zap.String("identity_id", id),
			zap.String("record_id", id),
			zap.Error(err),
		)
		if l.reconciler != nil {
			l.reconciler.RecordReconcile(ctx, actor, l.kind, id, err)
		}
		return appErrors.Wrap(err, appErrors.ErrInconsistentState.Code, appErrors.ErrInconsistentState.Status, appErrors.ErrInconsistentState.Message)
	}
	return nil
}

func identityError(err error) error {
	if errors.Is(err, identity.ErrUsernameTaken) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "username already taken")
	}
	return appErrors.Wrap(err, appErrors.ErrIdentityProvider.Code, appErrors.ErrIdentityProvider.Status, appErrors.ErrIdentityProvider.Message)
}

func identityUpdate(username, password, firstName, lastName string) identity.IdentityUpdate {
	update := identity.IdentityUpdate{
		Username:  &username,
		FirstName: &firstName,
		LastName:  &lastName,
	}
	if password != "" {
		update.Password = &password
	}
	return update
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
