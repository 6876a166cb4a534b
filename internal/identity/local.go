package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// LocalProvider keeps accounts in the application's users table.
type LocalProvider struct {
	users  userStore
	logger *zap.Logger
	cost   int
}

// NewLocalProvider constructs a LocalProvider.
func NewLocalProvider(users userStore, logger *zap.Logger) *LocalProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalProvider{users: users, logger: logger, cost: bcrypt.DefaultCost}
}

// CreateIdentity stores a new account with a bcrypt password hash.
func (p *LocalProvider) CreateIdentity(ctx context.Context, in NewIdentity) (Identity, error) {
	if err := p.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           "user_" + uuid.NewString(),
		Username:     in.Username,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Role:         in.Role,
		Active:       true,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return Identity{}, err
	}

	p.logger.Debug("identity created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return Identity{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// UpdateIdentity applies the present fields to the stored account.
func (p *LocalProvider) UpdateIdentity(ctx context.Context, id string, in IdentityUpdate) error {
	user, err := p.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := p.ensureUsernameFree(ctx, *in.Username, id); err != nil {
			return err
		}
		user.Username = *in.Username
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), p.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := p.users.Update(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteIdentity removes the account.
func (p *LocalProvider) DeleteIdentity(ctx context.Context, id string) error {
	if err := p.users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (p *LocalProvider) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := p.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrUsernameTaken
	}
	return nil
}
