// Package identity provisions and maintains the login accounts that back
// students, teachers and parents.
package identity

import (
	"context"
	"errors"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// ErrNotFound is returned when the referenced account does not exist.
var ErrNotFound = errors.New("identity not found")

// ErrUsernameTaken is returned when another account already uses the username.
var ErrUsernameTaken = errors.New("username already taken")

// NewIdentity describes an account to provision.
type NewIdentity struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     *string
	Role      models.UserRole
}

// IdentityUpdate carries the account fields to change. Nil fields are kept.
type IdentityUpdate struct {
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
}

// Identity is the provisioned account.
type Identity struct {
	ID       string
	Username string
	Role     models.UserRole
}

// Provider is the external account service. Calls are not retried.
type Provider interface {
	CreateIdentity(ctx context.Context, in NewIdentity) (Identity, error)
	UpdateIdentity(ctx context.Context, id string, in IdentityUpdate) error
	DeleteIdentity(ctx context.Context, id string) error
}
