package ports

import (
	"context"

	"github.com/printwatch/fleet-console/internal/core/domain"
)

// Credentials is the transient email/password pair used for login. It is
// never persisted; it exists only for the duration of a submission.
type Credentials struct {
	Email    string
	Password string
}

// AuthResult is what the fleet API returns from a successful login.
type AuthResult struct {
	Token string
	User  domain.User
}

// CreateUserInput carries the fields for an admin-driven account creation.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries the editable fields of an existing account.
// Passwords are never updated through this path.
type UpdateUserInput struct {
	FullName string
	Email    string
	Role     domain.Role
}

// ChangePasswordInput carries a password rotation request. The fleet API
// verifies CurrentPassword before applying NewPassword.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// FleetClient is the typed gateway to the remote fleet API. Every
// authenticated call takes the bearer token explicitly; the client holds no
// ambient auth state of its own.
type FleetClient interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	CreateUser(ctx context.Context, token string, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, token string, id int64, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
	ChangePassword(ctx context.Context, token string, id int64, in ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	Profile(ctx context.Context, token string) (*domain.User, error)
}

// UserResolver is the slice of FleetClient the session store needs to turn a
// token into an identity.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}
