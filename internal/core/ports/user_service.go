package ports

import (
	"context"

	"github.com/checkin-system/users-api/internal/core/domain"
)

// SignupInput carries the fields accepted when creating an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Lastname string
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
// The privilege flags may only be set by a superuser.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	Password    *string
	Name        *string
	Lastname    *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UserService defines account use cases.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id int64, in UpdateUserInput) (*domain.User, error)
	// Delete removes the user together with its check-ins and token.
	Delete(ctx context.Context, actor *domain.User, id int64) error
}
