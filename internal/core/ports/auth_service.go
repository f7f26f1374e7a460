package ports

import (
	"context"

	"github.com/checkin-system/users-api/internal/core/domain"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthService authenticates credentials and issues opaque bearer tokens.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.Token, error)
	// Login authenticates and returns the user's current token.
	Login(ctx context.Context, username, password string) (*domain.Token, *domain.User, error)
	// ValidateToken resolves a token key to its active owner.
	ValidateToken(ctx context.Context, key string) (*domain.User, error)
}
