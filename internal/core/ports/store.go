package ports

import (
	"context"
	"time"

	"github.com/checkin-system/users-api/internal/core/domain"
)

// UserFilter narrows a user listing. Nil flags are not applied.
type UserFilter struct {
	Search      string // partial match on username, email, name or lastname
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when username or email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns matching users ordered by username.
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// CheckInRepository persists check-ins. Every read returns check-ins with
// their owning User populated, most recent first.
type CheckInRepository interface {
	Create(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error)
	FindByID(ctx context.Context, id int64) (*domain.CheckIn, error)
	List(ctx context.Context) ([]*domain.CheckIn, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error)
	// LatestByUser returns domain.ErrCheckInNotFound when the user has none.
	LatestByUser(ctx context.Context, userID int64) (*domain.CheckIn, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// TokenRepository persists bearer tokens, at most one per user.
type TokenRepository interface {
	FindByUser(ctx context.Context, userID int64) (*domain.Token, error)
	FindByKey(ctx context.Context, key string) (*domain.Token, error)
	// Create returns domain.ErrTokenConflict when the user already has a token.
	Create(ctx context.Context, token *domain.Token) error
	Delete(ctx context.Context, key string) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// Store hands out repositories bound to one connection or transaction scope.
type Store interface {
	Users() UserRepository
	CheckIns() CheckInRepository
	Tokens() TokenRepository
	// WithinTx runs fn with a Store whose repositories share one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
