package ports

import (
	"context"
	"time"

	"github.com/checkin-system/users-api/internal/core/domain"
)

// IdempotencyStore remembers which check-in was created for a client-supplied
// Idempotency-Key.
type IdempotencyStore interface {
	Recall(ctx context.Context, key string) (checkInID int64, ok bool, err error)
	Remember(ctx context.Context, key string, checkInID int64, ttl time.Duration) error
}

// EventPublisher delivers check-in events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.CheckInEvent) error
}

// CheckInService defines check-in use cases.
type CheckInService interface {
	Create(ctx context.Context, userID int64, idempotencyKey string) (*domain.CheckIn, error)
	Get(ctx context.Context, id int64) (*domain.CheckIn, error)
	List(ctx context.Context) ([]*domain.CheckIn, error)
	// Last returns found=false without error when the user has no check-ins.
	Last(ctx context.Context, userID int64) (checkIn *domain.CheckIn, found bool, err error)
	ForUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error)
	Delete(ctx context.Context, id int64) error
}
