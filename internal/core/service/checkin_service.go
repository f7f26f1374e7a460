package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
	"github.com/checkin-system/users-api/internal/pkg/metrics"
)

const defaultIdempotencyTTL = 24 * time.Hour

// CheckInService records and queries check-ins.
type CheckInService struct {
	store          ports.Store
	idem           ports.IdempotencyStore // optional
	publisher      ports.EventPublisher   // optional
	idempotencyTTL time.Duration
	log            zerolog.Logger
	now            func() time.Time
}

// CheckInOption configures optional collaborators of CheckInService.
type CheckInOption func(*CheckInService)

// WithIdempotency enables Idempotency-Key handling on Create.
func WithIdempotency(store ports.IdempotencyStore, ttl time.Duration) CheckInOption {
	return func(s *CheckInService) {
		s.idem = store
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithPublisher publishes an event after each create and delete.
func WithPublisher(p ports.EventPublisher) CheckInOption {
	return func(s *CheckInService) { s.publisher = p }
}

func NewCheckInService(store ports.Store, log zerolog.Logger, opts ...CheckInOption) *CheckInService {
	s := &CheckInService{
		store:          store,
		idempotencyTTL: defaultIdempotencyTTL,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a check-in for userID stamped with the current time. A
// repeated idempotency key for the same user returns the check-in created the
// first time; keys are scoped per user.
func (s *CheckInService) Create(ctx context.Context, userID int64, idempotencyKey string) (*domain.CheckIn, error) {
	if idempotencyKey != "" && s.idem != nil {
		idempotencyKey = scopedKey(userID, idempotencyKey)
		if replay, ok := s.replay(ctx, userID, idempotencyKey); ok {
			return replay, nil
		}
	}

	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("create check-in: %w", err)
	}

	created, err := s.store.CheckIns().Create(ctx, &domain.CheckIn{
		UserID:      userID,
		CheckInTime: s.now(),
	})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create check-in")
		return nil, fmt.Errorf("create check-in: %w", err)
	}

	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, idempotencyKey, created.ID, s.idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to store idempotency key")
		}
	}

	metrics.CheckInsTotal.WithLabelValues("created").Inc()
	s.publish(ctx, domain.CheckInCreated, created)
	s.log.Info().Int64("check_in_id", created.ID).Int64("user_id", userID).Msg("check-in created")
	return created, nil
}

func scopedKey(userID int64, key string) string {
	return strconv.FormatInt(userID, 10) + ":" + key
}

func (s *CheckInService) replay(ctx context.Context, userID int64, key string) (*domain.CheckIn, bool) {
	id, ok, err := s.idem.Recall(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	existing, err := s.store.CheckIns().FindByID(ctx, id)
	if err != nil {
		// The original check-in was deleted since; treat the key as fresh.
		return nil, false
	}
	if existing.UserID != userID {
		s.log.Warn().Str("idempotency_key", key).Int64("check_in_id", id).Msg("idempotency key owned by another user")
		return nil, false
	}
	s.log.Info().Str("idempotency_key", key).Int64("check_in_id", id).Msg("idempotent replay")
	return existing, true
}

func (s *CheckInService) Get(ctx context.Context, id int64) (*domain.CheckIn, error) {
	return s.store.CheckIns().FindByID(ctx, id)
}

func (s *CheckInService) List(ctx context.Context) ([]*domain.CheckIn, error) {
	return s.store.CheckIns().List(ctx)
}

// Last returns the user's most recent check-in. An unknown user is an error;
// a known user without check-ins yields found=false.
func (s *CheckInService) Last(ctx context.Context, userID int64) (*domain.CheckIn, bool, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, false, err
	}

	latest, err := s.store.CheckIns().LatestByUser(ctx, userID)
	if errors.Is(err, domain.ErrCheckInNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("last check-in: %w", err)
	}
	return latest, true, nil
}

// ForUser lists the user's check-ins, newest first. A user that does not
// exist (or was deleted) simply has none.
func (s *CheckInService) ForUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error) {
	checkIns, err := s.store.CheckIns().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list check-ins for user: %w", err)
	}
	return checkIns, nil
}

func (s *CheckInService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.CheckIns().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.CheckIns().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete check-in: %w", err)
	}

	metrics.CheckInsTotal.WithLabelValues("deleted").Inc()
	s.publish(ctx, domain.CheckInDeleted, existing)
	return nil
}

// publish is best effort: a failed publication never fails the request.
func (s *CheckInService) publish(ctx context.Context, typ domain.CheckInEventType, c *domain.CheckIn) {
	if s.publisher == nil {
		return
	}
	event := domain.CheckInEvent{
		Type:        typ,
		CheckInID:   c.ID,
		UserID:      c.UserID,
		CheckInTime: c.CheckInTime,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(typ)).Int64("check_in_id", c.ID).Msg("failed to publish check-in event")
	}
}
