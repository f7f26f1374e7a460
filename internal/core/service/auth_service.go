package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
	"github.com/checkin-system/users-api/internal/pkg/metrics"
)

const defaultTokenTTL = 24 * time.Hour

// AuthService authenticates users and issues expiring opaque tokens.
type AuthService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	tokenTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(store ports.Store, hasher ports.PasswordHasher, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokenTTL: tokenTTL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate returns the active user matching the credentials. Unknown
// usernames, inactive accounts and wrong passwords all yield
// domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if s.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// IssueOrRefresh returns the user's live token, replacing it when expired and
// creating one when none exists.
func (s *AuthService) IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.Token, error) {
	var (
		issued  *domain.Token
		outcome string
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		issued, outcome, err = s.issueOrRefresh(ctx, tx.Tokens(), user.ID)
		return err
	})
	if errors.Is(err, domain.ErrTokenConflict) {
		// A concurrent request created the token first; use theirs.
		issued, err = s.store.Tokens().FindByUser(ctx, user.ID)
		outcome = "reused"
	}
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(outcome).Inc()
	return issued, nil
}

func (s *AuthService) issueOrRefresh(ctx context.Context, tokens ports.TokenRepository, userID int64) (*domain.Token, string, error) {
	now := s.now()

	existing, err := tokens.FindByUser(ctx, userID)
	switch {
	case err == nil && !existing.IsExpired(now):
		return existing, "reused", nil
	case err == nil:
		if err := tokens.Delete(ctx, existing.Key); err != nil {
			return nil, "", err
		}
		s.log.Debug().Int64("user_id", userID).Msg("expired token replaced")
	case !errors.Is(err, domain.ErrTokenNotFound):
		return nil, "", err
	}

	key, err := generateKey()
	if err != nil {
		return nil, "", err
	}
	expires := now.Add(s.tokenTTL)
	token := &domain.Token{Key: key, UserID: userID, Created: now, Expires: &expires}
	if err := tokens.Create(ctx, token); err != nil {
		return nil, "", err
	}

	if existing != nil {
		return token, "refreshed", nil
	}
	return token, "created", nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		}
		return nil, nil, err
	}

	token, err := s.IssueOrRefresh(ctx, user)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	now := s.now()
	if err := s.store.Users().SetLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	metrics.AuthAttemptsTotal.WithLabelValues("accepted").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("user authenticated")
	return token, user, nil
}

// ValidateToken resolves a bearer key to its owner.
func (s *AuthService) ValidateToken(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrTokenInvalid
	}

	token, err := s.store.Tokens().FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if token.IsExpired(s.now()) {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.store.Users().FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserInactive
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

// generateKey returns 40 hex characters drawn from 20 random bytes.
func generateKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
