package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
	"github.com/checkin-system/users-api/internal/pkg/metrics"
)

// UserService implements account signup and management.
type UserService struct {
	store  ports.Store
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(store ports.Store, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates an active, unprivileged account. The username defaults to
// the email address when left empty.
func (s *UserService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email
	}
	if email == "" || in.Password == "" || in.Name == "" || in.Lastname == "" {
		return nil, fmt.Errorf("%w: email, password, name and lastname are required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	created, err := s.store.Users().Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Lastname:     strings.TrimSpace(in.Lastname),
		IsActive:     true,
		DateJoined:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.store.Users().List(ctx, filter)
}

// Update applies a partial update on behalf of actor.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	if !actor.CanManage(id) {
		return nil, domain.ErrForbidden
	}
	if (in.IsActive != nil || in.IsStaff != nil || in.IsSuperuser != nil) && !actor.IsSuperuser {
		return nil, fmt.Errorf("%w: only superusers may change permissions", domain.ErrForbidden)
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperuser(actor, user); err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
		}
		user.Email = email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrValidation)
		}
		user.Username = username
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Lastname != nil {
		user.Lastname = strings.TrimSpace(*in.Lastname)
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrValidation)
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsStaff != nil {
		user.IsStaff = *in.IsStaff
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}

	updated, err := s.store.Users().Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the account on behalf of actor.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if !actor.CanManage(id) {
		return domain.ErrForbidden
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		target, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := guardSuperuser(actor, target); err != nil {
			return err
		}
		if err := tx.CheckIns().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Tokens().DeleteByUser(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// guardSuperuser keeps superuser accounts out of reach of anyone but another
// superuser.
func guardSuperuser(actor, target *domain.User) error {
	if target.IsSuperuser && !actor.IsSuperuser {
		return fmt.Errorf("%w: only superusers may modify a superuser account", domain.ErrForbidden)
	}
	return nil
}
