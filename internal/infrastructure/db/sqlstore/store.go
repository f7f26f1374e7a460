package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/checkin-system/users-api/internal/core/ports"
)

// Store implements ports.Store on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() ports.UserRepository       { return NewUserRepository(s.db) }
func (s *Store) CheckIns() ports.CheckInRepository { return NewCheckInRepository(s.db) }
func (s *Store) Tokens() ports.TokenRepository     { return NewTokenRepository(s.db) }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
