package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) FindByUser(ctx context.Context, userID int64) (*domain.Token, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *TokenRepository) FindByKey(ctx context.Context, key string) (*domain.Token, error) {
	return r.findOne(ctx, "token = ?", key)
}

func (r *TokenRepository) findOne(ctx context.Context, query string, arg any) (*domain.Token, error) {
	var rec tokenRecord
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	rec := tokenRecord{
		Key:     token.Key,
		UserID:  token.UserID,
		Created: storeTime(token.Created),
		Expires: storeTimePtr(token.Expires),
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&rec).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return domain.ErrTokenConflict
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where("token = ?", key).Delete(&tokenRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&tokenRecord{}).Error; err != nil {
		return fmt.Errorf("delete token for user: %w", err)
	}
	return nil
}
