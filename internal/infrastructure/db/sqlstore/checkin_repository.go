package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// newestFirst orders check-ins by time, breaking ties by id.
func (r *CheckInRepository) newestFirst(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Order("check_in_time DESC").Order("id DESC")
}

func (r *CheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error) {
	rec := checkInRecord{
		UserID:      checkIn.UserID,
		CheckInTime: storeTime(checkIn.CheckInTime),
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert check-in: %w", err)
	}
	return r.FindByID(ctx, rec.ID)
}

func (r *CheckInRepository) FindByID(ctx context.Context, id int64) (*domain.CheckIn, error) {
	var rec checkInRecord
	if err := r.db.WithContext(ctx).Preload("User").First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, fmt.Errorf("find check-in: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *CheckInRepository) List(ctx context.Context) ([]*domain.CheckIn, error) {
	var recs []checkInRecord
	if err := r.newestFirst(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return checkInsToDomain(recs), nil
}

func (r *CheckInRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error) {
	var recs []checkInRecord
	if err := r.newestFirst(ctx).Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list check-ins for user: %w", err)
	}
	return checkInsToDomain(recs), nil
}

func (r *CheckInRepository) LatestByUser(ctx context.Context, userID int64) (*domain.CheckIn, error) {
	var rec checkInRecord
	err := r.newestFirst(ctx).Where("user_id = ?", userID).Limit(1).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCheckInNotFound
		}
		return nil, fmt.Errorf("latest check-in: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *CheckInRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&checkInRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete check-in: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCheckInNotFound
	}
	return nil
}

func (r *CheckInRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&checkInRecord{}).Error; err != nil {
		return fmt.Errorf("delete check-ins for user: %w", err)
	}
	return nil
}

func checkInsToDomain(recs []checkInRecord) []*domain.CheckIn {
	out := make([]*domain.CheckIn, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out
}
