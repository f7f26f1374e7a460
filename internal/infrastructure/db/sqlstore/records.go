package sqlstore

import (
	"time"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type userRecord struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Username     string     `gorm:"size:150;not null;uniqueIndex"`
	Email        string     `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password;size:128;not null"`
	Name         string     `gorm:"size:150"`
	Lastname     string     `gorm:"size:150"`
	IsSuperuser  bool       `gorm:"not null"`
	IsStaff      bool       `gorm:"not null"`
	IsActive     bool       `gorm:"not null"`
	DateJoined   time.Time  `gorm:"not null"`
	LastLogin    *time.Time
}

func (userRecord) TableName() string { return "users" }

type checkInRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	UserID      int64      `gorm:"not null;index"`
	User        userRecord `gorm:"constraint:OnDelete:CASCADE"`
	CheckInTime time.Time  `gorm:"not null;index"`
}

func (checkInRecord) TableName() string { return "check_ins" }

// tokenRecord keeps the key in a column named "token"; "key" is reserved in
// MySQL.
type tokenRecord struct {
	Key     string     `gorm:"column:token;primaryKey;size:40"`
	UserID  int64      `gorm:"not null;uniqueIndex"`
	User    userRecord `gorm:"constraint:OnDelete:CASCADE"`
	Created time.Time  `gorm:"not null"`
	Expires *time.Time
}

func (tokenRecord) TableName() string { return "tokens" }

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Lastname:     u.Lastname,
		IsSuperuser:  u.IsSuperuser,
		IsStaff:      u.IsStaff,
		IsActive:     u.IsActive,
		DateJoined:   storeTime(u.DateJoined),
		LastLogin:    storeTimePtr(u.LastLogin),
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Lastname:     r.Lastname,
		IsSuperuser:  r.IsSuperuser,
		IsStaff:      r.IsStaff,
		IsActive:     r.IsActive,
		DateJoined:   r.DateJoined.UTC(),
		LastLogin:    utcPtr(r.LastLogin),
	}
}

func (r checkInRecord) toDomain() *domain.CheckIn {
	c := &domain.CheckIn{
		ID:          r.ID,
		UserID:      r.UserID,
		CheckInTime: r.CheckInTime.UTC(),
	}
	if r.User.ID != 0 {
		c.User = r.User.toDomain()
	}
	return c
}

func (r tokenRecord) toDomain() *domain.Token {
	return &domain.Token{
		Key:     r.Key,
		UserID:  r.UserID,
		Created: r.Created.UTC(),
		Expires: utcPtr(r.Expires),
	}
}

// storeTime drops sub-microsecond precision, which not every driver keeps.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func storeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := storeTime(*t)
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
