package domain

import "time"

// User models an account that can authenticate and own check-ins.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Lastname     string     `json:"lastname"`
	IsSuperuser  bool       `json:"is_superuser"`
	IsStaff      bool       `json:"is_staff"`
	IsActive     bool       `json:"is_active"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
}

// CanManage reports whether u may read or modify the account identified by id.
func (u *User) CanManage(id int64) bool {
	if u == nil {
		return false
	}
	return u.ID == id || u.IsStaff || u.IsSuperuser
}
