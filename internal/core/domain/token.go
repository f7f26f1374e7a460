package domain

import "time"

// Token is the opaque bearer credential issued to a user after authentication.
// A nil Expires means the token never expires.
type Token struct {
	Key     string
	UserID  int64
	Created time.Time
	Expires *time.Time
}

// IsExpired reports whether the token has an expiry strictly before now.
func (t *Token) IsExpired(now time.Time) bool {
	return t.Expires != nil && t.Expires.Before(now)
}
