package domain

import (
	"testing"
	"time"
)

func TestToken_IsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	cases := []struct {
		name    string
		expires *time.Time
		want    bool
	}{
		{"no expiry never expires", nil, false},
		{"expiry in the past", &past, true},
		{"expiry in the future", &future, false},
		{"expiry equal to now is still valid", &now, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := &Token{Key: "k", Expires: tc.expires}
			if got := tok.IsExpired(now); got != tc.want {
				t.Fatalf("IsExpired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUser_CanManage(t *testing.T) {
	self := &User{ID: 1}
	staff := &User{ID: 2, IsStaff: true}
	root := &User{ID: 3, IsSuperuser: true}

	if !self.CanManage(1) {
		t.Fatalf("user should manage own account")
	}
	if self.CanManage(2) {
		t.Fatalf("regular user must not manage other accounts")
	}
	if !staff.CanManage(1) || !root.CanManage(1) {
		t.Fatalf("staff and superusers manage every account")
	}
	var nobody *User
	if nobody.CanManage(1) {
		t.Fatalf("nil user manages nothing")
	}
}
