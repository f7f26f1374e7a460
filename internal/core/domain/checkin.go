package domain

import "time"

// CheckIn records that a user checked in at a point in time.
// User is populated by the store when the check-in is read back.
type CheckIn struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	User        *User     `json:"user"`
	CheckInTime time.Time `json:"check_in_time"`
}

// CheckInEventType names what happened to a check-in.
type CheckInEventType string

const (
	CheckInCreated CheckInEventType = "checkin.created"
	CheckInDeleted CheckInEventType = "checkin.deleted"
)

// CheckInEvent is published after a check-in is created or deleted.
type CheckInEvent struct {
	Type        CheckInEventType `json:"type"`
	CheckInID   int64            `json:"check_in_id"`
	UserID      int64            `json:"user_id"`
	CheckInTime time.Time        `json:"check_in_time"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
