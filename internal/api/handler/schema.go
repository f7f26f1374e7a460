package handler

import "time"

// --- Request types ---

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Lastname string `json:"lastname" validate:"required"`
}

// updateUserRequest is a partial update; absent fields stay unchanged.
type updateUserRequest struct {
	Username    *string `json:"username"     validate:"omitempty,min=1"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Password    *string `json:"password"     validate:"omitempty,min=1"`
	Name        *string `json:"name"`
	Lastname    *string `json:"lastname"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createCheckInRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// --- Response types ---

type userResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Lastname    string     `json:"lastname"`
	IsSuperuser bool       `json:"is_superuser"`
	IsStaff     bool       `json:"is_staff"`
	IsActive    bool       `json:"is_active"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}

type checkInResponse struct {
	ID          int64         `json:"id"`
	User        *userResponse `json:"user"`
	CheckInTime time.Time     `json:"check_in_time"`
}

type authResponse struct {
	Token       string     `json:"token"`
	Expires     *time.Time `json:"expires"`
	UserID      int64      `json:"user_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Lastname    string     `json:"lastname"`
	IsSuperuser bool       `json:"is_superuser"`
}

type authErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}
