package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user inactive or deleted")
	ErrForbidden          = errors.New("access forbidden")

	ErrCheckInNotFound = errors.New("check-in not found")

	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token has expired")
	// ErrTokenConflict is returned by a store when another token already
	// exists for the same user.
	ErrTokenConflict = errors.New("token already exists for user")
)
