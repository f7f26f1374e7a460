package handler

import (
	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
)

// --- Request → Service input ---

func toSignupInput(req signupRequest) ports.SignupInput {
	return ports.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Lastname: req.Lastname,
	}
}

func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Lastname:    req.Lastname,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	}
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Lastname:    u.Lastname,
		IsSuperuser: u.IsSuperuser,
		IsStaff:     u.IsStaff,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined.UTC(),
		LastLogin:   u.LastLogin,
	}
}

func toUserResponses(users []*domain.User) []*userResponse {
	out := make([]*userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toCheckInResponse(c *domain.CheckIn) checkInResponse {
	return checkInResponse{
		ID:          c.ID,
		User:        toUserResponse(c.User),
		CheckInTime: c.CheckInTime.UTC(),
	}
}

func toCheckInResponses(checkIns []*domain.CheckIn) []checkInResponse {
	out := make([]checkInResponse, 0, len(checkIns))
	for _, c := range checkIns {
		out = append(out, toCheckInResponse(c))
	}
	return out
}

func toAuthResponse(t *domain.Token, u *domain.User) authResponse {
	return authResponse{
		Token:       t.Key,
		Expires:     t.Expires,
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Lastname:    u.Lastname,
		IsSuperuser: u.IsSuperuser,
	}
}
