package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type stubCheckInService struct {
	createFn  func(ctx context.Context, userID int64, idempotencyKey string) (*domain.CheckIn, error)
	getFn     func(ctx context.Context, id int64) (*domain.CheckIn, error)
	listFn    func(ctx context.Context) ([]*domain.CheckIn, error)
	lastFn    func(ctx context.Context, userID int64) (*domain.CheckIn, bool, error)
	forUserFn func(ctx context.Context, userID int64) ([]*domain.CheckIn, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (s *stubCheckInService) Create(ctx context.Context, userID int64, idempotencyKey string) (*domain.CheckIn, error) {
	return s.createFn(ctx, userID, idempotencyKey)
}

func (s *stubCheckInService) Get(ctx context.Context, id int64) (*domain.CheckIn, error) {
	return s.getFn(ctx, id)
}

func (s *stubCheckInService) List(ctx context.Context) ([]*domain.CheckIn, error) {
	return s.listFn(ctx)
}

func (s *stubCheckInService) Last(ctx context.Context, userID int64) (*domain.CheckIn, bool, error) {
	return s.lastFn(ctx, userID)
}

func (s *stubCheckInService) ForUser(ctx context.Context, userID int64) ([]*domain.CheckIn, error) {
	return s.forUserFn(ctx, userID)
}

func (s *stubCheckInService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func sampleCheckIn(id int64, at time.Time) *domain.CheckIn {
	return &domain.CheckIn{
		ID:          id,
		UserID:      1,
		User:        &domain.User{ID: 1, Username: "alice", Email: "alice@x.io"},
		CheckInTime: at,
	}
}

func TestCheckInHandler_Create(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewCheckInHandler(&stubCheckInService{
		createFn: func(ctx context.Context, userID int64, key string) (*domain.CheckIn, error) {
			if userID != 1 || key != "req-1" {
				t.Fatalf("unexpected args: %d %q", userID, key)
			}
			return sampleCheckIn(10, at), nil
		},
	})

	c, rec := newContext(http.MethodPost, "/check-ins", `{"user_id":1}`)
	c.Request().Header.Set("Idempotency-Key", "req-1")
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected nested user, got %+v", resp)
	}
	if resp["check_in_time"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected time: %v", resp["check_in_time"])
	}
}

func TestCheckInHandler_Create_MissingUser(t *testing.T) {
	h := NewCheckInHandler(&stubCheckInService{})
	c, _ := newContext(http.MethodPost, "/check-ins", `{}`)
	if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCheckInHandler_Create_UnknownUser(t *testing.T) {
	h := NewCheckInHandler(&stubCheckInService{
		createFn: func(ctx context.Context, userID int64, key string) (*domain.CheckIn, error) {
			return nil, domain.ErrUserNotFound
		},
	})
	c, _ := newContext(http.MethodPost, "/check-ins", `{"user_id":99}`)
	if err := h.Create(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCheckInHandler_Update_ReturnsStoredRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewCheckInHandler(&stubCheckInService{
		getFn: func(ctx context.Context, id int64) (*domain.CheckIn, error) {
			return sampleCheckIn(id, at), nil
		},
	})

	c, rec := newContext(http.MethodPut, "/check-ins/10", `{"check_in_time":"2030-01-01T00:00:00Z"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp checkInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 10 || !resp.CheckInTime.Equal(at) {
		t.Fatalf("record must be unchanged, got %+v", resp)
	}
}

func TestCheckInHandler_Last(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewCheckInHandler(&stubCheckInService{
		lastFn: func(ctx context.Context, userID int64) (*domain.CheckIn, bool, error) {
			switch userID {
			case 1:
				return sampleCheckIn(3, at), true, nil
			case 2:
				return nil, false, nil
			default:
				return nil, false, domain.ErrUserNotFound
			}
		},
	})

	c, rec := newContext(http.MethodGet, "/check-ins/last_checkin?user_id=1", "")
	if err := h.Last(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/check-ins/last_checkin?user_id=2", "")
	if err := h.Last(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var msg messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil || msg.Message != "No check-ins found for this user" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodGet, "/check-ins/last_checkin?user_id=3", "")
	if err := h.Last(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCheckInHandler_UserIDQuery(t *testing.T) {
	h := NewCheckInHandler(&stubCheckInService{})

	cases := []struct {
		name   string
		target string
	}{
		{"missing", "/check-ins/user_check_ins"},
		{"not a number", "/check-ins/user_check_ins?user_id=abc"},
		{"not positive", "/check-ins/user_check_ins?user_id=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(http.MethodGet, tc.target, "")
			if code := httpCode(t, h.ForUser(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestCheckInHandler_ForUser(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewCheckInHandler(&stubCheckInService{
		forUserFn: func(ctx context.Context, userID int64) ([]*domain.CheckIn, error) {
			return []*domain.CheckIn{sampleCheckIn(2, now), sampleCheckIn(1, now.Add(-time.Hour))}, nil
		},
	})

	c, rec := newContext(http.MethodGet, "/check-ins/user_check_ins?user_id=1", "")
	if err := h.ForUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []checkInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != 2 {
		t.Fatalf("unexpected order: %+v", resp)
	}
}

func TestCheckInHandler_ListEmpty(t *testing.T) {
	h := NewCheckInHandler(&stubCheckInService{
		listFn: func(ctx context.Context) ([]*domain.CheckIn, error) { return nil, nil },
	})
	c, rec := newContext(http.MethodGet, "/check-ins", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestCheckInHandler_Delete(t *testing.T) {
	h := NewCheckInHandler(&stubCheckInService{
		deleteFn: func(ctx context.Context, id int64) error {
			if id != 4 {
				return domain.ErrCheckInNotFound
			}
			return nil
		},
	})

	c, rec := newContext(http.MethodDelete, "/check-ins/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodDelete, "/check-ins/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Delete(c); !errors.Is(err, domain.ErrCheckInNotFound) {
		t.Fatalf("expected ErrCheckInNotFound, got %v", err)
	}
}
