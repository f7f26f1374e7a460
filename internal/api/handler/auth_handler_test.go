package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, username, password string) (*domain.Token, *domain.User, error)
	validateFn func(ctx context.Context, key string) (*domain.User, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	_, user, err := s.loginFn(ctx, username, password)
	return user, err
}

func (s *stubAuthService) IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.Token, error) {
	return &domain.Token{Key: "k", UserID: user.ID}, nil
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, key string) (*domain.User, error) {
	return s.validateFn(ctx, key)
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decodeAuthError(t *testing.T, rec *httptest.ResponseRecorder) authErrorResponse {
	t.Helper()
	var resp authErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
			if username != "alice@x.io" || password != "pw1" {
				t.Fatalf("unexpected credentials: %s %s", username, password)
			}
			user := &domain.User{ID: 1, Email: "alice@x.io", Name: "Alice", Lastname: "Liddell"}
			return &domain.Token{Key: "abc123", UserID: 1, Expires: &expires}, user, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	rec := postLogin(t, h, `{"username":"alice@x.io","password":"pw1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "abc123" || resp["user_id"] != float64(1) || resp["email"] != "alice@x.io" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["name"] != "Alice" || resp["lastname"] != "Liddell" || resp["is_superuser"] != false {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["expires"] != "2024-05-02T12:00:00Z" {
		t.Fatalf("unexpected expires: %v", resp["expires"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	rec := postLogin(t, h, `{"username":"alice@x.io","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	resp := decodeAuthError(t, rec)
	if resp.Error != "Authentication failed" || resp.Detail != "invalid credentials" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "token\"") {
		t.Fatalf("failure response must not carry a token: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	called := false
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
			called = true
			return nil, nil, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	rec := postLogin(t, h, `{"username":`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("service must not be called for an unreadable body")
	}
	if resp := decodeAuthError(t, rec); resp.Error != "Authentication failed" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestAuthHandler_Login_InternalError(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.Token, *domain.User, error) {
			return nil, nil, errors.New("db down")
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	rec := postLogin(t, h, `{"username":"alice@x.io","password":"pw1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeAuthError(t, rec)
	if resp.Error != "unexpected error" || resp.Detail != "internal server error" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}
