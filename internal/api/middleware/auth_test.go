package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/checkin-system/users-api/internal/core/domain"
)

type stubValidator struct {
	users map[string]*domain.User
	err   error
}

func (s *stubValidator) ValidateToken(_ context.Context, key string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[key]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return u, nil
}

func runAuth(t *testing.T, v TokenValidator, header string) (*httptest.ResponseRecorder, *domain.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.User
	handler := Auth(v)(func(c echo.Context) error {
		seen = UserFrom(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	alice := &domain.User{ID: 1, Username: "alice", IsActive: true}
	v := &stubValidator{users: map[string]*domain.User{"abc123": alice}}

	for _, header := range []string{"Token abc123", "Bearer abc123", "token abc123"} {
		rec, seen := runAuth(t, v, header)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", header, rec.Code)
		}
		if seen == nil || seen.Username != "alice" {
			t.Fatalf("%q: user not injected", header)
		}
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, seen := runAuth(t, &stubValidator{}, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatalf("should not reach next")
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Basic abc", "abc123", "Token "} {
		rec, seen := runAuth(t, &stubValidator{}, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
		if seen != nil {
			t.Fatalf("%q: should not reach next", header)
		}
	}
}

func TestAuthMiddleware_RejectedTokens(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unknown", domain.ErrTokenInvalid},
		{"expired", domain.ErrTokenExpired},
		{"inactive owner", domain.ErrUserInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := runAuth(t, &stubValidator{err: tt.err}, "Token abc")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if seen != nil {
				t.Fatalf("should not reach next")
			}
		})
	}
}
