package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/checkin-system/users-api/internal/api/middleware"
	"github.com/checkin-system/users-api/internal/core/domain"
)

// newContext builds an echo context with the package validator installed.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser runs next behind the token middleware so the handler sees actor as
// the authenticated user.
func asUser(t *testing.T, c echo.Context, actor *domain.User, next echo.HandlerFunc) error {
	t.Helper()
	c.Request().Header.Set("Authorization", "Token test-key")
	validator := &stubAuthService{
		validateFn: func(ctx context.Context, key string) (*domain.User, error) {
			return actor, nil
		},
	}
	return middleware.Auth(validator)(next)(c)
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}
