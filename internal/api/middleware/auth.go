package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/checkin-system/users-api/internal/core/domain"
)

const userContextKey = "auth_user"

// TokenValidator resolves a bearer key to the owning user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, key string) (*domain.User, error)
}

// Auth validates the token in the Authorization header and injects the owning
// user into the context. Both "Token <key>" and "Bearer <key>" are accepted.
func Auth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !isTokenScheme(parts[0]) || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := validator.ValidateToken(c.Request().Context(), strings.TrimSpace(parts[1]))
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrTokenExpired):
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			case errors.Is(err, domain.ErrUserInactive):
				return echo.NewHTTPError(http.StatusUnauthorized, "user inactive or deleted")
			case errors.Is(err, domain.ErrTokenInvalid):
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			default:
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func isTokenScheme(s string) bool {
	return strings.EqualFold(s, "token") || strings.EqualFold(s, "bearer")
}

// UserFrom returns the authenticated user, or nil when Auth did not run.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
