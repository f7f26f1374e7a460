package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// RequireStaff admits staff members and superusers.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil || !(user.IsStaff || user.IsSuperuser) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// SelfOrStaff admits the account named by the param path parameter, staff
// members and superusers. Malformed ids fall through to the handler, which
// reports them as not found.
func SelfOrStaff(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			id, err := strconv.ParseInt(c.Param(param), 10, 64)
			if err == nil && !user.CanManage(id) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
