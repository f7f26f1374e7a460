package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Login exchanges credentials for the user's current token. It renders its
// own error envelope and never tells which credential was wrong.
//
// @Summary      Obtain a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  authErrorResponse
// @Failure      500   {object}  authErrorResponse
// @Router       /auth [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, authErrorResponse{
			Error:  "Authentication failed",
			Detail: "invalid credentials",
		})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, authErrorResponse{
				Error:  "Authentication failed",
				Detail: "invalid credentials",
			})
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, authErrorResponse{
			Error:  "unexpected error",
			Detail: "internal server error",
		})
	}

	return c.JSON(http.StatusOK, toAuthResponse(token, user))
}
