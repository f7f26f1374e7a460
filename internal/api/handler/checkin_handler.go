package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
)

// CheckInHandler handles HTTP requests for check-in operations.
type CheckInHandler struct {
	service ports.CheckInService
}

func NewCheckInHandler(service ports.CheckInService) *CheckInHandler {
	return &CheckInHandler{service: service}
}

// List handles GET /check-ins.
//
// @Summary      List check-ins
// @Tags         check-ins
// @Produce      json
// @Security     TokenAuth
// @Success      200  {array}   checkInResponse
// @Failure      401  {object}  map[string]string
// @Router       /check-ins [get]
func (h *CheckInHandler) List(c echo.Context) error {
	checkIns, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckInResponses(checkIns))
}

// Create handles POST /check-ins.
//
// @Summary      Record a check-in
// @Tags         check-ins
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        Idempotency-Key  header    string                false  "Replays the original check-in when repeated"
// @Param        body             body      createCheckInRequest  true   "Owner of the check-in"
// @Success      201              {object}  checkInResponse
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Router       /check-ins [post]
func (h *CheckInHandler) Create(c echo.Context) error {
	var req createCheckInRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	checkIn, err := h.service.Create(c.Request().Context(), req.UserID, idempotencyKey)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCheckInResponse(checkIn))
}

// Get handles GET /check-ins/:id.
//
// @Summary      Get a check-in
// @Tags         check-ins
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      int  true  "Check-in ID"
// @Success      200  {object}  checkInResponse
// @Failure      404  {object}  map[string]string
// @Router       /check-ins/{id} [get]
func (h *CheckInHandler) Get(c echo.Context) error {
	id, err := pathID(c, domain.ErrCheckInNotFound)
	if err != nil {
		return err
	}

	checkIn, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckInResponse(checkIn))
}

// Update handles PUT and PATCH /check-ins/:id. Check-ins are immutable, so
// the stored record is returned as is.
//
// @Summary      Update a check-in
// @Tags         check-ins
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      int  true  "Check-in ID"
// @Success      200  {object}  checkInResponse
// @Failure      404  {object}  map[string]string
// @Router       /check-ins/{id} [put]
// @Router       /check-ins/{id} [patch]
func (h *CheckInHandler) Update(c echo.Context) error {
	return h.Get(c)
}

// Delete handles DELETE /check-ins/:id.
//
// @Summary      Delete a check-in
// @Tags         check-ins
// @Security     TokenAuth
// @Param        id  path  int  true  "Check-in ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /check-ins/{id} [delete]
func (h *CheckInHandler) Delete(c echo.Context) error {
	id, err := pathID(c, domain.ErrCheckInNotFound)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Last handles GET /check-ins/last_checkin.
//
// @Summary      Last check-in of a user
// @Tags         check-ins
// @Produce      json
// @Security     TokenAuth
// @Param        user_id  query     int  true  "User ID"
// @Success      200      {object}  checkInResponse
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  messageResponse
// @Router       /check-ins/last_checkin [get]
func (h *CheckInHandler) Last(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return err
	}

	checkIn, found, err := h.service.Last(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "No check-ins found for this user"})
	}
	return c.JSON(http.StatusOK, toCheckInResponse(checkIn))
}

// ForUser handles GET /check-ins/user_check_ins.
//
// @Summary      Check-ins of a user
// @Tags         check-ins
// @Produce      json
// @Security     TokenAuth
// @Param        user_id  query     int  true  "User ID"
// @Success      200      {array}   checkInResponse
// @Failure      400      {object}  map[string]string
// @Router       /check-ins/user_check_ins [get]
func (h *CheckInHandler) ForUser(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return err
	}

	checkIns, err := h.service.ForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckInResponses(checkIns))
}
