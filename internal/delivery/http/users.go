package http

import (
	"fmt"
	"net/http"

	"tradepilot/internal/dto"
	"tradepilot/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAuth(base *echo.Group) {
	base.POST("/v1/auth/signup", h.Signup)
}

func (h *HttpAPIHandler) SetupPreferences(v1 *echo.Group) {
	prefs := v1.Group("/settings/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PATCH("", h.UpdatePreferences)
	}
}

func (h *HttpAPIHandler) SetupAdmin(v1 *echo.Group) {
	admin := v1.Group("/admin", h.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id", h.DecideUser)
	}
	h.SetupJobs(admin)
}

func (h *HttpAPIHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	user, err := h.service.UserService.Signup(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewCreatedResponse("Account created. It will be usable once an admin approves it.", dto.NewUserResponse(user)))
}

func (h *HttpAPIHandler) GetPreferences(c echo.Context) error {
	pref, err := h.service.UserService.GetPreferences(c.Request().Context(), currentUser(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", pref))
}

func (h *HttpAPIHandler) UpdatePreferences(c echo.Context) error {
	var req dto.PreferenceRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	pref, err := h.service.UserService.UpdatePreferences(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Preferences updated", pref))
}

func (h *HttpAPIHandler) ListUsers(c echo.Context) error {
	var req dto.ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	users, err := h.service.UserService.List(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", resp))
}

func (h *HttpAPIHandler) DecideUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return h.errorResponse(c, fmt.Errorf("%w: user not found", apperrors.ErrNotFound))
	}
	var req dto.UserDecisionRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	user, err := h.service.UserService.Decide(c.Request().Context(), currentUser(c), id, req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("User updated", dto.NewUserResponse(user)))
}
