package http

import (
	"net/http"

	"tradepilot/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSubscription(v1 *echo.Group) {
	sub := v1.Group("/subscription")
	{
		sub.GET("", h.GetSubscription)
		sub.GET("/usage", h.GetUsage)
		sub.POST("/upgrade", h.UpgradePlan)
	}
}

func (h *HttpAPIHandler) SetupStats(v1 *echo.Group) {
	v1.GET("/stats", h.GetStats)
}

func (h *HttpAPIHandler) GetSubscription(c echo.Context) error {
	resp, err := h.service.SubscriptionService.Get(c.Request().Context(), currentUser(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", resp))
}

func (h *HttpAPIHandler) GetUsage(c echo.Context) error {
	stats, err := h.service.SubscriptionService.Usage(c.Request().Context(), currentUser(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", stats))
}

func (h *HttpAPIHandler) UpgradePlan(c echo.Context) error {
	var req dto.UpgradeRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	resp, err := h.service.SubscriptionService.Upgrade(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse(resp.Message, resp))
}

func (h *HttpAPIHandler) GetStats(c echo.Context) error {
	stats, err := h.service.StatsService.Dashboard(c.Request().Context(), currentUser(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", stats))
}
