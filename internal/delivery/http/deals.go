package http

import (
	"fmt"
	"net/http"

	"tradepilot/internal/dto"
	"tradepilot/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupDeals(v1 *echo.Group) {
	deals := v1.Group("/deals")
	{
		deals.GET("", h.ListDeals)
		deals.POST("", h.CreateDeal)
		deals.GET("/:id", h.GetDeal)
		deals.PATCH("/:id", h.UpdateDeal)
		deals.DELETE("/:id", h.DeleteDeal)
		deals.POST("/:id/valuation", h.ValuateDeal)
		deals.POST("/:id/summary", h.SummarizeDeal)
		deals.POST("/:id/message", h.DraftDealMessage)
	}
}

func dealID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: deal not found", apperrors.ErrNotFound)
	}
	return id, nil
}

func (h *HttpAPIHandler) ListDeals(c echo.Context) error {
	var req dto.ListDealsRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	deals, err := h.service.DealService.List(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", deals))
}

func (h *HttpAPIHandler) CreateDeal(c echo.Context) error {
	var req dto.CreateDealRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	deal, err := h.service.DealService.Create(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewCreatedResponse("Deal created", deal))
}

func (h *HttpAPIHandler) GetDeal(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	deal, err := h.service.DealService.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", deal))
}

func (h *HttpAPIHandler) UpdateDeal(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	var req dto.UpdateDealRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	deal, err := h.service.DealService.Update(c.Request().Context(), currentUser(c), id, req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Deal updated", deal))
}

func (h *HttpAPIHandler) DeleteDeal(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	if err := h.service.DealService.Delete(c.Request().Context(), currentUser(c), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Deal deleted", nil))
}

func (h *HttpAPIHandler) ValuateDeal(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	resp, err := h.service.DealService.Valuate(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Valuation completed", resp))
}

func (h *HttpAPIHandler) SummarizeDeal(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	insight, err := h.service.DealService.Summarize(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", dto.DealInsightResponse{Insight: insight}))
}

func (h *HttpAPIHandler) DraftDealMessage(c echo.Context) error {
	id, err := dealID(c)
	if err != nil {
		return h.errorResponse(c, err)
	}
	var req dto.DealMessageRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	insight, err := h.service.DealService.DraftMessage(c.Request().Context(), currentUser(c), id, req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", dto.DealInsightResponse{Insight: insight}))
}
