package http

import (
	"net/http"

	"tradepilot/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalysis(v1 *echo.Group) {
	v1.POST("/analyze", h.Analyze)
	v1.POST("/scrape", h.Scrape)
}

func (h *HttpAPIHandler) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	resp, err := h.service.AnalysisService.Analyze(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Analysis completed", resp))
}

func (h *HttpAPIHandler) Scrape(c echo.Context) error {
	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	resp, err := h.service.AnalysisService.Scrape(c.Request().Context(), currentUser(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scrape completed", resp))
}
