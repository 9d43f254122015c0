package http

import (
	"errors"
	"net/http"

	"tradepilot/internal/dto"
	"tradepilot/internal/service"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// errorResponse maps service errors onto HTTP statuses. Anything not
// recognised is logged and reported as 500 without details.
func (h *HttpAPIHandler) errorResponse(c echo.Context, err error) error {
	if qe, ok := service.IsQuotaExceeded(err); ok {
		details := dto.PlanDetails(qe.Check.Plan)
		return c.JSON(http.StatusTooManyRequests, dto.NewBaseResponse(http.StatusTooManyRequests, "Daily analysis limit reached", dto.UsageLimitBody{
			CurrentUsage:   qe.Check.CurrentUsage,
			Limit:          qe.Check.Limit,
			Plan:           details.Plan,
			PlanName:       details.Name,
			UpgradeMessage: qe.UpgradeMessage(),
		}))
	}

	var code int
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		code = http.StatusTooManyRequests
	default:
		h.log.ErrorContext(c.Request().Context(), "Request failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Internal server error"))
	}
	return c.JSON(code, dto.NewErrorResponse(code, err.Error()))
}

func (h *HttpAPIHandler) badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
}
