package http

import (
	"net/http"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/common"
	"tradepilot/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLogger attaches a request-scoped logger to the request context and
// logs one line per request.
func (h *HttpAPIHandler) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqLog := h.log.With(
				logger.StringField("request_id", uuid.NewString()),
				logger.StringField("method", c.Request().Method),
				logger.StringField("path", c.Path()),
			)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			reqLog.Info("Request completed",
				logger.IntField("status", c.Response().Status),
				logger.DurationField("duration", time.Since(start)),
			)
			return nil
		}
	}
}

// Authenticate resolves the user set by the upstream gateway header.
// Unknown users get 401, pending and rejected users get 403.
func (h *HttpAPIHandler) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(h.cfg.API.UserHeader)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
			}

			user, err := h.service.UserService.Authenticate(c.Request().Context(), userID)
			if err != nil {
				return h.errorResponse(c, err)
			}

			c.Set(common.CTX_KEY_USER, user)
			req := c.Request()
			ctx := logger.NewContext(req.Context(), h.log.FromContext(req.Context()).With(
				logger.StringField("user_id", user.ID.String()),
				logger.StringField("organization_id", user.OrganizationID.String()),
			))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func (h *HttpAPIHandler) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			if user == nil || !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "Admin access required"))
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *model.User {
	user, _ := c.Get(common.CTX_KEY_USER).(*model.User)
	return user
}
