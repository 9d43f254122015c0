package http

import (
	"context"

	"tradepilot/config"
	"tradepilot/internal/service"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	ctx       context.Context
	cfg       *config.Config
	log       *logger.Logger
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, log *logger.Logger, echo *echo.Echo, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		ctx:       ctx,
		cfg:       cfg,
		log:       log,
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api", middleware.NewRateLimiterMiddleware(h.cfg.API), h.RequestLogger())
	h.SetupAuth(base)

	v1 := base.Group("/v1", h.Authenticate())
	h.SetupAnalysis(v1)
	h.SetupDeals(v1)
	h.SetupStats(v1)
	h.SetupSubscription(v1)
	h.SetupPreferences(v1)
	h.SetupAdmin(v1)
}
