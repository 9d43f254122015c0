package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	delivery "tradepilot/internal/delivery/http"
	"tradepilot/pkg/logger"

	"github.com/labstack/echo/v4/middleware"
)

type HTTPServer struct {
	ctx     context.Context
	appDep  *AppDependency
	handler *delivery.HttpAPIHandler
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, handler *delivery.HttpAPIHandler) *HTTPServer {
	return &HTTPServer{
		ctx:     ctx,
		appDep:  appDep,
		handler: handler,
	}
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.appDep.cfg.API.Port))
	address := fmt.Sprintf(":%d", s.appDep.cfg.API.Port)

	s.appDep.echo.HideBanner = true
	s.appDep.echo.Use(middleware.Recover())
	if s.appDep.cfg.API.RequestTimeout > 0 {
		s.appDep.echo.Use(middleware.ContextTimeout(s.appDep.cfg.API.RequestTimeout))
	}
	s.SetupRoutes()

	if err := s.appDep.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 10*time.Second)
	defer cancel()

	if err := s.appDep.echo.Shutdown(ctx); err != nil {
		s.appDep.log.Error("Error when stopping HTTP server", logger.ErrorField(err))
		return err
	}
	s.appDep.log.Info("HTTP server stopped successfully")
	return nil
}

func (s *HTTPServer) SetupRoutes() {
	s.handler.SetupRoutes()
}
