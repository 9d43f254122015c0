package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"tradepilot/config"
)

// Response represents the error response structure
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewRateLimiterMiddleware limits requests per caller. Callers are keyed by
// the user header when present, otherwise by their IP.
func NewRateLimiterMiddleware(cfg config.API) echo.MiddlewareFunc {
	perSecond := cfg.MaxRequestPerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(perSecond)
	}

	rlConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSecond),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			if cfg.UserHeader != "" {
				if id := ctx.Request().Header.Get(cfg.UserHeader); id != "" {
					return "user:" + id, nil
				}
			}
			return "ip:" + ctx.RealIP(), nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, Response{
				Status:  http.StatusForbidden,
				Message: "Access forbidden: Rate limiter error occurred",
			})
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many requests: Rate limit exceeded. Please try again later",
			})
		},
	}

	return middleware.RateLimiterWithConfig(rlConfig)
}
