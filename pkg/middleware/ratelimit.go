package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"deal-checker/config"
	"deal-checker/pkg/ratelimit"
)

// Response represents the error response structure
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewRateLimiterMiddleware limits every route per client IP.
func NewRateLimiterMiddleware(cfg config.API) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: cfg.RateExpire,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},

		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, Response{
				Status:  http.StatusForbidden,
				Message: "Access forbidden: Rate limiter error occurred",
			})
		},

		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return tooManyRequests(c)
		},
	}

	return middleware.RateLimiterWithConfig(config)
}

// NewPerMinuteLimiter guards expensive routes, such as those that call the
// assessment producer, with a stricter per-client budget.
func NewPerMinuteLimiter(perMinute int, idleTTL time.Duration) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = 1
	}
	store := ratelimit.NewLimiterStore(rate.Every(time.Minute/time.Duration(perMinute)), perMinute, idleTTL)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.Allow(c.RealIP()) {
				return tooManyRequests(c)
			}
			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests: Rate limit exceeded. Please try again later",
	})
}
