package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"deal-checker/pkg/common"
	"deal-checker/pkg/logger"
)

// RequestLogger tags each request with an id, stores a child logger carrying
// that id in the request context, and logs the outcome.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(common.HEADER_REQUEST_ID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(common.HEADER_REQUEST_ID, id)
			c.Set(common.KEY_REQUEST_ID, id)

			reqLog := log.With(logger.StringField(common.KEY_REQUEST_ID, id))
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			reqLog.Info("http request",
				logger.StringField("method", req.Method),
				logger.StringField("path", c.Path()),
				logger.IntField("status", c.Response().Status),
				logger.StringField("latency", time.Since(start).String()),
			)
			return nil
		}
	}
}
