package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/pkg/common"
	"deal-checker/pkg/logger"
)

func TestRequestLogger_SetsRequestID(t *testing.T) {
	e := echo.New()
	var fromCtx *logger.Logger
	base := logger.NewNop()
	e.Use(RequestLogger(base))
	e.GET("/ping", func(c echo.Context) error {
		fromCtx = base.FromContext(c.Request().Context())
		return c.String(http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(common.HEADER_REQUEST_ID), 36)
	require.NotNil(t, fromCtx)
	assert.NotSame(t, base, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(common.HEADER_REQUEST_ID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(common.HEADER_REQUEST_ID))
}

func TestNewPerMinuteLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/analyze", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewPerMinuteLimiter(2, time.Minute))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
