package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"deal-checker/internal/dto"
)

func (h *HttpAPIHandler) SetupDeals(base *echo.Group, producerLimiter echo.MiddlewareFunc) {
	v1 := base.Group("/v1/deals")
	{
		v1.POST("/evaluate", h.EvaluateDeal)
		v1.POST("/analyze", h.AnalyzeDeal, producerLimiter)
	}
}

func (h *HttpAPIHandler) EvaluateDeal(c echo.Context) error {
	req := new(dto.EvaluateDealRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.DealService.Evaluate(c.Request().Context(), req.Listing, assessmentText(req.Assessment))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to evaluate deal"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("deal evaluated", result))
}

func (h *HttpAPIHandler) AnalyzeDeal(c echo.Context) error {
	req := new(dto.AnalyzeDealRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.DealService.Analyze(c.Request().Context(), req.Listing)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to analyze deal"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("deal analyzed", result))
}

// assessmentText accepts the assessment either as a JSON object or as the
// producer's raw reply wrapped in a JSON string.
func assessmentText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}
