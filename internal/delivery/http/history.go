package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"deal-checker/internal/dto"
)

func (h *HttpAPIHandler) SetupHistory(base *echo.Group) {
	base.GET("/v1/history", h.GetHistory)
}

func (h *HttpAPIHandler) GetHistory(c echo.Context) error {
	query := new(dto.HistoryQuery)
	if err := c.Bind(query); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid query"))
	}
	if err := h.validator.Struct(query); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	records, err := h.service.DealService.History(c.Request().Context(), query.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewInternalErrorResponse("failed to load history"))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("history loaded", records))
}
