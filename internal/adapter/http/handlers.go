package http

import (
	"net/http"
	"strconv"
	"time"

	"retailbank-backoffice/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// bind decodes and validates req. On failure the error response is already
// written and ok is false.
func bind(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// operator is the acting operator id set by the idempotency middleware.
func operator(c echo.Context) string {
	s, _ := c.Get(middleware.OperatorKey).(string)
	return s
}

// limitParam reads ?limit=, defaulting to def and capping at 500.
func limitParam(c echo.Context, def int) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, 500)
}
