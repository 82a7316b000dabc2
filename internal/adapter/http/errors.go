package http

import (
	"context"
	"errors"
	"net/http"

	"retailbank-backoffice/internal/domain/fault"

	"github.com/labstack/echo/v4"
)

// statusOf maps a fault kind to its HTTP status. Anything untyped is a
// store or programming fault.
func statusOf(err error) int {
	switch fault.KindOf(err) {
	case fault.NotFound:
		return http.StatusNotFound
	case fault.InvalidAmount, fault.InvalidTerm, fault.BusinessRuleViolation, fault.LimitExceeded, fault.InsufficientFunds:
		return http.StatusBadRequest
	case fault.HighRiskRejection, fault.InactiveResource:
		return http.StatusConflict
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError never leaks store errors to the client.
func respondError(c echo.Context, err error) error {
	code := statusOf(err)
	k := fault.KindOf(err)
	if k == fault.Unknown || k == fault.DuplicateIdentifier {
		return c.JSON(code, ErrorResponse{Error: http.StatusText(code)})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error(), Kind: k.String()})
}
