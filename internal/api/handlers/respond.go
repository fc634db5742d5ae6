package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amenelu/mekina/internal/domain"
	"github.com/amenelu/mekina/pkg/logger"

	"github.com/labstack/echo/v4"
)

var (
	errInvalidBody    = fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	errInvalidEndTime = fmt.Errorf("%w: end_time must be an RFC3339 timestamp", domain.ErrInvalidInput)
)

type errorResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Minimum float64 `json:"minimum,omitempty"`
}

func statusFor(err error) int {
	var tooLow *domain.BidTooLowError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuctionClosed),
		errors.Is(err, domain.ErrAlreadyHighestBidder),
		errors.Is(err, domain.ErrNoPoints),
		errors.As(err, &tooLow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the JSON error envelope for err. User-facing domain errors keep
// their message; anything else is logged and masked as an internal error.
func fail(c echo.Context, log logger.Logger, err error) error {
	status := statusFor(err)
	resp := errorResponse{Status: "error", Message: err.Error()}

	if !domain.IsUserFacing(err) {
		log.Error("Request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		resp.Message = "internal server error"
	}
	var tooLow *domain.BidTooLowError
	if errors.As(err, &tooLow) {
		resp.Minimum = tooLow.Minimum
	}

	return c.JSON(status, resp)
}

func ok(c echo.Context, payload interface{}) error {
	return c.JSON(http.StatusOK, payload)
}
