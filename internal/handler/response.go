package handler

import (
	"errors"
	"net/http"

	"github.com/ktsujino/inventory-backend/internal/middleware"
	"github.com/ktsujino/inventory-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

func newFieldErrorResponse(field, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    "validation_error",
			Message: message,
			Field:   field,
		},
	}
}

// writeServiceError maps service-layer errors onto the response envelope.
func writeServiceError(c echo.Context, err error, fallback string) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusUnprocessableEntity, newFieldErrorResponse(vErr.Field, vErr.Message))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", fallback+" not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "you do not own this "+fallback))
	case errors.Is(err, service.ErrImageInUse):
		return c.JSON(http.StatusConflict, NewErrorResponse("image_in_use", "image is attached to one or more items"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to process "+fallback))
	}
}

func userID(c echo.Context) uint64 {
	id, _ := c.Get(middleware.ContextUserID).(uint64)
	return id
}
