package api

import (
	"fmt"
	"net/http"
	"strings"
)

type ApiError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func newApiError(statusCode int, message string) *ApiError {
	if message == "" {
		message = lower(http.StatusText(statusCode))
	}
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewBadRequestError() *ApiError {
	return newApiError(http.StatusBadRequest, "")
}

// NewValidationError is a bad request carrying a message meant for the user.
func NewValidationError(message string) *ApiError {
	return newApiError(http.StatusBadRequest, message)
}

func NewNotFoundError() *ApiError {
	return newApiError(http.StatusNotFound, "")
}

func NewInternalServerError(err error) *ApiError {
	e := newApiError(http.StatusInternalServerError, "")
	e.Err = err
	return e
}

func NewUnauthorizedError() *ApiError {
	return newApiError(http.StatusUnauthorized, "")
}

func NewForbiddenError() *ApiError {
	return newApiError(http.StatusForbidden, "")
}

func NewConflictError(message string) *ApiError {
	return newApiError(http.StatusConflict, message)
}

func NewBadGatewayError(err error) *ApiError {
	e := newApiError(http.StatusBadGateway, "")
	e.Err = err
	return e
}
