package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// FieldError is one entry of the API's {errors: [{param, msg}]} validation shape.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// APIError is returned for every non-2xx answer from the API.
type APIError struct {
	Status      int
	Message     string
	FieldErrors []FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.FieldErrors) > 0 {
		return fmt.Sprintf("%s: %s", e.FieldErrors[0].Param, e.FieldErrors[0].Msg)
	}
	return fmt.Sprintf("api returned status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsValidation reports a structured 400 that carries field errors.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusBadRequest && len(e.FieldErrors) > 0
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors"`
}

func newAPIError(status int, body errorBody) *APIError {
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &APIError{Status: status, Message: msg, FieldErrors: body.Errors}
}
