package httpserver

import (
	"errors"
	"net/http"
)

// Error carries the HTTP status a handler should answer with.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// NewError returns an *Error with code and message.
func NewError(code int, message string) error {
	return &Error{Code: code, Err: errors.New(message)}
}

var (
	ErrInvalidBody     = NewError(http.StatusBadRequest, "invalid request body")
	ErrTooManyRequests = NewError(http.StatusTooManyRequests, "too many requests")
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Missing []string `json:"missing,omitempty"`
}
