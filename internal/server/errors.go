package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-toggleadmin/pkg/store"
	"github.com/goliatone/go-toggleadmin/pkg/view"
)

// HTTPError is an error that carries its response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status code.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, view.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, view.ErrToggleNotFound),
		errors.Is(err, view.ErrStrategyIndex),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, view.ErrReadOnly), errors.Is(err, store.ErrExists):
		return http.StatusConflict
	case errors.Is(err, view.ErrUnknownStrategy),
		errors.Is(err, view.ErrInvalidDefinition),
		errors.Is(err, view.ErrInvalidToggle),
		errors.Is(err, store.ErrInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
