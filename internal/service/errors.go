package service

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindUnhandledRoute   Kind = "unhandled_route"
)

// Error is a client-facing failure. Message is safe to return verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewMethodNotAllowedError(method, path string) *Error {
	return &Error{
		Kind:    KindMethodNotAllowed,
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("%s not allowed for %s", method, path),
	}
}

func NewUnhandledRouteError(path string) *Error {
	return &Error{
		Kind:    KindUnhandledRoute,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Path not found: %s", path),
	}
}
