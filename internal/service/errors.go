package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a RequestError with status 404.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized matches a RequestError with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is a local, field-level error. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RequestError is a non-2xx response or a transport failure.
// Status is 0 for transport failures.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is lets callers match on ErrNotFound and ErrUnauthorized.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
