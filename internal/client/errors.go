package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested stop or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates the server rejected the request parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServerError indicates a server-side failure.
	ErrServerError = errors.New("server error")
)

// APIError is a non-2xx response from a LiveLink server.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("api error %d (%s)", e.StatusCode, e.Endpoint)
}

// Is lets callers match an APIError against the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrServerError:
		return e.StatusCode >= 500
	case ErrInvalidRequest:
		return e.StatusCode == 400
	}
	return false
}
