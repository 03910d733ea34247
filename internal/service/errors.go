package service

import (
	"errors"
	"fmt"
)

// ErrStopNotFound is returned when a requested stop id is unknown.
var ErrStopNotFound = errors.New("stop not found")

// ValidationError reports a missing or malformed request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}
