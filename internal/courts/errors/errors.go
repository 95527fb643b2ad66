package errors

import "errors"

var (
	ErrNotFound = errors.New("court not found")

	ErrInvalidHours = errors.New("closing time must be after opening time")
)
