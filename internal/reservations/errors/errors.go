package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	// ErrVersionConflict means the stored reservation changed between read and
	// write.
	ErrVersionConflict = errors.New("reservation version conflict")
)
