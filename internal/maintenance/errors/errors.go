package errors

import "errors"

var ErrNotFound = errors.New("maintenance window not found")
