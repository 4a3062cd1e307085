package errors

import "errors"

var (
	ErrNotFound = errors.New("workspace not found")

	ErrInvalidID = errors.New("invalid workspace ID format")
)
