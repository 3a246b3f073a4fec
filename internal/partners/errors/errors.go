package errors

import "errors"

var (
	ErrNotFound = errors.New("partner not found")

	ErrInvalidID = errors.New("invalid partner ID format")
)
