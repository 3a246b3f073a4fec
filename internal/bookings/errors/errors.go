package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")
)

// Outward error codes for state-conflict outcomes. All share the conflict
// HTTP status but stay distinguishable to callers.
const (
	CodeAlreadyConfirmed = "ALREADY_CONFIRMED"
	CodeDocsNotApproved  = "DOCS_NOT_APPROVED"
	CodeUpdateFailed     = "UPDATE_FAILED"
)
