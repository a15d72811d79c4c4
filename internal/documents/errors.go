package documents

import "errors"

// Domain errors for document operations.
var (
	ErrNotFound           = errors.New("document not found")
	ErrDuplicate          = errors.New("document already exists")
	ErrFileTooLarge       = errors.New("file exceeds maximum size")
	ErrInvalidFile        = errors.New("invalid file")
	ErrProcessingInFlight = errors.New("document is already being processed")
)
