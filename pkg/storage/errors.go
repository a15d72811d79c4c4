package storage

import "errors"

// Storage errors.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("blob key is empty")
	ErrInvalidKey = errors.New("blob key is invalid")
	ErrNoRoot     = errors.New("storage root not configured")
)
