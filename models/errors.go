package models

import "errors"

// Sentinel errors shared across stores, services and handlers. Handlers
// map them to HTTP status codes; callers test with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("duplicate key")
)
