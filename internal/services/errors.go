package services

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateReview = errors.New("review already exists for this order")
)
