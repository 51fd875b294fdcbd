package database

import "errors"

var (
	ErrNotFound               = errors.New("record not found")
	ErrNotAvailable           = errors.New("no capacity left for the requested slot")
	ErrPastDate               = errors.New("date is in the past")
	ErrDateTooFar             = errors.New("date is too far in the future")
	ErrOutsideServiceArea     = errors.New("address is outside active service areas")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrPromoExhausted         = errors.New("promotion usage limit reached")
	ErrDuplicateEmail         = errors.New("email is already registered")
	ErrDuplicateReview        = errors.New("booking is already reviewed")
)
