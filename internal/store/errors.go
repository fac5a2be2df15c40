package store

import "errors"

var (
	ErrConflict     = errors.New("slot already taken")
	ErrNotFound     = errors.New("not found")
	ErrBookingLimit = errors.New("active booking limit reached")
	ErrUnavailable  = errors.New("storage unavailable")
)
