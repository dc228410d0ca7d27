package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrNotPending       = errors.New("booking is not pending")
	ErrAlreadyDecided   = errors.New("booking already decided")
	ErrPastDate         = errors.New("cannot decide a booking whose date has passed")
	ErrInvalidState     = errors.New("invalid trip state")
	ErrConflict         = errors.New("booking was modified concurrently")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrCorruptRecord    = errors.New("corrupt booking record")
)

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
