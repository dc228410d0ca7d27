package booking

import (
	"errors"
	"net/http"

	"fleetbooking/internal/api"
)

// WriteError maps booking lifecycle errors onto the API error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Error())
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, ErrNotPending):
		api.WriteError(w, http.StatusConflict, "NOT_PENDING", err.Error())
	case errors.Is(err, ErrAlreadyDecided):
		api.WriteError(w, http.StatusConflict, "ALREADY_DECIDED", err.Error())
	case errors.Is(err, ErrPastDate):
		api.WriteError(w, http.StatusConflict, "PAST_DATE", err.Error())
	case errors.Is(err, ErrInvalidState):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrConflict):
		api.WriteError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrCorruptRecord):
		api.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store unavailable")
	default:
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
