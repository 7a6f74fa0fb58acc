package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/httpx"
	"github.com/isdelr/placeit-be/internal/services"
)

// MsgInternal is the body of every unexpected failure.
const MsgInternal = "An internal server error occurred."

// statusFor maps a service error class to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a {message} body. Only ClientError messages are
// shown to the caller; anything else is logged and reported generically.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var ce *services.ClientError
	if status == http.StatusInternalServerError || !errors.As(err, &ce) {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		httpx.Message(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	httpx.Message(w, status, ce.Message)
}
