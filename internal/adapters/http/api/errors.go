package api

import (
	"errors"
	"net/http"

	"github.com/okian/gamerec/internal/adapters/backend"
	service "github.com/okian/gamerec/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrMalformedBody = errors.New("malformed JSON body")
	ErrBadGameID     = errors.New("game id must be a positive integer")
	ErrUnknownWidget = errors.New("no widget mounted for this subject")
)

// writeServiceError maps service and backend errors to a status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAnonymous), errors.Is(err, backend.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, backend.ErrCircuitOpen),
		errors.Is(err, backend.ErrUpstream),
		errors.Is(err, backend.ErrTransport),
		errors.Is(err, backend.ErrDecode):
		writeError(w, http.StatusBadGateway, "backend_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
