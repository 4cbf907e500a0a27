// Package handlers implements the JSON HTTP surface. Handler groups hold
// their service dependencies and translate between wire requests and
// service calls; all policy lives in the services.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blockpress/internal/errs"
)

// errorBody is the error envelope every failure response carries.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures are
// logged; by then the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps a service error onto the wire. Unrecognized errors are
// logged and surface as an opaque 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, errs.ErrUnauthenticated),
		errors.Is(err, errs.ErrSessionExpired),
		errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrTwoFactorRequired),
		errors.Is(err, errs.ErrInvalidTwoFactorCode),
		errors.Is(err, errs.ErrInvalidKey),
		errors.Is(err, errs.ErrKeyRevoked),
		errors.Is(err, errs.ErrKeyExpired),
		errors.Is(err, errs.ErrInvalidSecret):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, errs.ErrAccountInactive),
		errors.Is(err, errs.ErrInsufficientRole),
		errors.Is(err, errs.ErrInsufficientPermission),
		errors.Is(err, errs.ErrOriginNotAllowed):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrSlugTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorBody{Error: message})
}

// pathUUID parses a chi URL parameter as a UUID. A malformed id reads as
// not found, the same as a well-formed id that matches nothing.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errs.ErrNotFound
	}
	return id, nil
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// client typos fail loudly instead of silently dropping input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Invalid("malformed request body: %v", err)
	}
	return nil
}
