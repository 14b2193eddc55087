package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dbp-hq/governance/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// StatusFor maps service error kinds to HTTP statuses. Each kind keeps a
// distinct status so clients can tell them apart without parsing messages.
func StatusFor(err error) int {
	var (
		validationErr  *serrors.ValidationError
		validationErrs serrors.ValidationErrors
		notFoundErr    *serrors.NotFoundError
		conflictErr    *serrors.ConflictError
		forbiddenErr   *serrors.ForbiddenError
		outOfOrderErr  *serrors.OutOfOrderError
	)
	switch {
	case errors.As(err, &outOfOrderErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError renders err with its mapped status. Unknown errors are
// masked as a generic internal error.
func WriteServiceError(w http.ResponseWriter, err error, meta map[string]string) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		return WriteError(w, status, "INTERNAL", "internal error", meta)
	}
	var validationErrs serrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		return WriteError(w, status, "VALIDATION_FAILED", validationErrs.Error(), meta)
	}
	var be *serrors.BaseError
	if errors.As(err, &be) {
		return WriteError(w, status, be.Code, be.Message, meta)
	}
	return WriteError(w, status, "INTERNAL", "internal error", meta)
}
