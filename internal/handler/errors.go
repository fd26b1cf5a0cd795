package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/qalakaar/gigboard/internal/domain"
)

// errorDetail and errorResponse define the JSON error envelope:
// {"error":{"code":"not_found","message":"event not found"}}.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// notFoundBody returns an errorResponse for a missing resource.
// The caller supplies the message because the handler knows what was being looked up.
func notFoundBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an errorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) errorResponse {
	return errorResponse{Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an errorResponse for a request rejected before it
// reaches the service layer (malformed body, bad query parameter).
func requestBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.EventService.Add: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// writeServiceError maps domain sentinels to HTTP statuses. Anything it does
// not recognise is logged and reported as a 500 without leaking details.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFoundMsg))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{Error: errorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // status line already sent
	json.NewEncoder(w).Encode(v)
}
