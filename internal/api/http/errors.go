package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of requests that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusFor maps an error kind to the HTTP status the API answers with.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindState:
		return http.StatusBadRequest
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnsupported:
		return http.StatusNotImplemented
	case domain.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, err, StatusFor(domain.KindOf(err)))
}

// writeClaimError answers a claim that lost to another organization with
// 400. 409 is left to duplicate registrations.
func writeClaimError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrConflict) {
		writeErrorStatus(w, err, http.StatusBadRequest)
		return
	}
	writeError(w, err)
}

func writeErrorStatus(w http.ResponseWriter, err error, status int) {
	kind := domain.KindOf(err)
	msg := domain.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return domain.NewValidationError("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("Malformed request body")
	}
	return nil
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid id")
	}
	return int32(id), nil
}
