package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var be *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrPartialIndexFailure):
		return http.StatusMultiStatus
	case errors.As(err, &be) && be.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexCreateFailed),
		errors.Is(err, domain.ErrBackendRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for a status.
// Client errors echo the cause; server errors stay generic.
func messageFor(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusServiceUnavailable:
		return "search backend unavailable"
	case http.StatusNotFound:
		return "verse index not found"
	case http.StatusBadGateway:
		return "search backend request failed"
	default:
		return "internal server error"
	}
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, errorBody{Error: message})
}

// respondServiceError logs err and writes the mapped response.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s: %v", op, err)
	}
	respond(w, status, errorBody{Error: messageFor(status, err), Detail: detailFor(status, err)})
}

// detailFor returns the backend's diagnostic payload for gateway errors.
func detailFor(status int, err error) string {
	if status != http.StatusBadGateway {
		return ""
	}
	var ce *domain.IndexCreateError
	if errors.As(err, &ce) && ce.Detail != "" {
		return ce.Detail
	}
	var be *domain.BackendError
	if errors.As(err, &be) {
		return be.Detail
	}
	return ""
}
