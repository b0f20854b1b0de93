package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
	"github.com/ewilliams-labs/acoustic-print/internal/core/recommend"
	"github.com/ewilliams-labs/acoustic-print/internal/logging"
)

const (
	errCodeNotFound        = "NOT_FOUND"
	errCodeInvalidArgument = "INVALID_ARGUMENT"
	errCodeInvalidFeatures = "INVALID_FEATURES"
	errCodeNotImplemented  = "NOT_IMPLEMENTED"
	errCodeInternal        = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errCodeNotFound
	case errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidPoints),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, recommend.ErrInvalidK):
		return http.StatusBadRequest, errCodeInvalidArgument
	case errors.Is(err, domain.ErrTempoOutOfRange),
		errors.Is(err, domain.ErrFeatureOutOfRange):
		return http.StatusUnprocessableEntity, errCodeInvalidFeatures
	}
	return http.StatusInternalServerError, errCodeInternal
}

// fail writes err as a JSON error. Internal errors are logged and their
// detail is not exposed.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("component", "rest").Str("path", r.URL.Path).Msg("request failed")
		writeErrorWithCode(w, status, "internal error", code)
		return
	}
	writeErrorWithCode(w, status, err.Error(), code)
}
