package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a domain error onto its HTTP status. Unknown errors become
// an opaque 500; their detail stays in the log, not the response.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEntitlementRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrFavoriteNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateFavorite):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
