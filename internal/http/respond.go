package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/fjod/go_bookstore/internal/catalog"
	"github.com/fjod/go_bookstore/internal/checkout/service"
	"github.com/fjod/go_bookstore/internal/installment"
	"github.com/fjod/go_bookstore/pkg/money"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, log *zap.Logger, status int, code, message string) {
	respondJSON(w, log, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps errors of the core packages to HTTP statuses.
func handleDomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	if v, ok := service.IsValidation(err); ok {
		respondJSON(w, log, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   v.Message,
			Code:    "validation_failed",
			Details: v.Field,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrIllegalTransition):
		respondError(w, log, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrInvalidAction),
		errors.Is(err, cart.ErrUnknownShippingTier):
		respondError(w, log, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, catalog.ErrBookNotFound):
		respondError(w, log, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalog.ErrUpstreamUnavailable):
		log.Warn("catalog unavailable", zap.Error(err))
		respondError(w, log, http.StatusServiceUnavailable, "service_unavailable", "catalog is unavailable")
	case errors.Is(err, money.ErrInvalidAmount), errors.Is(err, installment.ErrCountOutOfRange):
		log.Error("invalid amount reached the http layer", zap.Error(err))
		respondError(w, log, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		log.Error("unhandled error", zap.Error(err))
		respondError(w, log, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
