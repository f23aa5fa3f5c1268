package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request. Please check your inputs."
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgGenericServerError    = "Something went wrong"

	ErrMsgInvalidMeasurement  = "Height and width must be positive"
	ErrMsgUnknownNutrient     = "Unknown nutrient. Use N, P or K (or the full element name)"
	ErrMsgInsufficientError   = "Not enough fertilizer left in the tank"
	ErrMsgInvalidAmountError  = "Amount must be positive"
	ErrMsgNoPendingError      = "No pending plant data. Submit measurements first"
	ErrMsgEstimateUnavailable = "Could not analyze the plant photo. Try another picture"
	ErrMsgPersistenceError    = "Could not save rig state. Nothing was changed"
	ErrMsgActuationError      = "Pump failure. Check the rig before retrying"
)

// respondServiceError logs a failed service call and writes the mapped error response.
// Client errors are logged at warn, everything else at error.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())
	status, message := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error(opName+" failed", "error", err, "status", status)
	} else {
		log.Warn(opName+" rejected", "error", err, "status", status)
	}
	respondError(w, status, message)
}

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrInvalidMeasurement):
		return http.StatusBadRequest, ErrMsgInvalidMeasurement
	case errors.Is(err, domain.ErrUnknownNutrient):
		return http.StatusBadRequest, ErrMsgUnknownNutrient
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, ErrMsgInvalidAmountError
	case errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusConflict, ErrMsgInsufficientError
	case errors.Is(err, domain.ErrNoPendingSubmission):
		return http.StatusNotFound, ErrMsgNoPendingError
	case errors.Is(err, domain.ErrEstimateUnavailable):
		return http.StatusBadGateway, ErrMsgEstimateUnavailable
	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusInternalServerError, ErrMsgPersistenceError
	case errors.Is(err, domain.ErrActuationFailed), errors.Is(err, domain.ErrPartialApplication):
		return http.StatusInternalServerError, ErrMsgActuationError
	case errors.Is(err, domain.CooldownError{}):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
