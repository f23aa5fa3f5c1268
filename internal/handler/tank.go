package handler

import (
	"net/http"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/tank"
)

// TankHandler handles tank status and refill requests
type TankHandler struct {
	tankSvc tank.Service
}

// NewTankHandler creates a new tank handler
func NewTankHandler(tankSvc tank.Service) *TankHandler {
	return &TankHandler{tankSvc: tankSvc}
}

// TankStatusResponse reports remaining volume per nutrient
type TankStatusResponse struct {
	Levels map[string]float64 `json:"levels_ml"`
}

// GetStatus returns a snapshot of the remaining volume in every tank
func (h *TankHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	levels := h.tankSvc.Status(r.Context())

	out := make(map[string]float64, len(levels))
	for nutrient, remaining := range levels {
		out[string(nutrient)] = remaining
	}

	respondJSON(w, http.StatusOK, TankStatusResponse{Levels: out})
}

// RefillRequest defines the request body for topping up a tank
type RefillRequest struct {
	Nutrient string  `json:"nutrient" validate:"required,nutrient"`
	AmountML float64 `json:"amount_ml" validate:"required,gt=0"`
}

// RefillResponse reports the new level after a refill
type RefillResponse struct {
	Message     string  `json:"message"`
	Nutrient    string  `json:"nutrient"`
	RemainingML float64 `json:"remaining_ml"`
}

// Refill adds fertilizer to one nutrient's tank
func (h *TankHandler) Refill(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req RefillRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Refill tank"); err != nil {
		return
	}

	nutrient, err := domain.ParseNutrient(req.Nutrient)
	if err != nil {
		respondServiceError(w, r, "Refill tank", err)
		return
	}

	remaining, err := h.tankSvc.Refill(r.Context(), nutrient, req.AmountML)
	if err != nil {
		respondServiceError(w, r, "Refill tank", err)
		return
	}

	log.Info("Tank refilled", "nutrient", nutrient, "amount_ml", req.AmountML, "remaining_ml", remaining)

	respondJSON(w, http.StatusOK, RefillResponse{
		Message:     "Tank refilled",
		Nutrient:    string(nutrient),
		RemainingML: remaining,
	})
}
