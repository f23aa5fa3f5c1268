package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/dosing"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/vision"
)

// PlantHandler handles plant submission and fertilizer application requests
type PlantHandler struct {
	dosingSvc dosing.Service
	estimator vision.Estimator
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(dosingSvc dosing.Service, estimator vision.Estimator) *PlantHandler {
	return &PlantHandler{dosingSvc: dosingSvc, estimator: estimator}
}

// SubmitPlantRequest defines the request body for staging plant measurements
type SubmitPlantRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	Species   string   `json:"species" validate:"required,max=100"`
	HeightCM  float64  `json:"height_cm" validate:"required,gt=0"`
	WidthCM   float64  `json:"width_cm" validate:"required,gt=0"`
	Nutrients []string `json:"nutrients" validate:"required,min=1,dive,nutrient"`
}

// SubmitPlantResponse confirms a staged submission and previews the doses
type SubmitPlantResponse struct {
	Message string         `json:"message"`
	Doses   []DosePreview  `json:"doses"`
	Staged  map[string]any `json:"staged"`
}

// DosePreview shows the computed dose for one nutrient before confirmation
type DosePreview struct {
	Nutrient        string  `json:"nutrient"`
	VolumeML        float64 `json:"volume_ml"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Submit stages plant measurements for later confirmation
func (h *PlantHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req SubmitPlantRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Submit plant"); err != nil {
		return
	}

	log.Info("Plant submission received", "user_id", req.UserID, "species", req.Species)

	sub, err := h.dosingSvc.Submit(r.Context(), req.UserID, req.Species, req.HeightCM, req.WidthCM, req.Nutrients)
	if err != nil {
		respondServiceError(w, r, "Submit plant", err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitPlantResponse{
		Message: "Plant data staged. Confirm to apply fertilizer.",
		Doses:   dosePreviews(sub),
		Staged: map[string]any{
			"user_id":   sub.UserID,
			"species":   sub.Species,
			"height_cm": sub.HeightCM,
			"width_cm":  sub.WidthCM,
			"staged_at": sub.StagedAt,
		},
	})
}

// ApplyRequest identifies whose staged submission to confirm
type ApplyRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Apply confirms the staged submission and runs the dosing pipeline
func (h *PlantHandler) Apply(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ApplyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Apply fertilizer"); err != nil {
		return
	}

	log.Info("Apply fertilizer requested", "user_id", req.UserID)

	result, err := h.dosingSvc.ConfirmApply(r.Context(), req.UserID)
	if err != nil {
		respondServiceError(w, r, "Apply fertilizer", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Cancel discards the user's staged submission
func (h *PlantHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req ApplyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Cancel submission"); err != nil {
		return
	}

	if err := h.dosingSvc.Cancel(r.Context(), req.UserID); err != nil {
		respondServiceError(w, r, "Cancel submission", err)
		return
	}

	log.Info("Submission cancelled", "user_id", req.UserID)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: "Submission cancelled. Nothing was applied."})
}

// GetPending returns the user's staged submission, if any
func (h *PlantHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	sub, found := h.dosingSvc.Pending(r.Context(), userID)
	if !found {
		respondError(w, http.StatusNotFound, ErrMsgNoPendingError)
		return
	}

	respondJSON(w, http.StatusOK, sub)
}

// AnalyzeRequest carries a plant photo for vision analysis
type AnalyzeRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	ImageBase64 string `json:"image_base64" validate:"required"`
	MimeType    string `json:"mime_type" validate:"required"`
}

// AnalyzeResponse returns the vision estimate plus the staged submission
// when the estimate carried usable measurements
type AnalyzeResponse struct {
	Estimate *domain.Estimate `json:"estimate"`
	Staged   bool             `json:"staged"`
	Doses    []DosePreview    `json:"doses,omitempty"`
}

// Analyze runs vision analysis on a plant photo. When the model marks the
// estimate auto and finds deficient nutrients, the result is staged like a
// manual submission so the user only has to confirm.
func (h *PlantHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.estimator == nil {
		respondError(w, http.StatusServiceUnavailable, "Photo analysis is not configured")
		return
	}

	var req AnalyzeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Analyze plant photo"); err != nil {
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		log.Warn("Invalid image encoding", "error", err)
		respondError(w, http.StatusBadRequest, "image_base64 must be valid base64")
		return
	}

	estimate, err := h.estimator.Estimate(r.Context(), image, req.MimeType)
	if err != nil {
		respondServiceError(w, r, "Analyze plant photo", err)
		return
	}

	resp := AnalyzeResponse{Estimate: estimate}

	// Only an auto=true estimate may replace whatever the user staged
	// manually; non-auto results are informational.
	if estimate.Auto && len(estimate.Deficiencies) > 0 {
		sub, err := h.dosingSvc.Submit(r.Context(), req.UserID, estimate.Species, estimate.HeightCM, estimate.WidthCM, estimate.Deficiencies)
		if err != nil {
			log.Warn("Estimate could not be staged", "error", err, "user_id", req.UserID)
		} else {
			resp.Staged = true
			resp.Doses = dosePreviews(sub)
		}
	}

	log.Info("Plant photo analyzed", "user_id", req.UserID, "species", estimate.Species, "staged", resp.Staged)
	respondJSON(w, http.StatusOK, resp)
}

func dosePreviews(sub *domain.PlantSubmission) []DosePreview {
	previews := make([]DosePreview, 0, len(sub.Nutrients))
	for _, d := range sub.Doses {
		previews = append(previews, DosePreview{
			Nutrient:        string(d.Nutrient),
			VolumeML:        d.VolumeML,
			DurationSeconds: d.Duration,
		})
	}
	return previews
}
