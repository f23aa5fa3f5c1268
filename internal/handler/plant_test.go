package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// mockDosingService implements dosing.Service for handler tests
type mockDosingService struct {
	submitFn  func(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error)
	applyFn   func(ctx context.Context, userID string) (*domain.ApplyResponse, error)
	cancelFn  func(ctx context.Context, userID string) error
	pendingFn func(ctx context.Context, userID string) (*domain.PlantSubmission, bool)
}

func (m *mockDosingService) Submit(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error) {
	return m.submitFn(ctx, userID, species, height, width, nutrients)
}

func (m *mockDosingService) Pending(ctx context.Context, userID string) (*domain.PlantSubmission, bool) {
	if m.pendingFn == nil {
		return nil, false
	}
	return m.pendingFn(ctx, userID)
}

func (m *mockDosingService) Cancel(ctx context.Context, userID string) error {
	return m.cancelFn(ctx, userID)
}

func (m *mockDosingService) ConfirmApply(ctx context.Context, userID string) (*domain.ApplyResponse, error) {
	return m.applyFn(ctx, userID)
}

func (m *mockDosingService) Water(ctx context.Context, nutrient domain.NutrientID, volumeML float64) error {
	return nil
}

// mockEstimator implements vision.Estimator for handler tests
type mockEstimator struct {
	estimateFn func(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error)
}

func (m *mockEstimator) Estimate(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error) {
	return m.estimateFn(ctx, image, mimeType)
}

func stagedSubmission(userID string) *domain.PlantSubmission {
	return &domain.PlantSubmission{
		UserID:    userID,
		Species:   "mango",
		HeightCM:  2.0,
		WidthCM:   1.5,
		Nutrients: []domain.NutrientID{domain.Nitrogen},
		Doses: []domain.Dose{
			{Nutrient: domain.Nitrogen, VolumeML: 30.0, Duration: 30.0},
		},
		StagedAt: time.Now().UTC(),
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSubmitPlant(t *testing.T) {
	mock := &mockDosingService{
		submitFn: func(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, "mango", species)
			return stagedSubmission(userID), nil
		},
	}
	h := NewPlantHandler(mock, nil)

	rec := postJSON(t, h.Submit, "/api/v1/plant/submit", SubmitPlantRequest{
		UserID:    "user-1",
		Species:   "mango",
		HeightCM:  2.0,
		WidthCM:   1.5,
		Nutrients: []string{"N"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitPlantResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Doses, 1)
	assert.Equal(t, "N", resp.Doses[0].Nutrient)
	assert.InDelta(t, 30.0, resp.Doses[0].VolumeML, 0.001)
}

func TestSubmitPlantValidation(t *testing.T) {
	mock := &mockDosingService{
		submitFn: func(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error) {
			t.Fatal("service should not be called for invalid requests")
			return nil, nil
		},
	}
	h := NewPlantHandler(mock, nil)

	tests := []struct {
		name string
		req  SubmitPlantRequest
	}{
		{
			name: "missing user",
			req:  SubmitPlantRequest{Species: "mango", HeightCM: 1, WidthCM: 1, Nutrients: []string{"N"}},
		},
		{
			name: "zero height",
			req:  SubmitPlantRequest{UserID: "u", Species: "mango", WidthCM: 1, Nutrients: []string{"N"}},
		},
		{
			name: "negative width",
			req:  SubmitPlantRequest{UserID: "u", Species: "mango", HeightCM: 1, WidthCM: -2, Nutrients: []string{"N"}},
		},
		{
			name: "no nutrients",
			req:  SubmitPlantRequest{UserID: "u", Species: "mango", HeightCM: 1, WidthCM: 1},
		},
		{
			name: "unknown nutrient token",
			req:  SubmitPlantRequest{UserID: "u", Species: "mango", HeightCM: 1, WidthCM: 1, Nutrients: []string{"calcium"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Submit, "/api/v1/plant/submit", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestApplyFertilizer(t *testing.T) {
	mock := &mockDosingService{
		applyFn: func(ctx context.Context, userID string) (*domain.ApplyResponse, error) {
			return &domain.ApplyResponse{
				UserID:  userID,
				Species: "mango",
				Outcomes: []domain.NutrientOutcome{
					{Nutrient: domain.Nitrogen, Status: domain.OutcomeApplied, AppliedML: 30.0, RemainingML: 970.0},
				},
			}, nil
		},
	}
	h := NewPlantHandler(mock, nil)

	rec := postJSON(t, h.Apply, "/api/v1/plant/apply", ApplyRequest{UserID: "user-1"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ApplyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, domain.OutcomeApplied, resp.Outcomes[0].Status)
}

func TestApplyWithoutPendingSubmission(t *testing.T) {
	mock := &mockDosingService{
		applyFn: func(ctx context.Context, userID string) (*domain.ApplyResponse, error) {
			return nil, domain.ErrNoPendingSubmission
		},
	}
	h := NewPlantHandler(mock, nil)

	rec := postJSON(t, h.Apply, "/api/v1/plant/apply", ApplyRequest{UserID: "user-1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelSubmission(t *testing.T) {
	cancelled := false
	mock := &mockDosingService{
		cancelFn: func(ctx context.Context, userID string) error {
			cancelled = true
			return nil
		},
	}
	h := NewPlantHandler(mock, nil)

	rec := postJSON(t, h.Cancel, "/api/v1/plant/cancel", ApplyRequest{UserID: "user-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cancelled)
}

func TestGetPending(t *testing.T) {
	mock := &mockDosingService{
		pendingFn: func(ctx context.Context, userID string) (*domain.PlantSubmission, bool) {
			if userID == "user-1" {
				return stagedSubmission(userID), true
			}
			return nil, false
		},
	}
	h := NewPlantHandler(mock, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plant/pending?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	h.GetPending(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plant/pending?user_id=nobody", nil)
	rec = httptest.NewRecorder()
	h.GetPending(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plant/pending", nil)
	rec = httptest.NewRecorder()
	h.GetPending(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeStagesEstimate(t *testing.T) {
	estimator := &mockEstimator{
		estimateFn: func(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error) {
			assert.Equal(t, []byte("fake-image"), image)
			return &domain.Estimate{
				Species:      "tomato",
				Deficiencies: []string{"N", "K"},
				HeightCM:     3.0,
				WidthCM:      2.0,
				Auto:         true,
			}, nil
		},
	}
	mock := &mockDosingService{
		submitFn: func(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error) {
			assert.Equal(t, "tomato", species)
			assert.Equal(t, []string{"N", "K"}, nutrients)
			return stagedSubmission(userID), nil
		},
	}
	h := NewPlantHandler(mock, estimator)

	rec := postJSON(t, h.Analyze, "/api/v1/plant/analyze", AnalyzeRequest{
		UserID:      "user-1",
		ImageBase64: "ZmFrZS1pbWFnZQ==",
		MimeType:    "image/jpeg",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Staged)
	assert.Equal(t, "tomato", resp.Estimate.Species)
}

func TestAnalyzeNonAutoEstimateNotStaged(t *testing.T) {
	estimator := &mockEstimator{
		estimateFn: func(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error) {
			return &domain.Estimate{
				Species:      "tomato",
				Deficiencies: []string{"N"},
				HeightCM:     3.0,
				WidthCM:      2.0,
				Auto:         false,
			}, nil
		},
	}
	mock := &mockDosingService{
		submitFn: func(ctx context.Context, userID, species string, height, width float64, nutrients []string) (*domain.PlantSubmission, error) {
			t.Error("non-auto estimate must not replace the user's staged submission")
			return stagedSubmission(userID), nil
		},
	}
	h := NewPlantHandler(mock, estimator)

	rec := postJSON(t, h.Analyze, "/api/v1/plant/analyze", AnalyzeRequest{
		UserID:      "user-1",
		ImageBase64: "ZmFrZS1pbWFnZQ==",
		MimeType:    "image/jpeg",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Staged)
	assert.Empty(t, resp.Doses)
	assert.Equal(t, []string{"N"}, resp.Estimate.Deficiencies)
}

func TestAnalyzeEstimateUnavailable(t *testing.T) {
	estimator := &mockEstimator{
		estimateFn: func(ctx context.Context, image []byte, mimeType string) (*domain.Estimate, error) {
			return nil, domain.ErrEstimateUnavailable
		},
	}
	h := NewPlantHandler(&mockDosingService{}, estimator)

	rec := postJSON(t, h.Analyze, "/api/v1/plant/analyze", AnalyzeRequest{
		UserID:      "user-1",
		ImageBase64: "ZmFrZS1pbWFnZQ==",
		MimeType:    "image/jpeg",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeRejectsBadBase64(t *testing.T) {
	h := NewPlantHandler(&mockDosingService{}, &mockEstimator{})

	rec := postJSON(t, h.Analyze, "/api/v1/plant/analyze", AnalyzeRequest{
		UserID:      "user-1",
		ImageBase64: "not-base64!!!",
		MimeType:    "image/jpeg",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeWithoutEstimator(t *testing.T) {
	h := NewPlantHandler(&mockDosingService{}, nil)

	rec := postJSON(t, h.Analyze, "/api/v1/plant/analyze", AnalyzeRequest{
		UserID:      "user-1",
		ImageBase64: "ZmFrZS1pbWFnZQ==",
		MimeType:    "image/jpeg",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
