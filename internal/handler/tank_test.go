package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// mockTankService implements tank.Service for handler tests
type mockTankService struct {
	levels   map[domain.NutrientID]float64
	refillFn func(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error)
}

func (m *mockTankService) Status(ctx context.Context) map[domain.NutrientID]float64 {
	return m.levels
}

func (m *mockTankService) TryDebit(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
	return 0, nil
}

func (m *mockTankService) Refill(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
	return m.refillFn(ctx, nutrient, amountML)
}

func TestGetTankStatus(t *testing.T) {
	mock := &mockTankService{
		levels: map[domain.NutrientID]float64{
			domain.Nitrogen:   1000.0,
			domain.Phosphorus: 250.5,
			domain.Potassium:  0.0,
		},
	}
	h := NewTankHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tank", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TankStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 1000.0, resp.Levels["N"], 0.001)
	assert.InDelta(t, 250.5, resp.Levels["P"], 0.001)
	assert.InDelta(t, 0.0, resp.Levels["K"], 0.001)
}

func TestRefillTank(t *testing.T) {
	mock := &mockTankService{
		refillFn: func(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
			assert.Equal(t, domain.Phosphorus, nutrient)
			assert.InDelta(t, 500.0, amountML, 0.001)
			return 1500.0, nil
		},
	}
	h := NewTankHandler(mock)

	rec := postJSON(t, h.Refill, "/api/v1/tank/refill", RefillRequest{Nutrient: "phosphorus", AmountML: 500.0})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RefillResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "P", resp.Nutrient)
	assert.InDelta(t, 1500.0, resp.RemainingML, 0.001)
}

func TestRefillTankValidation(t *testing.T) {
	mock := &mockTankService{
		refillFn: func(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
			t.Fatal("service should not be called for invalid requests")
			return 0, nil
		},
	}
	h := NewTankHandler(mock)

	tests := []struct {
		name string
		req  RefillRequest
	}{
		{name: "unknown nutrient", req: RefillRequest{Nutrient: "iron", AmountML: 100}},
		{name: "zero amount", req: RefillRequest{Nutrient: "N", AmountML: 0}},
		{name: "negative amount", req: RefillRequest{Nutrient: "N", AmountML: -5}},
		{name: "missing nutrient", req: RefillRequest{AmountML: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Refill, "/api/v1/tank/refill", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
