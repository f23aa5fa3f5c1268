package tank

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

func newTestService(t *testing.T, defaultLevel float64) (Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tank_levels.json")
	svc, err := NewService(path, defaultLevel)
	require.NoError(t, err)
	return svc, path
}

func TestStatusDefaultsEveryNutrient(t *testing.T) {
	svc, _ := newTestService(t, 1000.0)

	status := svc.Status(context.Background())
	require.Len(t, status, 3)
	for _, n := range domain.Nutrients() {
		assert.InDelta(t, 1000.0, status[n], 1e-9)
	}
}

func TestTryDebitIsConservative(t *testing.T) {
	svc, _ := newTestService(t, 100.0)
	ctx := context.Background()

	remaining, err := svc.TryDebit(ctx, domain.Nitrogen, 10.0)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, remaining, 1e-9)

	remaining, err = svc.TryDebit(ctx, domain.Nitrogen, 25.5)
	require.NoError(t, err)
	assert.InDelta(t, 64.5, remaining, 1e-9)

	// Other tanks untouched
	status := svc.Status(ctx)
	assert.InDelta(t, 100.0, status[domain.Phosphorus], 1e-9)
	assert.InDelta(t, 100.0, status[domain.Potassium], 1e-9)
}

func TestTryDebitRejectsInsufficientInventory(t *testing.T) {
	svc, _ := newTestService(t, 5.0)
	ctx := context.Background()

	_, err := svc.TryDebit(ctx, domain.Phosphorus, 10.0)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	// State unchanged on failure
	assert.InDelta(t, 5.0, svc.Status(ctx)[domain.Phosphorus], 1e-9)
}

func TestTryDebitRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t, 100.0)
	ctx := context.Background()

	_, err := svc.TryDebit(ctx, domain.Nitrogen, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.TryDebit(ctx, domain.Nitrogen, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.TryDebit(ctx, domain.NutrientID("Ca"), 1)
	assert.ErrorIs(t, err, domain.ErrUnknownNutrient)
}

func TestConcurrentDebitsNeverOversubscribe(t *testing.T) {
	svc, _ := newTestService(t, 100.0)
	ctx := context.Background()

	// 20 goroutines each try to take 10ml from a 100ml tank; exactly 10
	// can succeed in any interleaving.
	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.TryDebit(ctx, domain.Potassium, 10.0); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, successes)
	assert.InDelta(t, 0.0, svc.Status(ctx)[domain.Potassium], 1e-9)
}

func TestRefill(t *testing.T) {
	svc, _ := newTestService(t, 10.0)
	ctx := context.Background()

	remaining, err := svc.Refill(ctx, domain.Nitrogen, 40.0)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, remaining, 1e-9)

	_, err = svc.Refill(ctx, domain.Nitrogen, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Refill(ctx, domain.Nitrogen, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRefillOrderIndependence(t *testing.T) {
	ctx := context.Background()

	first, _ := newTestService(t, 100.0)
	_, err := first.Refill(ctx, domain.Nitrogen, 7.0)
	require.NoError(t, err)
	_, err = first.Refill(ctx, domain.Nitrogen, 13.0)
	require.NoError(t, err)

	second, _ := newTestService(t, 100.0)
	_, err = second.Refill(ctx, domain.Nitrogen, 13.0)
	require.NoError(t, err)
	_, err = second.Refill(ctx, domain.Nitrogen, 7.0)
	require.NoError(t, err)

	assert.InDelta(t,
		first.Status(ctx)[domain.Nitrogen],
		second.Status(ctx)[domain.Nitrogen],
		1e-9)
}

func TestLevelsSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tank_levels.json")
	ctx := context.Background()

	svc, err := NewService(path, 1000.0)
	require.NoError(t, err)
	_, err = svc.TryDebit(ctx, domain.Nitrogen, 123.45)
	require.NoError(t, err)

	reloaded, err := NewService(path, 1000.0)
	require.NoError(t, err)
	assert.InDelta(t, 876.55, reloaded.Status(ctx)[domain.Nitrogen], 1e-9)
	assert.InDelta(t, 1000.0, reloaded.Status(ctx)[domain.Phosphorus], 1e-9)
}

func TestPersistFailureRollsBackMemory(t *testing.T) {
	// A directory squats on the ledger path, so every Save fails at the
	// rename step.
	path := filepath.Join(t.TempDir(), "tank_levels.json")
	svc, err := NewService(path, 100.0)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(path, 0o755))
	ctx := context.Background()

	_, err = svc.TryDebit(ctx, domain.Nitrogen, 10.0)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	assert.InDelta(t, 100.0, svc.Status(ctx)[domain.Nitrogen], 1e-9)

	_, err = svc.Refill(ctx, domain.Nitrogen, 10.0)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	assert.InDelta(t, 100.0, svc.Status(ctx)[domain.Nitrogen], 1e-9)
}
