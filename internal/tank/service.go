package tank

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/metrics"
	"github.com/easylife-c/APHAv.2/internal/storage"
)

// DefaultLevelML is assigned to every nutrient tank on first run.
const DefaultLevelML = 1000.0

// displayPrecision rounds reported levels to hundredths of a milliliter.
const displayPrecision = 100

// Service owns the persisted per-nutrient tank inventory. All mutations
// are serialized and written to durable storage before they are
// acknowledged, so a crash loses at most the in-flight operation.
type Service interface {
	// Status returns a consistent snapshot of remaining volume per nutrient.
	Status(ctx context.Context) map[domain.NutrientID]float64

	// TryDebit atomically checks and subtracts amountML from the nutrient's
	// tank. On success the new state is persisted before returning the new
	// remaining volume. On failure the tank is unchanged.
	TryDebit(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error)

	// Refill adds amountML to the nutrient's tank and persists.
	Refill(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error)
}

type service struct {
	mu     sync.Mutex
	levels map[domain.NutrientID]float64
	store  *storage.JSONFile[map[domain.NutrientID]float64]
}

// NewService loads the tank ledger from path, defaulting every nutrient
// to defaultLevelML when no record exists yet.
func NewService(path string, defaultLevelML float64) (Service, error) {
	store := storage.NewJSONFile[map[domain.NutrientID]float64](path)

	var levels map[domain.NutrientID]float64
	found, err := store.Load(&levels)
	if err != nil {
		return nil, fmt.Errorf("failed to load tank ledger: %w", err)
	}
	if !found {
		levels = make(map[domain.NutrientID]float64)
	}
	for _, n := range domain.Nutrients() {
		if _, ok := levels[n]; !ok {
			levels[n] = defaultLevelML
		}
	}

	s := &service{levels: levels, store: store}
	s.publishLevels()
	return s, nil
}

func (s *service) Status(ctx context.Context) map[domain.NutrientID]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[domain.NutrientID]float64, len(s.levels))
	for n, level := range s.levels {
		snapshot[n] = roundML(level)
	}
	return snapshot
}

func (s *service) TryDebit(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
	log := logger.FromContext(ctx)

	if amountML <= 0 {
		return 0, fmt.Errorf("%w: debit of %.2fml", domain.ErrInvalidAmount, amountML)
	}
	if _, err := domain.ParseNutrient(string(nutrient)); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.levels[nutrient]
	if remaining < amountML {
		log.Warn("Tank debit rejected", "nutrient", nutrient, "requested_ml", amountML, "remaining_ml", remaining)
		return 0, fmt.Errorf("%w: %s has %.2fml, need %.2fml",
			domain.ErrInsufficientInventory, nutrient.Name(), remaining, amountML)
	}

	s.levels[nutrient] = remaining - amountML
	if err := s.store.Save(s.levels); err != nil {
		// Keep memory consistent with what was last durably written.
		s.levels[nutrient] = remaining
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	s.publishLevels()
	log.Info("Tank debited", "nutrient", nutrient, "amount_ml", amountML, "remaining_ml", s.levels[nutrient])
	return roundML(s.levels[nutrient]), nil
}

func (s *service) Refill(ctx context.Context, nutrient domain.NutrientID, amountML float64) (float64, error) {
	log := logger.FromContext(ctx)

	if amountML <= 0 {
		return 0, fmt.Errorf("%w: refill of %.2fml", domain.ErrInvalidAmount, amountML)
	}
	if _, err := domain.ParseNutrient(string(nutrient)); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.levels[nutrient]
	s.levels[nutrient] = previous + amountML
	if err := s.store.Save(s.levels); err != nil {
		s.levels[nutrient] = previous
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	s.publishLevels()
	metrics.TankRefills.WithLabelValues(string(nutrient)).Inc()
	log.Info("Tank refilled", "nutrient", nutrient, "amount_ml", amountML, "remaining_ml", s.levels[nutrient])
	return roundML(s.levels[nutrient]), nil
}

// publishLevels exports tank levels to the metrics gauge. Caller holds the lock.
func (s *service) publishLevels() {
	for n, level := range s.levels {
		metrics.TankLevel.WithLabelValues(string(n)).Set(level)
	}
}

func roundML(v float64) float64 {
	return math.Round(v*displayPrecision) / displayPrecision
}
