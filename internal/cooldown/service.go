package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/storage"
)

// DefaultWindow is the minimum interval between successful applications
// of the same nutrient to the same user.
const DefaultWindow = 24 * time.Hour

// Clock supplies the current time. Injectable for tests; the production
// clock is UTC so stored and compared timestamps share one zone.
type Clock func() time.Time

// Service manages per-user per-nutrient application cooldowns.
type Service interface {
	// Check reports whether the nutrient is on cooldown for the user and,
	// if so, the remaining wait.
	Check(ctx context.Context, userID string, nutrient domain.NutrientID) (bool, time.Duration, error)

	// Record overwrites the last-applied time for (user, nutrient) and
	// persists the full log. Call only after a successful application.
	Record(ctx context.Context, userID string, nutrient domain.NutrientID, when time.Time) error

	// LastApplied returns when the nutrient was last applied for the user,
	// or nil when it never was.
	LastApplied(ctx context.Context, userID string, nutrient domain.NutrientID) *time.Time
}

// log is user -> nutrient -> last applied (UTC).
type applicationLog map[string]map[domain.NutrientID]time.Time

type service struct {
	mu     sync.Mutex
	window time.Duration
	now    Clock
	log    applicationLog
	store  *storage.JSONFile[applicationLog]
}

// NewService loads the cooldown log from path. A zero window falls back
// to DefaultWindow; a nil clock falls back to UTC time.Now.
func NewService(path string, window time.Duration, now Clock) (Service, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	store := storage.NewJSONFile[applicationLog](path)
	var log applicationLog
	found, err := store.Load(&log)
	if err != nil {
		return nil, fmt.Errorf("failed to load cooldown log: %w", err)
	}
	if !found {
		log = make(applicationLog)
	}

	return &service{window: window, now: now, log: log, store: store}, nil
}

func (s *service) Check(ctx context.Context, userID string, nutrient domain.NutrientID) (bool, time.Duration, error) {
	if _, err := domain.ParseNutrient(string(nutrient)); err != nil {
		return false, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.log[userID][nutrient]
	if !ok {
		return false, 0, nil
	}

	elapsed := s.now().Sub(last)
	if elapsed >= s.window {
		return false, 0, nil
	}
	return true, s.window - elapsed, nil
}

func (s *service) Record(ctx context.Context, userID string, nutrient domain.NutrientID, when time.Time) error {
	if _, err := domain.ParseNutrient(string(nutrient)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userLog, ok := s.log[userID]
	if !ok {
		userLog = make(map[domain.NutrientID]time.Time)
		s.log[userID] = userLog
	}

	previous, hadPrevious := userLog[nutrient]
	userLog[nutrient] = when.UTC()

	if err := s.store.Save(s.log); err != nil {
		// Revert so memory matches what was last durably written.
		if hadPrevious {
			userLog[nutrient] = previous
		} else {
			delete(userLog, nutrient)
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	logger.FromContext(ctx).Info("Cooldown recorded",
		"user_id", userID, "nutrient", nutrient, "applied_at", when.UTC())
	return nil
}

func (s *service) LastApplied(ctx context.Context, userID string, nutrient domain.NutrientID) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.log[userID][nutrient]; ok {
		t := last
		return &t
	}
	return nil
}
