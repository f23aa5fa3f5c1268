package dosing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/easylife-c/APHAv.2/internal/actuator"
	"github.com/easylife-c/APHAv.2/internal/cooldown"
	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/dose"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/metrics"
	"github.com/easylife-c/APHAv.2/internal/tank"
)

// Service orchestrates the dosing pipeline: stage a submission, then on
// confirmation compute doses and, per nutrient, check cooldown, debit
// the tank, run the pump, and record the application.
type Service interface {
	// Submit stages a user's plant measurements for confirmation. A newer
	// submission replaces an older unconfirmed one.
	Submit(ctx context.Context, userID, species string, height, width float64, nutrientTokens []string) (*domain.PlantSubmission, error)

	// Pending returns the user's staged submission, if any.
	Pending(ctx context.Context, userID string) (*domain.PlantSubmission, bool)

	// Cancel discards the user's staged submission with no side effects.
	Cancel(ctx context.Context, userID string) error

	// ConfirmApply consumes the staged submission exactly once and runs
	// the dosing pipeline, returning one outcome per nutrient in request
	// order. One nutrient's failure never aborts the batch.
	ConfirmApply(ctx context.Context, userID string) (*domain.ApplyResponse, error)

	// Water dispenses a fixed maintenance dose outside any user cooldown.
	// Used by the scheduled moisture check; the tank is still debited.
	Water(ctx context.Context, nutrient domain.NutrientID, volumeML float64) error
}

type service struct {
	calc      *dose.Calculator
	tanks     tank.Service
	cooldowns cooldown.Service
	pump      actuator.Driver
	now       cooldown.Clock

	mu      sync.Mutex
	pending map[string]*domain.PlantSubmission
}

// NewService creates the dosing controller. A nil clock falls back to
// UTC time.Now.
func NewService(calc *dose.Calculator, tanks tank.Service, cooldowns cooldown.Service, pump actuator.Driver, now cooldown.Clock) Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		calc:      calc,
		tanks:     tanks,
		cooldowns: cooldowns,
		pump:      pump,
		now:       now,
		pending:   make(map[string]*domain.PlantSubmission),
	}
}

func (s *service) Submit(ctx context.Context, userID, species string, height, width float64, nutrientTokens []string) (*domain.PlantSubmission, error) {
	log := logger.FromContext(ctx)

	if len(nutrientTokens) == 0 {
		return nil, fmt.Errorf("%w: no deficiencies given", domain.ErrUnknownNutrient)
	}

	// Validates measurements and normalizes every token before anything
	// is staged; a bad submission is rejected here, not at apply time.
	doses, err := s.calc.ComputeTokens(species, height, width, nutrientTokens)
	if err != nil {
		return nil, err
	}

	nutrients := make([]domain.NutrientID, len(doses))
	for i, d := range doses {
		nutrients[i] = d.Nutrient
	}

	sub := &domain.PlantSubmission{
		UserID:    userID,
		Species:   species,
		HeightCM:  height,
		WidthCM:   width,
		Nutrients: nutrients,
		Doses:     doses,
		StagedAt:  s.now(),
	}

	s.mu.Lock()
	s.pending[userID] = sub
	s.mu.Unlock()

	log.Info("Submission staged", "user_id", userID, "species", species, "nutrients", nutrients)
	return sub, nil
}

func (s *service) Pending(ctx context.Context, userID string) (*domain.PlantSubmission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.pending[userID]
	return sub, ok
}

func (s *service) Cancel(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[userID]; !ok {
		return domain.ErrNoPendingSubmission
	}
	delete(s.pending, userID)
	logger.FromContext(ctx).Info("Submission cancelled", "user_id", userID)
	return nil
}

func (s *service) ConfirmApply(ctx context.Context, userID string) (*domain.ApplyResponse, error) {
	log := logger.FromContext(ctx)

	// Consume the submission exactly once.
	s.mu.Lock()
	sub, ok := s.pending[userID]
	if ok {
		delete(s.pending, userID)
	}
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNoPendingSubmission
	}

	doses, err := s.calc.Compute(sub.Species, sub.HeightCM, sub.WidthCM, sub.Nutrients)
	if err != nil {
		// Submission was validated at staging; a calculator failure here
		// still rejects the whole submission with the calculator's error.
		return nil, err
	}

	outcomes := make([]domain.NutrientOutcome, 0, len(doses))
	for _, d := range doses {
		outcomes = append(outcomes, s.applyDose(ctx, userID, d))
	}

	log.Info("Apply complete", "user_id", userID, "species", sub.Species, "doses", len(doses))
	return &domain.ApplyResponse{
		UserID:   userID,
		Species:  sub.Species,
		Outcomes: outcomes,
	}, nil
}

// applyDose runs one dose through cooldown check, debit, actuation, and
// recording. Every failure is folded into the returned outcome.
func (s *service) applyDose(ctx context.Context, userID string, d domain.Dose) domain.NutrientOutcome {
	log := logger.FromContext(ctx)
	outcome := domain.NutrientOutcome{Nutrient: d.Nutrient}

	blocked, remaining, err := s.cooldowns.Check(ctx, userID, d.Nutrient)
	if err != nil {
		outcome.Status = domain.OutcomePersistenceFailure
		outcome.Detail = err.Error()
		return outcome
	}
	if blocked {
		cooldownErr := domain.CooldownError{Nutrient: d.Nutrient, Remaining: remaining}
		metrics.DosesBlocked.WithLabelValues(string(d.Nutrient)).Inc()
		outcome.Status = domain.OutcomeBlocked
		outcome.WaitHours = cooldownErr.RemainingHours()
		outcome.Detail = cooldownErr.Error()
		return outcome
	}

	// The tank lock lives inside TryDebit; it is released before the pump
	// runs so other nutrients and users proceed while this pump is busy.
	remainingML, err := s.tanks.TryDebit(ctx, d.Nutrient, d.VolumeML)
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		metrics.DosesRejected.WithLabelValues(string(d.Nutrient)).Inc()
		outcome.Status = domain.OutcomeInsufficient
		outcome.Detail = err.Error()
		return outcome
	case err != nil:
		outcome.Status = domain.OutcomePersistenceFailure
		outcome.Detail = err.Error()
		return outcome
	}

	// Debit is committed: from here on there is no rollback, only the
	// distinct partial-application outcomes an operator can reconcile.
	if err := s.pump.Run(ctx, d.Nutrient, d.RunDuration()); err != nil {
		log.Error("Actuation failed after debit", "nutrient", d.Nutrient, "debited_ml", d.VolumeML, "error", err)
		metrics.PartialApplications.WithLabelValues(string(d.Nutrient)).Inc()
		outcome.Status = domain.OutcomeActuationFailed
		outcome.AppliedML = d.VolumeML
		outcome.RemainingML = remainingML
		outcome.Detail = fmt.Sprintf("%s: %.2fml debited but not dispensed", domain.ErrMsgPartialApplication, d.VolumeML)
		return outcome
	}

	if err := s.cooldowns.Record(ctx, userID, d.Nutrient, s.now()); err != nil {
		log.Error("Cooldown record failed after actuation", "nutrient", d.Nutrient, "error", err)
		metrics.PartialApplications.WithLabelValues(string(d.Nutrient)).Inc()
		outcome.Status = domain.OutcomePartialApplication
		outcome.AppliedML = d.VolumeML
		outcome.RemainingML = remainingML
		outcome.Detail = fmt.Sprintf("%s: dispensed but cooldown not recorded", domain.ErrMsgPartialApplication)
		return outcome
	}

	metrics.DosesApplied.WithLabelValues(string(d.Nutrient)).Inc()
	metrics.DispensedVolume.WithLabelValues(string(d.Nutrient)).Add(d.VolumeML)
	outcome.Status = domain.OutcomeApplied
	outcome.AppliedML = d.VolumeML
	outcome.RemainingML = remainingML
	return outcome
}

func (s *service) Water(ctx context.Context, nutrient domain.NutrientID, volumeML float64) error {
	log := logger.FromContext(ctx)

	remaining, err := s.tanks.TryDebit(ctx, nutrient, volumeML)
	if err != nil {
		return fmt.Errorf("watering dose rejected: %w", err)
	}

	if err := s.pump.Run(ctx, nutrient, s.calc.PumpDuration(volumeML)); err != nil {
		metrics.PartialApplications.WithLabelValues(string(nutrient)).Inc()
		return fmt.Errorf("%w: watering dose of %.2fml debited but not dispensed: %v",
			domain.ErrPartialApplication, volumeML, err)
	}

	metrics.DispensedVolume.WithLabelValues(string(nutrient)).Add(volumeML)
	log.Info("Watering dose dispensed", "nutrient", nutrient, "volume_ml", volumeML, "remaining_ml", remaining)
	return nil
}
