package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
const (
	ErrMsgInvalidMeasurement    = "invalid plant measurement"
	ErrMsgUnknownNutrient       = "unknown nutrient"
	ErrMsgInsufficientInventory = "insufficient tank inventory"
	ErrMsgInvalidAmount         = "amount must be positive"
	ErrMsgActuationFailed       = "pump actuation failed"
	ErrMsgPartialApplication    = "partial application"
	ErrMsgPersistenceFailure    = "failed to persist ledger state"
	ErrMsgEstimateUnavailable   = "plant estimate unavailable"
	ErrMsgNoPendingSubmission   = "no pending submission"
	ErrMsgUnknownChannel        = "no actuator channel for nutrient"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrInvalidMeasurement    = errors.New(ErrMsgInvalidMeasurement)
	ErrUnknownNutrient       = errors.New(ErrMsgUnknownNutrient)
	ErrInsufficientInventory = errors.New(ErrMsgInsufficientInventory)
	ErrInvalidAmount         = errors.New(ErrMsgInvalidAmount)
	ErrActuationFailed       = errors.New(ErrMsgActuationFailed)
	ErrPartialApplication    = errors.New(ErrMsgPartialApplication)
	ErrPersistenceFailure    = errors.New(ErrMsgPersistenceFailure)
	ErrEstimateUnavailable   = errors.New(ErrMsgEstimateUnavailable)
	ErrNoPendingSubmission   = errors.New(ErrMsgNoPendingSubmission)
	ErrUnknownChannel        = errors.New(ErrMsgUnknownChannel)
)

// CooldownError is returned when a nutrient is still on cooldown for a user.
type CooldownError struct {
	Nutrient  NutrientID
	Remaining time.Duration
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown: try again in %.1fh", e.Nutrient.Name(), e.RemainingHours())
}

// RemainingHours reports the remaining wait rounded to tenths of an hour.
func (e CooldownError) RemainingHours() float64 {
	tenths := float64(int64(e.Remaining.Hours()*10 + 0.5))
	return tenths / 10
}

// Is allows errors.Is() to work with CooldownError.
func (e CooldownError) Is(target error) bool {
	_, ok := target.(CooldownError)
	return ok
}
