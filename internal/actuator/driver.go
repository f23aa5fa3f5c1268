package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/easylife-c/APHAv.2/internal/concurrency"
	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/logger"
	"github.com/easylife-c/APHAv.2/internal/metrics"
)

// PumpPins maps each nutrient to its BCM output pin on the rig.
var PumpPins = map[domain.NutrientID]int{
	domain.Nitrogen:   22,
	domain.Phosphorus: 23,
	domain.Potassium:  24,
}

// Driver runs a nutrient's pump for a fixed duration. Implementations
// guarantee the pump is switched off on every exit path, including
// cancellation, and never run the same pump twice concurrently.
type Driver interface {
	Run(ctx context.Context, nutrient domain.NutrientID, duration time.Duration) error
}

// line is one switchable pump output.
type line interface {
	on() error
	off() error
}

// channel is one pump output and its pin.
type channel struct {
	pin  int
	line line
}

// driver implements Run over a set of channels. The concrete backend
// only decides what a line does when switched. Channel exclusivity is
// handled by named locks, one per nutrient.
type driver struct {
	channels map[domain.NutrientID]*channel
	locks    *concurrency.LockManager
}

func newDriver(lines map[domain.NutrientID]line) *driver {
	channels := make(map[domain.NutrientID]*channel, len(lines))
	for n, l := range lines {
		channels[n] = &channel{pin: PumpPins[n], line: l}
	}
	return &driver{channels: channels, locks: concurrency.NewLockManager()}
}

func (d *driver) Run(ctx context.Context, nutrient domain.NutrientID, duration time.Duration) error {
	log := logger.FromContext(ctx)

	// Upstream normalization should make this unreachable; re-validate anyway.
	ch, ok := d.channels[nutrient]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownChannel, nutrient)
	}
	if duration < 0 {
		return fmt.Errorf("%w: negative run duration %s", domain.ErrActuationFailed, duration)
	}
	if duration == 0 {
		return nil
	}

	// Per-channel exclusivity only: other pumps keep running.
	mu := d.locks.GetLock(string(nutrient))
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	if err := ch.line.on(); err != nil {
		return fmt.Errorf("%w: pin %d on: %v", domain.ErrActuationFailed, ch.pin, err)
	}

	var runErr error
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		runErr = ctx.Err()
	}

	// The off switch is paired with every exit path.
	if err := ch.line.off(); err != nil {
		return fmt.Errorf("%w: pin %d off: %v", domain.ErrActuationFailed, ch.pin, err)
	}

	metrics.PumpRunSeconds.WithLabelValues(string(nutrient)).Observe(time.Since(start).Seconds())

	if runErr != nil {
		log.Warn("Pump run interrupted", "nutrient", nutrient, "pin", ch.pin, "error", runErr)
		return fmt.Errorf("%w: interrupted: %v", domain.ErrActuationFailed, runErr)
	}

	log.Info("Pump run complete", "nutrient", nutrient, "pin", ch.pin, "duration", duration)
	return nil
}
