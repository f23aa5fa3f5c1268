package actuator

import (
	"context"
	"log/slog"
	"time"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// simulatedLine logs switch transitions instead of driving hardware.
type simulatedLine struct {
	nutrient domain.NutrientID
	pin      int
}

func (l *simulatedLine) on() error {
	slog.Info("[SIM] pump on", "nutrient", l.nutrient, "pin", l.pin)
	return nil
}

func (l *simulatedLine) off() error {
	slog.Info("[SIM] pump off", "nutrient", l.nutrient, "pin", l.pin)
	return nil
}

// NewSimulated returns a Driver that only logs pump activity. When
// realDelay is false the run duration is compressed to simDuration so
// tests do not sleep for real dose times.
func NewSimulated(realDelay bool) Driver {
	lines := make(map[domain.NutrientID]line, len(PumpPins))
	for n, pin := range PumpPins {
		lines[n] = &simulatedLine{nutrient: n, pin: pin}
	}
	d := newDriver(lines)
	if realDelay {
		return d
	}
	return &compressedDriver{inner: d}
}

// simDuration is the compressed run time used in place of the real one.
const simDuration = time.Millisecond

// compressedDriver shortens every run to simDuration while keeping the
// full on/off and exclusivity semantics.
type compressedDriver struct {
	inner *driver
}

func (d *compressedDriver) Run(ctx context.Context, nutrient domain.NutrientID, duration time.Duration) error {
	if duration > simDuration {
		duration = simDuration
	}
	return d.inner.Run(ctx, nutrient, duration)
}
