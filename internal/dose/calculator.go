package dose

import (
	"fmt"
	"time"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// Default dosing constants. The rig dispenses a fixed rate per unit of
// canopy area, and the peristaltic pump moves a fixed volume per second.
const (
	DefaultBaseRateMLPerArea = 10.0
	DefaultPumpRateMLPerSec  = 1.0
)

// Calculator converts plant measurements and a nutrient list into pump
// instructions. Pure and deterministic: no state, no I/O.
type Calculator struct {
	baseRateMLPerArea float64
	pumpRateMLPerSec  float64
}

// NewCalculator creates a calculator with the given dosing constants.
// Non-positive constants fall back to the defaults.
func NewCalculator(baseRateMLPerArea, pumpRateMLPerSec float64) *Calculator {
	if baseRateMLPerArea <= 0 {
		baseRateMLPerArea = DefaultBaseRateMLPerArea
	}
	if pumpRateMLPerSec <= 0 {
		pumpRateMLPerSec = DefaultPumpRateMLPerSec
	}
	return &Calculator{
		baseRateMLPerArea: baseRateMLPerArea,
		pumpRateMLPerSec:  pumpRateMLPerSec,
	}
}

// Compute returns one Dose per requested nutrient, in request order.
// Species is accepted for forward compatibility but does not currently
// vary the rate.
func (c *Calculator) Compute(species string, height, width float64, nutrients []domain.NutrientID) ([]domain.Dose, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: height=%v width=%v", domain.ErrInvalidMeasurement, height, width)
	}

	area := height * width
	volumeML := area * c.baseRateMLPerArea

	doses := make([]domain.Dose, 0, len(nutrients))
	for _, n := range nutrients {
		if _, err := domain.ParseNutrient(string(n)); err != nil {
			return nil, err
		}
		doses = append(doses, domain.Dose{
			Nutrient: n,
			VolumeML: volumeML,
			Duration: volumeML / c.pumpRateMLPerSec,
		})
	}
	return doses, nil
}

// PumpDuration returns how long the pump must run to dispense volumeML.
func (c *Calculator) PumpDuration(volumeML float64) time.Duration {
	if volumeML <= 0 {
		return 0
	}
	return time.Duration(volumeML / c.pumpRateMLPerSec * float64(time.Second))
}

// ComputeTokens is Compute over raw nutrient tokens, normalizing each
// one first. An unrecognized token fails the whole computation, naming
// the offending token.
func (c *Calculator) ComputeTokens(species string, height, width float64, tokens []string) ([]domain.Dose, error) {
	nutrients := make([]domain.NutrientID, 0, len(tokens))
	for _, tok := range tokens {
		n, err := domain.ParseNutrient(tok)
		if err != nil {
			return nil, err
		}
		nutrients = append(nutrients, n)
	}
	return c.Compute(species, height, width, nutrients)
}
