package moisture

import (
	"context"
	"fmt"

	"github.com/easylife-c/APHAv.2/internal/domain"
	"github.com/easylife-c/APHAv.2/internal/dosing"
	"github.com/easylife-c/APHAv.2/internal/logger"
)

// Job is the scheduled soil check: when moisture drops below the
// threshold it dispenses a small fixed nitrogen dose through the dosing
// controller's public contract.
type Job struct {
	sensor    Sensor
	dosingSvc dosing.Service
	threshold int
	doseML    float64
}

// NewJob creates the moisture check job.
func NewJob(sensor Sensor, dosingSvc dosing.Service, threshold int, doseML float64) *Job {
	return &Job{
		sensor:    sensor,
		dosingSvc: dosingSvc,
		threshold: threshold,
		doseML:    doseML,
	}
}

func (j *Job) Name() string { return "moisture-check" }

func (j *Job) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	level, err := j.sensor.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read moisture probe: %w", err)
	}

	if level >= j.threshold {
		log.Debug("Soil is moist, no watering needed", "level", level, "threshold", j.threshold)
		return nil
	}

	log.Info("Dry soil detected, dispensing watering dose",
		"level", level, "threshold", j.threshold, "dose_ml", j.doseML)
	if err := j.dosingSvc.Water(ctx, domain.Nitrogen, j.doseML); err != nil {
		return fmt.Errorf("watering failed: %w", err)
	}
	return nil
}
