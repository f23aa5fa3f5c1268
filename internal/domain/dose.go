package domain

import "time"

// Dose is a single computed pump instruction: how much of one nutrient
// to dispense and how long the pump must run to do it. Doses are
// ephemeral - computed, actuated, never stored.
type Dose struct {
	Nutrient NutrientID `json:"nutrient"`
	VolumeML float64    `json:"volume_ml"`
	Duration float64    `json:"duration_sec"`
}

// RunDuration converts the pump time to a time.Duration.
func (d Dose) RunDuration() time.Duration {
	return time.Duration(d.Duration * float64(time.Second))
}
